package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quka-ai/workbench/pkg/errors"
	"github.com/quka-ai/workbench/pkg/i18n"
	"github.com/quka-ai/workbench/pkg/utils"
)

func ProvideResponseLocalizer(l i18n.Localizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("i18n", l)
	}
}

func InjectResponseLocalizer(c *gin.Context) (i18n.Localizer, bool) {
	v, exist := c.Get("i18n")
	if !exist {
		return i18n.Localizer{}, false
	}
	l, ok := v.(i18n.Localizer)
	return l, ok
}

// 常量定义
const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-Id"
)

// Body is the flat envelope every endpoint answers with.
// success is always present, error only on failure.
type Body map[string]any

func GetLangFromRequestOrDefault(c *gin.Context) string {
	return LangFromHeader(c.Request.Header.Get("Accept-Language"))
}

// LangFromHeader maps an Accept-Language header onto a supported language.
func LangFromHeader(header string) string {
	for _, l := range utils.ParseAcceptLanguage(header) {
		if i18n.ALLOW_LANG[l.Tag] {
			return l.Tag
		}
		if strings.HasPrefix(strings.ToLower(l.Tag), "zh") {
			return "zh-CN"
		}
		if strings.HasPrefix(strings.ToLower(l.Tag), "en") {
			return "en"
		}
	}
	return i18n.DEFAULT_LANG
}

// ErrorMessage resolves the user facing text of err in the request language.
func ErrorMessage(c *gin.Context, err error) (int, string) {
	var cerr *errors.CustomizedError
	if !errors.As(err, &cerr) {
		return http.StatusInternalServerError, err.Error()
	}

	l, ok := InjectResponseLocalizer(c)
	if !ok {
		return cerr.GetCode(), cerr.Message()
	}
	lang := GetLangFromRequestOrDefault(c)
	if len(cerr.Data()) > 0 {
		return cerr.GetCode(), l.GetWithData(lang, cerr.Message(), cerr.Data())
	}
	return cerr.GetCode(), l.Get(lang, cerr.Message())
}

// APIError api响应失败
func APIError(c *gin.Context, err error) {
	c.Abort()

	httpStatus, msg := ErrorMessage(c, err)
	res := Body{
		"success": false,
		"error":   msg,
		"code":    httpStatus,
	}
	if id := c.GetString(RequestIDKey); id != "" {
		res[RequestIDKey] = id
	}

	c.JSON(httpStatus, res)
	printErrorLog(c, httpStatus, err)
}

func printErrorLog(c *gin.Context, code int, err error) {
	endTime := time.Now().Unix()
	// 统一打印日志
	var logFields = map[string]any{
		"request_uri": c.Request.URL.Path,
		"request_id":  c.GetString(RequestIDKey),
		"end_time":    endTime,
		"code":        code,
		"error":       err.Error(),
	}

	if id := c.Param("id"); id != "" {
		logFields["workspace_id"] = id
	}
	if code >= http.StatusInternalServerError {
		slog.Error("response error", slog.Any("fields", logFields))
		return
	}
	slog.Warn("response error", slog.Any("fields", logFields))
}

func printSuccessLog(c *gin.Context) {
	endTime := time.Now().Unix()
	// 统一打印日志
	var logFields = map[string]any{
		"request_uri": c.Request.URL.Path,
		"request_id":  c.GetString(RequestIDKey),
		"end_time":    endTime,
		"params":      c.Request.URL.Query().Encode(),
	}

	if id := c.Param("id"); id != "" {
		logFields["workspace_id"] = id
	}
	slog.Info("request success", slog.Any("fields", logFields))
}

// APISuccess api响应成功, payload fields are merged next to success
func APISuccess(c *gin.Context, payload any) {
	c.Abort()
	res, err := flatten(payload)
	if err != nil {
		APIError(c, errors.New("response.APISuccess.flatten", i18n.ERROR_INTERNAL, err))
		return
	}
	res["success"] = true
	c.JSON(http.StatusOK, res)
	printSuccessLog(c)
}

func flatten(payload any) (Body, error) {
	switch v := payload.(type) {
	case nil:
		return Body{}, nil
	case Body:
		out := make(Body, len(v)+1)
		for k, item := range v {
			out[k] = item
		}
		return out, nil
	case map[string]any:
		return flatten(Body(v))
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	res := Body{}
	if err = json.Unmarshal(raw, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// NewResponse tags each request with a snowflake id, echoed in the response header.
func NewResponse() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = utils.GenUniqIDStr()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
	}
}
