package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quka-ai/workbench/app/core"
)

// HttpSrv HTTP服务结构
type HttpSrv struct {
	Core   *core.Core
	Engine *gin.Engine
}

type HealthResponse struct {
	Status      string `json:"status"`
	Mode        string `json:"mode"`
	Plugin      string `json:"plugin"`
	Provisioner bool   `json:"provisioner"`
	Connections int    `json:"connections"`
}

func (s *HttpSrv) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "ok",
		Mode:        string(s.Core.Srv().Strategy()),
		Plugin:      s.Core.Name(),
		Provisioner: s.Core.Srv().Provisioner() != nil,
		Connections: s.Core.Srv().RelayHub().Count(),
	})
}
