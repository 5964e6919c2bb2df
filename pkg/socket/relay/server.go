package relay

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/quka-ai/workbench/pkg/i18n"
	"github.com/quka-ai/workbench/pkg/safe"
	"github.com/quka-ai/workbench/pkg/types"
	"github.com/quka-ai/workbench/pkg/types/protocol"
	"github.com/quka-ai/workbench/pkg/utils"
)

const (
	DEFAULT_PING_INTERVAL = 15 * time.Second
	DEFAULT_READ_LIMIT    = 1 << 20

	CLOSE_REASON_REPLACED = "replaced by a newer connection"
)

// Dispatcher answers one chat message for a workspace. Failures are reported in the result.
type Dispatcher interface {
	Dispatch(ctx context.Context, workspaceID, message string) types.DispatchResult
}

type DispatchFunc func(ctx context.Context, workspaceID, message string) types.DispatchResult

func (f DispatchFunc) Dispatch(ctx context.Context, workspaceID, message string) types.DispatchResult {
	return f(ctx, workspaceID, message)
}

// AllowFunc reports whether another chat for workspaceID may be dispatched now.
type AllowFunc func(workspaceID string) bool

type Server struct {
	upgrader   websocket.Upgrader
	hub        *Hub
	dispatcher Dispatcher
	allowChat  AllowFunc

	localizer i18n.Localizer
	langOf    func(r *http.Request) string

	pingEvery   time.Duration
	readLimit   int64
	connections prometheus.Gauge
}

type Option func(s *Server)

func WithPingInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.pingEvery = d
		}
	}
}

func WithReadLimit(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.readLimit = n
		}
	}
}

// WithConnectionGauge reports the number of open sockets.
func WithConnectionGauge(g prometheus.Gauge) Option {
	return func(s *Server) {
		s.connections = g
	}
}

// WithChatLimit drops chat frames once allow reports the workspace is over its budget.
func WithChatLimit(allow AllowFunc) Option {
	return func(s *Server) {
		s.allowChat = allow
	}
}

// WithLocalizer translates error frames into the language langOf picks from the upgrade request.
func WithLocalizer(l i18n.Localizer, langOf func(r *http.Request) string) Option {
	return func(s *Server) {
		s.localizer = l
		if langOf != nil {
			s.langOf = langOf
		}
	}
}

func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

func NewServer(hub *Hub, dispatcher Dispatcher, opts ...Option) *Server {
	s := &Server{
		hub:        hub,
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		localizer: i18n.NewLocalizer(i18n.DEFAULT_LANG),
		langOf: func(*http.Request) string {
			return i18n.DEFAULT_LANG
		},
		pingEvery: DEFAULT_PING_INTERVAL,
		readLimit: DEFAULT_READ_LIMIT,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", slog.String("component", "relay"), slog.String("error", err.Error()))
		return
	}

	c := newConn(utils.GenUniqIDStr(), ws)
	c.lang = s.langOf(r)
	if s.connections != nil {
		s.connections.Inc()
		defer s.connections.Dec()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go safe.RunWithLog(func() { s.writeLoop(ctx, c) }, "relay.writeLoop")
	s.readLoop(ctx, c)

	if c.workspace != "" {
		s.hub.Unbind(c.workspace, c)
	}
	c.Close("")
}

func (s *Server) readLoop(ctx context.Context, c *Conn) {
	c.conn.SetReadLimit(s.readLimit)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("ws read failed", slog.String("component", "relay"), slog.String("conn_id", c.id), slog.String("error", err.Error()))
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))

		frame, err := protocol.ParseClientFrame(data)
		if err != nil {
			s.sendError(c, i18n.ERROR_MALFORMED_FRAME, nil)
			continue
		}

		switch frame.Type {
		case protocol.FRAME_INIT:
			s.handleInit(c, frame)
		case protocol.FRAME_CHAT:
			s.handleChat(ctx, c, frame)
		default:
			s.sendError(c, i18n.ERROR_UNKNOWN_FRAME, nil)
		}
	}
}

func (s *Server) handleInit(c *Conn, frame protocol.ClientFrame) {
	id := strings.TrimSpace(frame.WorkspaceID)
	if id == "" {
		s.sendError(c, i18n.ERROR_MALFORMED_FRAME, nil)
		return
	}

	if c.workspace != "" && c.workspace != id {
		s.hub.Unbind(c.workspace, c)
	}
	c.workspace = id

	if old := s.hub.Bind(id, c); old != nil {
		slog.Info("ws connection replaced", slog.String("component", "relay"), slog.String("workspace_id", id), slog.String("conn_id", old.id))
		old.Close(CLOSE_REASON_REPLACED)
	}

	if err := c.Send(protocol.NewConnected(id)); err != nil {
		slog.Debug("ws send connected failed", slog.String("component", "relay"), slog.String("workspace_id", id), slog.String("error", err.Error()))
	}
}

func (s *Server) handleChat(ctx context.Context, c *Conn, frame protocol.ClientFrame) {
	id := strings.TrimSpace(frame.WorkspaceID)
	if id == "" || id != c.workspace {
		s.sendError(c, i18n.ERROR_WORKSPACE_NOT_BOUND, map[string]interface{}{"WorkspaceID": id})
		return
	}
	message := strings.TrimSpace(frame.Message)
	if message == "" {
		s.sendError(c, i18n.ERROR_EMPTY_MESSAGE, nil)
		return
	}
	if s.allowChat != nil && !s.allowChat(id) {
		s.sendError(c, i18n.ERROR_TOO_MANY_REQUESTS, nil)
		return
	}

	if err := c.Send(protocol.NewTyping(id, true)); err != nil {
		return
	}

	// Runs off the read loop so pongs keep flowing. The result goes to whichever
	// socket holds the id when it arrives.
	dispatchCtx := context.WithoutCancel(ctx)
	go safe.RunWithLog(func() {
		result := s.dispatcher.Dispatch(dispatchCtx, id, message)

		target, ok := s.hub.Lookup(id)
		if !ok {
			slog.Debug("ws response dropped, workspace has no socket", slog.String("component", "relay"), slog.String("workspace_id", id))
			return
		}
		_ = target.Send(protocol.NewTyping(id, false))
		_ = target.Send(protocol.ResponseFrame{
			Type:        protocol.FRAME_RESPONSE,
			WorkspaceID: id,
			Success:     result.Success,
			Response:    result.Response,
			Error:       result.Error,
			Timestamp:   time.Now().UnixMilli(),
		})
	}, "relay.dispatch")
}

func (s *Server) sendError(c *Conn, id string, data map[string]interface{}) {
	_ = c.Send(protocol.NewError(s.localizer.GetWithData(c.lang, id, data)))
}

func (s *Server) writeLoop(ctx context.Context, c *Conn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		case <-c.Done():
			return
		}
	}
}
