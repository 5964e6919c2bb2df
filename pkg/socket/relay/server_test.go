package relay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/workbench/pkg/i18n"
	"github.com/quka-ai/workbench/pkg/types"
	"github.com/quka-ai/workbench/pkg/utils"
)

func TestMain(m *testing.M) {
	utils.SetupIDWorker(1)
	os.Exit(m.Run())
}

func echoDispatcher() DispatchFunc {
	return func(_ context.Context, workspaceID, message string) types.DispatchResult {
		return types.DispatchResult{Success: true, Response: workspaceID + ":" + message}
	}
}

func newTestServer(t *testing.T, d Dispatcher, opts ...Option) (*Server, string) {
	s := NewServer(NewHub(), d, append([]Option{WithPingInterval(time.Second)}, opts...)...)
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return s, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func readFrame(t *testing.T, c *websocket.Conn) map[string]any {
	c.SetReadDeadline(time.Now().Add(3 * time.Second))
	var frame map[string]any
	require.NoError(t, c.ReadJSON(&frame))
	return frame
}

func send(t *testing.T, c *websocket.Conn, frame map[string]any) {
	require.NoError(t, c.WriteJSON(frame))
}

func initSocket(t *testing.T, c *websocket.Conn, id string) {
	send(t, c, map[string]any{"type": "init", "workspaceId": id})
	frame := readFrame(t, c)
	require.Equal(t, "connected", frame["type"])
	require.Equal(t, id, frame["workspaceId"])
}

func TestInitRepliesConnected(t *testing.T) {
	s, url := newTestServer(t, echoDispatcher())
	c := dial(t, url)

	initSocket(t, c, "u1-1700000000000")

	_, ok := s.Hub().Lookup("u1-1700000000000")
	assert.True(t, ok)
}

func TestChatRoundTrip(t *testing.T) {
	_, url := newTestServer(t, echoDispatcher())
	c := dial(t, url)
	initSocket(t, c, "w1")

	send(t, c, map[string]any{"type": "chat", "workspaceId": "w1", "message": "hello"})

	typing := readFrame(t, c)
	assert.Equal(t, "typing", typing["type"])
	assert.Equal(t, true, typing["status"])

	typing = readFrame(t, c)
	assert.Equal(t, "typing", typing["type"])
	assert.Equal(t, false, typing["status"])

	resp := readFrame(t, c)
	assert.Equal(t, "response", resp["type"])
	assert.Equal(t, "w1", resp["workspaceId"])
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "w1:hello", resp["response"])
	assert.NotZero(t, resp["timestamp"])
}

func TestDispatchFailureIsReported(t *testing.T) {
	_, url := newTestServer(t, DispatchFunc(func(_ context.Context, _, _ string) types.DispatchResult {
		return types.DispatchFailed(types.STRATEGY_API, errors.New("upstream unavailable"))
	}))
	c := dial(t, url)
	initSocket(t, c, "w1")

	send(t, c, map[string]any{"type": "chat", "workspaceId": "w1", "message": "hello"})
	readFrame(t, c)
	readFrame(t, c)

	resp := readFrame(t, c)
	assert.Equal(t, "response", resp["type"])
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "upstream unavailable", resp["error"])
}

func TestNoCrossDelivery(t *testing.T) {
	var calls atomic.Int32
	_, url := newTestServer(t, DispatchFunc(func(_ context.Context, id, msg string) types.DispatchResult {
		calls.Add(1)
		return types.DispatchResult{Success: true, Response: id + ":" + msg}
	}))
	a := dial(t, url)
	b := dial(t, url)
	initSocket(t, a, "alice-1")
	initSocket(t, b, "bob-1")

	send(t, a, map[string]any{"type": "chat", "workspaceId": "alice-1", "message": "from a"})
	// a chat naming someone else's workspace is refused
	send(t, b, map[string]any{"type": "chat", "workspaceId": "alice-1", "message": "spoofed"})

	errFrame := readFrame(t, b)
	assert.Equal(t, "error", errFrame["type"])

	readFrame(t, a)
	readFrame(t, a)
	resp := readFrame(t, a)
	assert.Equal(t, "alice-1:from a", resp["response"])

	b.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	_, _, err := b.ReadMessage()
	assert.Error(t, err, "bob must not receive alice's response")
	assert.Equal(t, int32(1), calls.Load())
}

func TestInitReplacesOlderSocket(t *testing.T) {
	s, url := newTestServer(t, echoDispatcher())
	first := dial(t, url)
	second := dial(t, url)
	initSocket(t, first, "w1")
	initSocket(t, second, "w1")

	first.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, _, err := first.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))

	// the closed socket's cleanup must leave the replacement bound
	assert.Eventually(t, func() bool {
		c, ok := s.Hub().Lookup("w1")
		return ok && c != nil && s.Hub().Count() == 1
	}, time.Second, 20*time.Millisecond)

	send(t, second, map[string]any{"type": "chat", "workspaceId": "w1", "message": "still here"})
	readFrame(t, second)
	readFrame(t, second)
	assert.Equal(t, "w1:still here", readFrame(t, second)["response"])
}

func TestMalformedFrames(t *testing.T) {
	_, url := newTestServer(t, echoDispatcher())
	c := dial(t, url)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("{not json")))
	assert.Equal(t, "Malformed message", readFrame(t, c)["error"])

	send(t, c, map[string]any{"type": "shout"})
	assert.Equal(t, "Unknown message type", readFrame(t, c)["error"])

	initSocket(t, c, "w1")
	send(t, c, map[string]any{"type": "chat", "workspaceId": "w1", "message": "   "})
	assert.Equal(t, "Message is required", readFrame(t, c)["error"])

	send(t, c, map[string]any{"type": "chat", "workspaceId": "w2", "message": "hi"})
	assert.Equal(t, `Socket is not initialised for workspace "w2"`, readFrame(t, c)["error"])
}

func TestErrorFramesFollowLanguage(t *testing.T) {
	_, url := newTestServer(t, echoDispatcher(), WithLocalizer(i18n.NewLocalizer("en", "zh-CN"), func(r *http.Request) string {
		return r.Header.Get("Accept-Language")
	}))
	c, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Accept-Language": []string{"zh-CN"}})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	send(t, c, map[string]any{"type": "shout"})
	frame := readFrame(t, c)
	assert.Equal(t, "error", frame["type"])
	assert.Equal(t, "未知的消息类型", frame["error"])
}

func TestChatLimit(t *testing.T) {
	var calls atomic.Int32
	budget := map[string]int{"w1": 2, "w2": 1}
	var mu sync.Mutex
	_, url := newTestServer(t, DispatchFunc(func(_ context.Context, id, msg string) types.DispatchResult {
		calls.Add(1)
		return types.DispatchResult{Success: true, Response: id + ":" + msg}
	}), WithChatLimit(func(id string) bool {
		mu.Lock()
		defer mu.Unlock()
		if budget[id] == 0 {
			return false
		}
		budget[id]--
		return true
	}))
	c := dial(t, url)
	initSocket(t, c, "w1")

	for i := 0; i < 2; i++ {
		send(t, c, map[string]any{"type": "chat", "workspaceId": "w1", "message": "ok"})
		readFrame(t, c)
		readFrame(t, c)
		assert.Equal(t, "response", readFrame(t, c)["type"])
	}

	for i := 0; i < 3; i++ {
		send(t, c, map[string]any{"type": "chat", "workspaceId": "w1", "message": "too many"})
		frame := readFrame(t, c)
		assert.Equal(t, "error", frame["type"])
		assert.Equal(t, "Too many requests, please slow down", frame["error"])
	}
	assert.Equal(t, int32(2), calls.Load())

	// other workspaces keep their own budget
	other := dial(t, url)
	initSocket(t, other, "w2")
	send(t, other, map[string]any{"type": "chat", "workspaceId": "w2", "message": "ok"})
	readFrame(t, other)
	readFrame(t, other)
	assert.Equal(t, "w2:ok", readFrame(t, other)["response"])
}

func TestCloseUnbinds(t *testing.T) {
	s, url := newTestServer(t, echoDispatcher())
	c := dial(t, url)
	initSocket(t, c, "w1")

	c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.Close()

	assert.Eventually(t, func() bool {
		_, ok := s.Hub().Lookup("w1")
		return !ok
	}, 2*time.Second, 20*time.Millisecond)
}
