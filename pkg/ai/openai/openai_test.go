package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/workbench/pkg/ai"
	"github.com/quka-ai/workbench/pkg/ai/openai"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func Test_Generate(t *testing.T) {
	var gotModel, gotContent string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel = req.Model
		if len(req.Messages) > 0 {
			gotContent = req.Messages[0].Content
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","model":"test-model","choices":[{"index":0,"message":{"role":"assistant","content":""},"finish_reason":"stop"},{"index":1,"message":{"role":"assistant","content":"hello from model"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}}`))
	})

	d := openai.New("test-token", srv.URL, ai.ModelName{ChatModel: "test-model"})
	res, err := d.Generate(context.Background(), ai.Prompt{Message: "hello", Text: "say hello"})
	require.NoError(t, err)

	assert.Equal(t, "test-model", gotModel)
	assert.Equal(t, "say hello", gotContent)
	assert.Equal(t, "hello from model", res.Text)
	assert.Equal(t, 7, res.Usage.TotalTokens)
	assert.Equal(t, openai.NAME, d.Name())
}

func Test_GenerateEmpty(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cmpl-2","object":"chat.completion","model":"m","choices":[]}`))
	})

	_, err := openai.New("t", srv.URL, ai.ModelName{}).Generate(context.Background(), ai.Prompt{Text: "x"})
	assert.Error(t, err)
}

func Test_GenerateUpstreamError(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	})

	_, err := openai.NewAnthropic("bad", srv.URL, ai.ModelName{}).Generate(context.Background(), ai.Prompt{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}
