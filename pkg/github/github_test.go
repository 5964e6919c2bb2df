package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepoName(t *testing.T) {
	assert.Equal(t, "my-app-1700000000000", RepoName("my app", 1700000000000))
	assert.Equal(t, "todo.web-42", RepoName("  todo.web ", 42))
	assert.Equal(t, "workspace-1", RepoName("!!!", 1))
}

func TestCreateFromTemplate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/repos/acme/starter/generate", r.URL.Path)
		assert.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"full_name":"team/my-app-1","html_url":"https://github.com/team/my-app-1","clone_url":"https://github.com/team/my-app-1.git"}`))
	}))
	defer srv.Close()

	c := New("gh-token", "team", TemplateRepo{Owner: "acme", Name: "starter"}, WithBaseURL(srv.URL), WithPrivate(true))
	repo, err := c.CreateFromTemplate(context.Background(), "my-app-1", "demo")
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/team/my-app-1", repo.HTMLURL)
	assert.Equal(t, "team/my-app-1", repo.FullName)
	assert.Equal(t, "my-app-1", body["name"])
	assert.Equal(t, "team", body["owner"])
	assert.Equal(t, "demo", body["description"])
	assert.Equal(t, true, body["private"])
}

func TestCreateFromTemplateFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"Name already exists on this account"}`))
	}))
	defer srv.Close()

	c := New("gh-token", "", TemplateRepo{Owner: "acme", Name: "starter"}, WithBaseURL(srv.URL))
	_, err := c.CreateFromTemplate(context.Background(), "dup", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acme/starter")
}
