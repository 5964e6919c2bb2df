package echo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quka-ai/workbench/pkg/ai"
	"github.com/quka-ai/workbench/pkg/ai/echo"
)

func TestGenerateEchoesMessageOnly(t *testing.T) {
	res, err := echo.New().Generate(context.Background(), ai.NewWorkspacePrompt("u1-1", "build a todo app"))
	require.NoError(t, err)

	assert.Equal(t, "[mock] received: build a todo app", res.Text)
	assert.NotContains(t, res.Text, "coding assistant")
	assert.Equal(t, echo.NAME, res.Model)
}
