package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildWorkspacePrompt(t *testing.T) {
	prompt := BuildWorkspacePrompt("u1-1700000000000", "add a login page")

	assert.Contains(t, prompt, "workspace u1-1700000000000")
	assert.Contains(t, prompt, "add a login page")
	assert.NotContains(t, prompt, PROMPT_VAR_MESSAGE)
	assert.NotContains(t, prompt, PROMPT_VAR_WORKSPACE_ID)
}

func TestBuildWorkspacePromptKeepsPlaceholderLikeInput(t *testing.T) {
	prompt := BuildWorkspacePrompt("w", "print ${workspace_id} literally")
	assert.Contains(t, prompt, "print ${workspace_id} literally")
}

func TestNewWorkspacePrompt(t *testing.T) {
	p := NewWorkspacePrompt("w1", "add a login page")
	assert.Equal(t, "add a login page", p.Message)
	assert.Equal(t, BuildWorkspacePrompt("w1", "add a login page"), p.Text)
}

func TestFirstText(t *testing.T) {
	txt, ok := FirstText("", "  ", "hello", "world")
	assert.True(t, ok)
	assert.Equal(t, "hello", txt)

	_, ok = FirstText("", "\n")
	assert.False(t, ok)
}

func TestIsOverLimitDisabled(t *testing.T) {
	over, err := IsOverLimit("anything at all", "gpt-4o-mini", 0)
	assert.NoError(t, err)
	assert.False(t, over)
}
