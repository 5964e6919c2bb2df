package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClientFrame(t *testing.T) {
	f, err := ParseClientFrame([]byte(`{"type":"chat","workspaceId":"u1-1700000000000","message":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, FRAME_CHAT, f.Type)
	assert.Equal(t, "u1-1700000000000", f.WorkspaceID)
	assert.Equal(t, "hi", f.Message)

	_, err = ParseClientFrame([]byte(`not json`))
	assert.Error(t, err)
}

func TestTypingFrameKeepsFalseStatus(t *testing.T) {
	raw, err := json.Marshal(NewTyping("w", false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"typing","workspaceId":"w","status":false}`, string(raw))
}

func TestRedisKeys(t *testing.T) {
	assert.Equal(t, "workbench:workspace:u1-1", GenWorkspaceKey("workbench", "u1-1"))
	assert.Equal(t, "workbench:user_workspaces:u1", GenUserWorkspacesKey("workbench", "u1"))
}
