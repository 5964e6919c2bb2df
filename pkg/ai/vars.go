package ai

import "strings"

const (
	PROMPT_VAR_MESSAGE      = "${message}"
	PROMPT_VAR_WORKSPACE_ID = "${workspace_id}"
)

// PROMPT_WORKSPACE_CHAT is sent to the hosted model when no container backs a workspace.
const PROMPT_WORKSPACE_CHAT = `You are a coding assistant working inside the development workspace ${workspace_id}.
The workspace was created from a project template and has no running container, so you cannot execute commands or edit files directly.
Answer the user's request with concrete code and step by step instructions they can apply themselves.

User request:
${message}`

// NewWorkspacePrompt renders message into the workspace chat template.
func NewWorkspacePrompt(workspaceID, message string) Prompt {
	return Prompt{
		Message: message,
		Text:    BuildWorkspacePrompt(workspaceID, message),
	}
}

// BuildWorkspacePrompt fills the workspace chat template.
func BuildWorkspacePrompt(workspaceID, message string) string {
	return strings.NewReplacer(
		PROMPT_VAR_WORKSPACE_ID, workspaceID,
		PROMPT_VAR_MESSAGE, message,
	).Replace(PROMPT_WORKSPACE_CHAT)
}
