package types

type WorkspaceStatus string

const (
	WORKSPACE_STATUS_RUNNING WorkspaceStatus = "running"
	WORKSPACE_STATUS_READY   WorkspaceStatus = "ready"
	WORKSPACE_STATUS_STOPPED WorkspaceStatus = "stopped"
	WORKSPACE_STATUS_ERROR   WorkspaceStatus = "error"
)

// Reapable reports whether a workspace in this status may be removed by housekeeping.
func (s WorkspaceStatus) Reapable() bool {
	return s == WORKSPACE_STATUS_STOPPED || s == WORKSPACE_STATUS_ERROR
}

// DispatchStrategy tells which backend answers chat for a workspace.
type DispatchStrategy string

const (
	// STRATEGY_PROVISIONER runs the agent inside a container managed by the provisioning CLI.
	STRATEGY_PROVISIONER DispatchStrategy = "provisioner"
	// STRATEGY_API falls back to the hosted LLM API.
	STRATEGY_API  DispatchStrategy = "api"
	STRATEGY_MOCK DispatchStrategy = "mock"
)

type Workspace struct {
	ID          string           `json:"workspaceId" db:"id"`
	UserID      string           `json:"userId" db:"user_id"`
	ProjectName string           `json:"projectName" db:"project_name"`
	Description string           `json:"description" db:"description"`
	RepoURL     string           `json:"repoUrl" db:"repo_url"`
	Status      WorkspaceStatus  `json:"status" db:"status"`
	Mode        DispatchStrategy `json:"mode" db:"mode"`
	CreatedAt   int64            `json:"createdAt" db:"created_at"`
	UpdatedAt   int64            `json:"updatedAt" db:"updated_at"`
}

type CreateWorkspaceRequest struct {
	UserID      string `json:"userId"`
	ProjectName string `json:"projectName"`
	Description string `json:"description"`
}

type CreateWorkspaceResponse struct {
	WorkspaceID string           `json:"workspaceId"`
	RepoURL     string           `json:"repoUrl"`
	Status      WorkspaceStatus  `json:"status"`
	Mode        DispatchStrategy `json:"mode"`
}

type WorkspaceStatusResponse struct {
	WorkspaceID string           `json:"workspaceId"`
	Status      WorkspaceStatus  `json:"status"`
	Mode        DispatchStrategy `json:"mode"`
	RepoURL     string           `json:"repoUrl,omitempty"`
	CreatedAt   int64            `json:"createdAt,omitempty"`
	// Details holds the raw provisioner info output when a container backs the workspace.
	Details map[string]any `json:"details,omitempty"`
}
