package protocol

import "strings"

const (
	RedisCacheKeyNamespaceSep string = ":"
)

const (
	RedisCacheKeyPrefixWorkspace     RedisCacheKeyDomainPrefix = "workspace"
	RedisCacheKeyPrefixUserWorkspace RedisCacheKeyDomainPrefix = "user_workspaces"
	RedisCacheKeyPrefixUpdates       RedisCacheKeyDomainPrefix = "workspace_updates"
)

type RedisCacheKeyDomainPrefix string

func GenRedisCacheKey(prefix string, d RedisCacheKeyDomainPrefix, fields ...string) string {
	return strings.Join(append([]string{prefix, string(d)}, fields...), RedisCacheKeyNamespaceSep)
}

// GenWorkspaceKey {prefix}:workspace:{workspace-id}
func GenWorkspaceKey(prefix, workspaceID string) string {
	return GenRedisCacheKey(prefix, RedisCacheKeyPrefixWorkspace, workspaceID)
}

// GenUserWorkspacesKey {prefix}:user_workspaces:{user-id}
func GenUserWorkspacesKey(prefix, userID string) string {
	return GenRedisCacheKey(prefix, RedisCacheKeyPrefixUserWorkspace, userID)
}

// GenWorkspaceUpdatesKey {prefix}:workspace_updates, a sorted set of workspace ids scored by updated_at
func GenWorkspaceUpdatesKey(prefix string) string {
	return GenRedisCacheKey(prefix, RedisCacheKeyPrefixUpdates)
}
