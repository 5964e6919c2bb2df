package i18n

var ALLOW_LANG = map[string]bool{
	"en":    true,
	"zh-CN": true,
}

const DEFAULT_LANG = "en"

const (
	ERROR_INTERNAL                = "error.internal"
	ERROR_NOT_FOUND               = "error.notfound"
	ERROR_INVALIDARGUMENT         = "error.invalidargument"
	ERROR_TOO_MANY_REQUESTS       = "error.tooManyRequests"
	ERROR_UNSUPPORTED_FEATURE     = "error.unsupported.feature"
	ERROR_MISSING_USER_ID         = "error.workspace.missing_user_id"
	ERROR_MISSING_PROJECT_NAME    = "error.workspace.missing_project_name"
	ERROR_EMPTY_MESSAGE           = "error.chat.empty_message"
	ERROR_MESSAGE_TOO_LONG        = "error.chat.message_too_long"
	ERROR_REPOSITORY_CREATE       = "error.github.repository_create"
	ERROR_PROVISIONER_FAILED      = "error.provisioner.failed"
	ERROR_PROVISIONER_UNAVAILABLE = "error.provisioner.unavailable"
	ERROR_DISPATCH_FAILED         = "error.dispatch.failed"
	ERROR_WORKSPACE_NOT_BOUND     = "error.relay.workspace_not_bound"
	ERROR_MALFORMED_FRAME         = "error.relay.malformed_frame"
	ERROR_UNKNOWN_FRAME           = "error.relay.unknown_frame"
)

const (
	ERROR_OPERATION_IN_PROGRESS = "error.workspace.operation_in_progress"
	ERROR_WORKSPACE_EXISTS      = "error.workspace.exists"
)
