package types

type ChatRequest struct {
	Message string `json:"message"`
}

// DispatchResult is the outcome of handing one chat message to a workspace backend.
// Failures are carried in Error with Success=false, never as a Go error.
type DispatchResult struct {
	Success  bool             `json:"success"`
	Response string           `json:"response,omitempty"`
	Error    string           `json:"error,omitempty"`
	Strategy DispatchStrategy `json:"-"`
}

func DispatchFailed(strategy DispatchStrategy, err error) DispatchResult {
	return DispatchResult{
		Success:  false,
		Error:    err.Error(),
		Strategy: strategy,
	}
}
