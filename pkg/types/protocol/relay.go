package protocol

import "encoding/json"

type FrameType string

const (
	// client -> server
	FRAME_INIT FrameType = "init"
	FRAME_CHAT FrameType = "chat"

	// server -> client
	FRAME_CONNECTED FrameType = "connected"
	FRAME_TYPING    FrameType = "typing"
	FRAME_RESPONSE  FrameType = "response"
	FRAME_ERROR     FrameType = "error"
)

// ClientFrame is any message a browser sends over the relay socket.
type ClientFrame struct {
	Type        FrameType `json:"type"`
	WorkspaceID string    `json:"workspaceId"`
	Message     string    `json:"message,omitempty"`
}

func ParseClientFrame(raw []byte) (ClientFrame, error) {
	var f ClientFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		return f, err
	}
	return f, nil
}

type ConnectedFrame struct {
	Type        FrameType `json:"type"`
	WorkspaceID string    `json:"workspaceId"`
}

type TypingFrame struct {
	Type        FrameType `json:"type"`
	WorkspaceID string    `json:"workspaceId"`
	Status      bool      `json:"status"`
}

type ResponseFrame struct {
	Type        FrameType `json:"type"`
	WorkspaceID string    `json:"workspaceId"`
	Success     bool      `json:"success"`
	Response    string    `json:"response,omitempty"`
	Error       string    `json:"error,omitempty"`
	Timestamp   int64     `json:"timestamp"`
}

type ErrorFrame struct {
	Type  FrameType `json:"type"`
	Error string    `json:"error"`
}

func NewConnected(workspaceID string) ConnectedFrame {
	return ConnectedFrame{Type: FRAME_CONNECTED, WorkspaceID: workspaceID}
}

func NewTyping(workspaceID string, status bool) TypingFrame {
	return TypingFrame{Type: FRAME_TYPING, WorkspaceID: workspaceID, Status: status}
}

func NewError(msg string) ErrorFrame {
	return ErrorFrame{Type: FRAME_ERROR, Error: msg}
}
