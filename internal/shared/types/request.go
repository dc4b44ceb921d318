package types

// ExecuteRequest represents a service execution request
type ExecuteRequest struct {
	ToolID string                 `json:"tool_id" binding:"required"`
	Params map[string]interface{} `json:"params" binding:"required"`
	ViewID *string                `json:"view_id,omitempty"`
}

// OpenViewRequest represents a request to open a new embedded view
type OpenViewRequest struct {
	URL        string `json:"url" binding:"required"`
	Background bool   `json:"background"`
	UserAgent  string `json:"user_agent,omitempty"`
}

// OpenBatchRequest represents a request to submit a list of URLs
type OpenBatchRequest struct {
	URLs  []string `json:"urls" binding:"required"`
	Note  string   `json:"note,omitempty"`
	Probe bool     `json:"probe"`
	Force bool     `json:"force"` // accept a list already submitted
}

// SaveSnapshotRequest represents a request to save the current shell session
type SaveSnapshotRequest struct {
	Name string `json:"name" binding:"required"`
}
