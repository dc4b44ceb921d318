package types

import "time"

// Source identifies which engine callback produced a navigation event
type Source string

const (
	SourceWillNavigate Source = "will-navigate"
	SourceRedirect     Source = "redirect"
	SourceNewWindow    Source = "new-window-request"
)

// NavigationEvent is the ephemeral record of a single engine callback.
// It exists only for the duration of one policy decision.
type NavigationEvent struct {
	ViewID      string            `json:"view_id"`
	URL         string            `json:"url"`
	Source      Source            `json:"source"`
	QueryParams map[string]string `json:"query_params,omitempty"`
}

// LoadError carries the engine's failure report for a navigation
type LoadError struct {
	URL         string `json:"url"`
	Code        int    `json:"code"`
	Description string `json:"description"`
}

// Outcome records how a navigation ended
type Outcome string

const (
	OutcomeLoaded Outcome = "loaded"
	OutcomeFailed Outcome = "failed"
)

// HistoryEntry is one completed navigation. Entries are append-only;
// duplicates are expected when the same URL loads twice.
type HistoryEntry struct {
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
	ViewID    string    `json:"view_id,omitempty"`
	Title     string    `json:"title,omitempty"`
	Outcome   Outcome   `json:"outcome,omitempty"`
	BatchID   *string   `json:"batch_id,omitempty"`
}

// NoticeLevel grades user-facing notices
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message the renderer should surface to the user.
// Blocking notices require dismissal before interaction continues.
type Notice struct {
	Level    NoticeLevel `json:"level"`
	Title    string      `json:"title"`
	Message  string      `json:"message"`
	Blocking bool        `json:"blocking"`
}
