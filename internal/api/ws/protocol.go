package ws

import (
	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

// Inbound event types reported by the renderer's engine host
const (
	EventWillNavigate = "will-navigate"
	EventRedirect     = "redirect"
	EventNewWindow    = "new-window-request"
	EventLoadStart    = "load-start"
	EventLoadStop     = "load-stop"
	EventLoadFinish   = "load-finish"
	EventLoadFail     = "load-fail"
	EventTitleChanged = "title-changed"
	EventSetCookie    = "set-cookie"
	EventWindowMoved  = "window-moved"
	EventPing         = "ping"
)

// Outbound directive types sent to the renderer
const (
	DirectiveSystem       = "system"
	DirectivePong         = "pong"
	DirectiveError        = "error"
	DirectiveAuthRedirect = "auth-redirect"
	DirectiveWindowDenied = "window-denied"
	DirectiveLoadURL      = "load-url"
	DirectiveOpenView     = "open-view"
	DirectiveNotice       = "notice"
)

// Event is the JSON envelope for one engine callback. Fields beyond
// type and view_id are populated per event type: url for navigation
// events, code and description for load-fail, cookie for set-cookie,
// position and size for window-moved.
type Event struct {
	Type        string                `json:"type"`
	ViewID      string                `json:"view_id,omitempty"`
	URL         string                `json:"url,omitempty"`
	Title       string                `json:"title,omitempty"`
	Code        int                   `json:"code,omitempty"`
	Description string                `json:"description,omitempty"`
	Cookie      *types.Cookie         `json:"cookie,omitempty"`
	Position    *types.WindowPosition `json:"position,omitempty"`
	Size        *types.WindowSize     `json:"size,omitempty"`
}

// Directive is the JSON envelope for one shell instruction
type Directive struct {
	Type      string        `json:"type"`
	ViewID    string        `json:"view_id,omitempty"`
	URL       string        `json:"url,omitempty"`
	BatchID   string        `json:"batch_id,omitempty"`
	View      *types.View   `json:"view,omitempty"`
	Notice    *types.Notice `json:"notice,omitempty"`
	NoticeID  string        `json:"notice_id,omitempty"`
	Message   string        `json:"message,omitempty"`
	Timestamp int64         `json:"timestamp"`
}
