package types

import "time"

// State represents view lifecycle states
type State string

const (
	StateActive     State = "active"
	StateBackground State = "background"
	StateClosed     State = "closed"
)

// WindowPosition represents window position on screen
type WindowPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// WindowSize represents window dimensions
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// View represents an embedded browser view session
type View struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	State       State     `json:"state"`
	AuthPending bool      `json:"auth_pending"`
	UserAgent   string    `json:"user_agent,omitempty"`
	Referer     string    `json:"referer,omitempty"`
	BatchID     *string   `json:"batch_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	NavigatedAt time.Time `json:"navigated_at"`

	// Window state (for session restoration)
	WindowPos  *WindowPosition `json:"window_pos,omitempty"`
	WindowSize *WindowSize     `json:"window_size,omitempty"`
}

// Stats contains view manager statistics
type Stats struct {
	TotalViews      int     `json:"total_views"`
	ActiveViews     int     `json:"active_views"`
	BackgroundViews int     `json:"background_views"`
	FocusedViewID   *string `json:"focused_view_id,omitempty"`
}

// Cookie represents a cookie reported by the embedded engine
type Cookie struct {
	Name     string     `json:"name"`
	Value    string     `json:"value"`
	Domain   string     `json:"domain"`
	Path     string     `json:"path"`
	Expires  *time.Time `json:"expires,omitempty"`
	Secure   bool       `json:"secure"`
	HTTPOnly bool       `json:"http_only"`
}
