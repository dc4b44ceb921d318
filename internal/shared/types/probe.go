package types

// ProbeKind classifies what a URL serves
type ProbeKind string

const (
	ProbePage ProbeKind = "page"
	ProbeFile ProbeKind = "file"
)

// ProbeResult records the preflight outcome for one URL
type ProbeResult struct {
	URL         string    `json:"url"`
	Reachable   bool      `json:"reachable"`
	StatusCode  int       `json:"status_code,omitempty"`
	FinalURL    string    `json:"final_url,omitempty"`
	Hops        int       `json:"hops"`
	Kind        ProbeKind `json:"kind,omitempty"`
	Title       string    `json:"title,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Charset     string    `json:"charset,omitempty"`
	Error       *string   `json:"error,omitempty"`
	DurationMS  int64     `json:"duration_ms"`
}
