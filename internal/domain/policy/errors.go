package policy

import "strings"

// ErrorClass buckets engine load failures for suppression decisions
type ErrorClass string

const (
	// ErrorAborted covers loads the engine gave up on because another
	// navigation replaced them. Routine during redirect chains and
	// never worth a notice.
	ErrorAborted ErrorClass = "aborted"

	// ErrorFailed covers genuine failures (DNS, TLS, connection reset)
	ErrorFailed ErrorClass = "failed"
)

// Engine-specific abort codes. Chromium reports net::ERR_ABORTED as -3;
// WebKit ports report frame-load-interrupted as 102.
var abortCodes = map[int]struct{}{
	-3:  {},
	102: {},
}

// ClassifyError buckets a load failure by code, falling back to the
// engine's human-readable description when the code is unknown.
func ClassifyError(code int, description string) ErrorClass {
	if _, ok := abortCodes[code]; ok {
		return ErrorAborted
	}

	d := strings.ToLower(description)
	if strings.Contains(d, "abort") || strings.Contains(d, "cancel") || strings.Contains(d, "interrupted") {
		return ErrorAborted
	}

	return ErrorFailed
}
