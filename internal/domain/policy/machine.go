package policy

import (
	"sync"
	"time"

	"github.com/ladyblueumd/url-opener-v2/internal/domain/classify"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

// State represents the interception state of one embedded view
type State string

const (
	StateIdle        State = "idle"
	StateAuthPending State = "auth_pending"
)

// Action tells the shell how to respond to an engine event
type Action string

const (
	// ActionNone lets the engine proceed on its own
	ActionNone Action = "none"
	// ActionLoadURL loads the URL in the current view
	ActionLoadURL Action = "load-url"
	// ActionDenyWindow cancels a popup request
	ActionDenyWindow Action = "deny-window"
)

// Decision is the outcome of exactly one transition
type Decision struct {
	Action Action
	URL    string

	// Notice is set when the renderer should surface a message
	Notice *types.Notice
	// Entry is set when the event was recorded in history
	Entry *types.HistoryEntry
	// Suppressed is set when a load failure was swallowed
	Suppressed bool

	AuthStarted   bool
	AuthCompleted bool
	AuthExpired   bool
}

// Sink consumes completed navigations. The policy never reads history
// back; recording is strictly one-way.
type Sink interface {
	Append(types.HistoryEntry)
}

// Config controls per-view policy behavior
type Config struct {
	// PendingTimeout bounds how long a view stays auth-pending without
	// a completing load. Zero disables expiry.
	PendingTimeout time.Duration

	// DenyNotice is the message shown when a popup is cancelled
	DenyNotice string
}

// DefaultDenyNotice is used when Config.DenyNotice is empty
const DefaultDenyNotice = "Opening links in an external browser is disabled. The link was blocked."

// Machine is the per-view interception state machine. Engine events for
// one view arrive on a single goroutine, so transitions are strictly
// ordered; the mutex only guards status reads from API handlers.
type Machine struct {
	mu sync.Mutex

	viewID       string
	state        State
	pendingSince time.Time
	pendingURL   string
	currentBatch *string

	classifier *classify.Classifier
	sink       Sink
	cfg        Config
	clock      func() time.Time
}

// New creates an idle machine for one view
func New(viewID string, classifier *classify.Classifier, sink Sink, cfg Config) *Machine {
	if cfg.DenyNotice == "" {
		cfg.DenyNotice = DefaultDenyNotice
	}
	return &Machine{
		viewID:     viewID,
		state:      StateIdle,
		classifier: classifier,
		sink:       sink,
		cfg:        cfg,
		clock:      time.Now,
	}
}

// WithClock overrides the time source, for tests
func (m *Machine) WithClock(clock func() time.Time) *Machine {
	m.clock = clock
	return m
}

// State returns the current interception state
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expireLocked()
	return m.state
}

// AuthPending reports whether an auth flow is in progress
func (m *Machine) AuthPending() bool {
	return m.State() == StateAuthPending
}

// PendingURL returns the URL that started the in-progress auth flow
func (m *Machine) PendingURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthPending {
		return ""
	}
	return m.pendingURL
}

// SetBatchContext attributes subsequent completed navigations to a
// batch. Nil clears the attribution.
func (m *Machine) SetBatchContext(batchID *string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentBatch = batchID
}

// OnWillNavigate handles a top-level navigation announcement
func (m *Machine) OnWillNavigate(url string) Decision {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := Decision{Action: ActionNone}
	d.AuthExpired = m.expireLocked()

	if m.classifier.Classify(url).AuthRelated {
		d.AuthStarted = m.enterPendingLocked(url)
	}
	return d
}

// OnRedirect handles a server- or meta-redirect reported by the engine.
// Auth-related destinations are forwarded to the current view so the
// flow stays embedded.
func (m *Machine) OnRedirect(url string) Decision {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := Decision{Action: ActionNone}
	d.AuthExpired = m.expireLocked()

	if m.classifier.Classify(url).AuthRelated {
		d.AuthStarted = m.enterPendingLocked(url)
		d.Action = ActionLoadURL
		d.URL = url
	}
	return d
}

// OnNewWindow handles a popup request. Auth-related URLs load in the
// current view instead; everything else is denied with a blocking
// notice. A new window is never opened.
func (m *Machine) OnNewWindow(url string) Decision {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := Decision{}
	d.AuthExpired = m.expireLocked()

	if m.classifier.Classify(url).AuthRelated {
		d.AuthStarted = m.enterPendingLocked(url)
		d.Action = ActionLoadURL
		d.URL = url
		return d
	}

	d.Action = ActionDenyWindow
	d.Notice = &types.Notice{
		Level:    types.NoticeWarning,
		Title:    "External browser disabled",
		Message:  m.cfg.DenyNotice,
		Blocking: true,
	}
	return d
}

// OnLoadStart handles the engine's load-started chatter. It only drives
// pending expiry; the engine proceeds unconditionally.
func (m *Machine) OnLoadStart(url string) Decision {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Decision{Action: ActionNone, AuthExpired: m.expireLocked()}
}

// OnLoadFinish records the completed navigation and, when the landed
// URL carries a recognized token parameter, closes the auth flow.
func (m *Machine) OnLoadFinish(url, title string) Decision {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := Decision{Action: ActionNone}
	d.AuthExpired = m.expireLocked()

	entry := types.HistoryEntry{
		URL:       url,
		Timestamp: m.clock(),
		ViewID:    m.viewID,
		Title:     title,
		Outcome:   types.OutcomeLoaded,
		BatchID:   m.currentBatch,
	}
	m.sink.Append(entry)
	d.Entry = &entry

	if m.state == StateAuthPending && m.classifier.HasTokenParam(url) {
		m.state = StateIdle
		m.pendingURL = ""
		d.AuthCompleted = true
	}
	return d
}

// OnLoadFail decides whether a load failure surfaces to the user.
// Aborted loads are always suppressed; any failure during an auth flow
// is suppressed as expected redirect-chain noise. Failures while idle
// surface as a notice and are recorded so batch status can see them.
func (m *Machine) OnLoadFail(url string, code int, description string) Decision {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := Decision{Action: ActionNone}
	d.AuthExpired = m.expireLocked()

	if ClassifyError(code, description) == ErrorAborted {
		d.Suppressed = true
		return d
	}

	if m.state == StateAuthPending {
		d.Suppressed = true
		return d
	}

	entry := types.HistoryEntry{
		URL:       url,
		Timestamp: m.clock(),
		ViewID:    m.viewID,
		Outcome:   types.OutcomeFailed,
		BatchID:   m.currentBatch,
	}
	m.sink.Append(entry)
	d.Entry = &entry

	d.Notice = &types.Notice{
		Level:   types.NoticeError,
		Title:   "Page failed to load",
		Message: description,
	}
	return d
}

// enterPendingLocked moves Idle to AuthPending. Re-classification while
// already pending refreshes the start time so slow multi-hop flows do
// not expire mid-chain.
func (m *Machine) enterPendingLocked(url string) bool {
	started := m.state == StateIdle
	m.state = StateAuthPending
	m.pendingSince = m.clock()
	m.pendingURL = url
	return started
}

// expireLocked drops a stale auth flow. Returns true when the flow
// expired on this call.
func (m *Machine) expireLocked() bool {
	if m.state != StateAuthPending || m.cfg.PendingTimeout <= 0 {
		return false
	}
	if m.clock().Sub(m.pendingSince) < m.cfg.PendingTimeout {
		return false
	}
	m.state = StateIdle
	m.pendingURL = ""
	return true
}
