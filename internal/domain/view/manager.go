package view

import (
	"sync"
	"time"

	"github.com/ladyblueumd/url-opener-v2/internal/domain/classify"
	"github.com/ladyblueumd/url-opener-v2/internal/domain/policy"
	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/monitoring"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/id"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

// Session is the server-side state of one embedded view: the current
// page, the interception machine, and the cookie records the engine
// reported. The renderer owns the actual webview; this is its shadow.
type Session struct {
	mu      sync.Mutex
	view    types.View
	machine *policy.Machine
	cookies *CookieJar
}

// ID returns the view ID
func (s *Session) ID() string {
	return s.view.ID
}

// Machine returns the interception state machine for this view
func (s *Session) Machine() *policy.Machine {
	return s.machine
}

// Cookies returns the cookie records for this view
func (s *Session) Cookies() *CookieJar {
	return s.cookies
}

// Snapshot returns a copy of the view state
func (s *Session) Snapshot() types.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.view
	v.AuthPending = s.machine.AuthPending()
	return v
}

// SetCurrent records the page the view landed on
func (s *Session) SetCurrent(url, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view.URL = url
	if title != "" {
		s.view.Title = title
	}
	s.view.NavigatedAt = time.Now()
}

// SetTitle records a title change reported by the engine
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Title = title
}

// SetBatch attributes subsequent navigations to a batch
func (s *Session) SetBatch(batchID *string) {
	s.mu.Lock()
	s.view.BatchID = batchID
	s.mu.Unlock()
	s.machine.SetBatchContext(batchID)
}

func (s *Session) state() types.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.State
}

func (s *Session) setState(state types.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.State = state
}

func (s *Session) setWindow(pos *types.WindowPosition, size *types.WindowSize) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.WindowPos = pos
	s.view.WindowSize = size
}

// Manager orchestrates view session lifecycle
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session // Protected by mu
	focusedID *string             // Protected by mu

	classifier *classify.Classifier
	sink       policy.Sink
	policyCfg  policy.Config
	metrics    *monitoring.Metrics
}

// OpenOptions tunes view creation
type OpenOptions struct {
	Background bool
	UserAgent  string
	BatchID    *string
}

// NewManager creates a new view manager
func NewManager(classifier *classify.Classifier, sink policy.Sink, policyCfg policy.Config) *Manager {
	return &Manager{
		sessions:   make(map[string]*Session),
		classifier: classifier,
		sink:       sink,
		policyCfg:  policyCfg,
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Open creates a new view session for a URL
func (m *Manager) Open(url string, opts OpenOptions) *types.View {
	viewID := string(id.NewViewID())

	state := types.StateActive
	if opts.Background {
		state = types.StateBackground
	}

	session := &Session{
		view: types.View{
			ID:          viewID,
			URL:         url,
			State:       state,
			UserAgent:   opts.UserAgent,
			BatchID:     opts.BatchID,
			CreatedAt:   time.Now(),
			NavigatedAt: time.Now(),
		},
		machine: policy.New(viewID, m.classifier, m.sink, m.policyCfg),
		cookies: NewCookieJar(),
	}
	session.machine.SetBatchContext(opts.BatchID)

	m.mu.Lock()
	if !opts.Background {
		// Unfocus current view
		if m.focusedID != nil {
			if current, exists := m.sessions[*m.focusedID]; exists && current.state() == types.StateActive {
				current.setState(types.StateBackground)
			}
		}
		m.focusedID = &viewID
	}
	m.sessions[viewID] = session
	count := len(m.sessions)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SetActiveViews(count)
		m.metrics.IncViewsTotal()
	}

	snapshot := session.Snapshot()
	return &snapshot
}

// Restore reopens a view from a saved snapshot, keeping its title and
// window geometry. Focus is the caller's job.
func (m *Manager) Restore(snap types.ViewSnapshot) *types.View {
	v := m.Open(snap.URL, OpenOptions{
		Background: snap.State != types.StateActive,
		UserAgent:  snap.UserAgent,
	})

	session, ok := m.Session(v.ID)
	if !ok {
		return v
	}
	if snap.Title != "" {
		session.SetTitle(snap.Title)
	}
	session.setWindow(snap.WindowPos, snap.WindowSize)

	restored := session.Snapshot()
	return &restored
}

// Get retrieves a view snapshot by ID
func (m *Manager) Get(id string) (*types.View, bool) {
	session, ok := m.Session(id)
	if !ok {
		return nil, false
	}
	snapshot := session.Snapshot()
	return &snapshot, true
}

// Session retrieves the live session for a view
func (m *Manager) Session(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	return session, ok
}

// Focused returns the focused session
func (m *Manager) Focused() (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.focusedID == nil {
		return nil, false
	}
	session, ok := m.sessions[*m.focusedID]
	return session, ok
}

// List returns all views, optionally filtered by state
func (m *Manager) List(state *types.State) []*types.View {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	views := make([]*types.View, 0, len(sessions))
	for _, s := range sessions {
		snapshot := s.Snapshot()
		if state == nil || snapshot.State == *state {
			views = append(views, &snapshot)
		}
	}
	return views
}

// Focus brings a view to foreground
func (m *Manager) Focus(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return false
	}

	// Unfocus current view
	if m.focusedID != nil && *m.focusedID != id {
		if current, exists := m.sessions[*m.focusedID]; exists && current.state() == types.StateActive {
			current.setState(types.StateBackground)
		}
	}

	session.setState(types.StateActive)
	m.focusedID = &id

	return true
}

// Close destroys a view session and its cookie records
func (m *Manager) Close(id string) bool {
	m.mu.Lock()

	session, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return false
	}

	session.setState(types.StateClosed)
	session.cookies.Clear("")
	delete(m.sessions, id)

	// Update focus if this was the focused view
	if m.focusedID != nil && *m.focusedID == id {
		m.focusedID = nil

		// Auto-focus another view
		for _, s := range m.sessions {
			m.focusedID = &s.view.ID
			s.setState(types.StateActive)
			break
		}
	}

	count := len(m.sessions)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SetActiveViews(count)
	}

	return true
}

// Stats returns manager statistics
func (m *Manager) Stats() types.Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total, active, background int
	for _, s := range m.sessions {
		total++
		switch s.state() {
		case types.StateActive:
			active++
		case types.StateBackground:
			background++
		}
	}

	// Copy pointer to avoid race
	var focusedID *string
	if m.focusedID != nil {
		id := *m.focusedID
		focusedID = &id
	}

	return types.Stats{
		TotalViews:      total,
		ActiveViews:     active,
		BackgroundViews: background,
		FocusedViewID:   focusedID,
	}
}

// UpdateWindow updates window geometry for a view
func (m *Manager) UpdateWindow(id string, pos *types.WindowPosition, size *types.WindowSize) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return false
	}

	session.setWindow(pos, size)

	return true
}
