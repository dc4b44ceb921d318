package batch

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/monitoring"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/id"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/utils"
)

var (
	ErrNotFound  = errors.New("batch not found")
	ErrDuplicate = errors.New("batch already submitted")
	ErrNoURLs    = errors.New("batch has no URLs")
)

// Dispatcher carries a batch URL to the renderer engine. A nil target
// means a fresh view; otherwise the URL loads in the given view.
type Dispatcher interface {
	Dispatch(url string, target *string, batchID string) (viewID string, err error)
}

// Manager tracks submitted batches and their per-URL outcomes
type Manager struct {
	mu           sync.RWMutex
	batches      map[string]*types.Batch // Protected by mu
	fingerprints map[string]string       // fingerprint -> batch ID, protected by mu

	dispatcher  Dispatcher
	fingerprint *utils.BatchFingerprint
	metrics     *monitoring.Metrics
}

// SubmitOptions tunes batch creation
type SubmitOptions struct {
	Note  string
	Force bool // Accept a list already submitted
}

// NewManager creates a new batch manager
func NewManager(dispatcher Dispatcher) *Manager {
	return &Manager{
		batches:      make(map[string]*types.Batch),
		fingerprints: make(map[string]string),
		dispatcher:   dispatcher,
		fingerprint:  utils.NewBatchFingerprint(nil),
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Submit records a new batch of URLs. Resubmitting the same list
// fails with ErrDuplicate unless forced.
func (m *Manager) Submit(urls []string, opts SubmitOptions) (*types.Batch, error) {
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			cleaned = append(cleaned, u)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrNoURLs
	}

	fp := m.fingerprint.Generate(cleaned)

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.fingerprints[fp]; ok && !opts.Force {
		return nil, fmt.Errorf("%w: matches %s", ErrDuplicate, existing)
	}

	items := make([]types.BatchItem, len(cleaned))
	for i, u := range cleaned {
		items[i] = types.BatchItem{URL: u, Status: types.ItemPending}
	}

	batch := &types.Batch{
		ID:          string(id.NewBatchID()),
		Note:        opts.Note,
		Fingerprint: fp,
		Items:       items,
		CreatedAt:   time.Now(),
	}

	m.batches[batch.ID] = batch
	m.fingerprints[fp] = batch.ID

	if m.metrics != nil {
		m.metrics.RecordBatchSubmitted(len(items))
	}

	batchCopy := *batch
	batchCopy.Items = append([]types.BatchItem(nil), batch.Items...)
	return &batchCopy, nil
}

// Open dispatches every pending URL in a batch. URLs flagged
// unreachable by a preflight probe are skipped. Returns the updated
// batch; dispatch failures leave the item pending.
func (m *Manager) Open(batchID string, target *string) (*types.Batch, error) {
	m.mu.RLock()
	batch, ok := m.batches[batchID]
	if !ok {
		m.mu.RUnlock()
		return nil, ErrNotFound
	}

	// Snapshot the work list so dispatch runs without the lock
	type job struct {
		index int
		url   string
	}
	var jobs []job
	var skipped []int
	for i, item := range batch.Items {
		switch item.Status {
		case types.ItemPending:
			jobs = append(jobs, job{index: i, url: item.URL})
		case types.ItemUnreachable:
			skipped = append(skipped, i)
		}
	}
	m.mu.RUnlock()

	type outcome struct {
		index  int
		viewID string
	}
	var opened []outcome
	for _, j := range jobs {
		viewID, err := m.dispatcher.Dispatch(j.url, target, batchID)
		if err != nil {
			continue
		}
		opened = append(opened, outcome{index: j.index, viewID: viewID})
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	batch, ok = m.batches[batchID]
	if !ok {
		return nil, ErrNotFound
	}

	now := time.Now()
	for _, o := range opened {
		item := &batch.Items[o.index]
		if item.Status != types.ItemPending {
			continue
		}
		item.Status = types.ItemOpened
		viewID := o.viewID
		item.ViewID = &viewID
		openedAt := now
		item.OpenedAt = &openedAt
	}
	for _, i := range skipped {
		if batch.Items[i].Status == types.ItemUnreachable {
			batch.Items[i].Status = types.ItemSkipped
		}
	}

	if m.metrics != nil {
		m.metrics.RecordBatchOpened(len(opened))
	}

	batchCopy := *batch
	batchCopy.Items = append([]types.BatchItem(nil), batch.Items...)
	return &batchCopy, nil
}

// AttachProbe records preflight results against batch items. Items
// whose probe failed are marked unreachable while still pending.
func (m *Manager) AttachProbe(batchID string, results []types.ProbeResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	batch, ok := m.batches[batchID]
	if !ok {
		return ErrNotFound
	}

	byURL := make(map[string]*types.ProbeResult, len(results))
	for i := range results {
		byURL[results[i].URL] = &results[i]
	}

	for i := range batch.Items {
		item := &batch.Items[i]
		result, ok := byURL[item.URL]
		if !ok {
			continue
		}
		probe := *result
		item.Probe = &probe
		if !probe.Reachable && item.Status == types.ItemPending {
			item.Status = types.ItemUnreachable
		}
	}

	return nil
}

// MarkOpened records that a batch URL landed in a view. Used when the
// engine confirms a load that did not go through Open.
func (m *Manager) MarkOpened(batchID, url, viewID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	batch, ok := m.batches[batchID]
	if !ok {
		return false
	}

	for i := range batch.Items {
		item := &batch.Items[i]
		if item.URL != url || item.Status == types.ItemOpened {
			continue
		}
		item.Status = types.ItemOpened
		v := viewID
		item.ViewID = &v
		now := time.Now()
		item.OpenedAt = &now
		return true
	}
	return false
}

// Get retrieves a batch by ID
func (m *Manager) Get(batchID string) (*types.Batch, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	batch, ok := m.batches[batchID]
	if !ok {
		return nil, false
	}

	batchCopy := *batch
	batchCopy.Items = append([]types.BatchItem(nil), batch.Items...)
	return &batchCopy, true
}

// List returns metadata for all batches
func (m *Manager) List() []types.BatchMetadata {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.BatchMetadata, 0, len(m.batches))
	for _, batch := range m.batches {
		out = append(out, batch.ToMetadata())
	}
	return out
}

// Delete removes a batch record
func (m *Manager) Delete(batchID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	batch, ok := m.batches[batchID]
	if !ok {
		return false
	}

	delete(m.fingerprints, batch.Fingerprint)
	delete(m.batches, batchID)
	return true
}

// Stats returns batch manager statistics
func (m *Manager) Stats() types.BatchStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := types.BatchStats{TotalBatches: len(m.batches)}
	for _, batch := range m.batches {
		stats.TotalURLs += len(batch.Items)
		for _, item := range batch.Items {
			if item.Status == types.ItemOpened {
				stats.OpenedURLs++
			}
		}
	}
	return stats
}
