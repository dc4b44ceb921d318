package history

import (
	"sync"

	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/monitoring"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
)

// DefaultCapacity bounds the in-memory store when no capacity is configured
const DefaultCapacity = 10000

// Sink consumes completed navigations
type Sink interface {
	Append(types.HistoryEntry)
}

// Store is an append-only, bounded, in-memory history. When full, the
// oldest entries are dropped. Ordering is strictly append order; the
// store never deduplicates, filters, or sorts. Durable persistence is
// the renderer's concern, not the shell's.
type Store struct {
	mu       sync.RWMutex
	ring     []types.HistoryEntry
	head     int // index of the oldest entry
	size     int
	recorded int64
	dropped  int64
	perBatch map[string]int64
	metrics  *monitoring.Metrics
}

// Stats summarizes store activity
type Stats struct {
	Size     int              `json:"size"`
	Capacity int              `json:"capacity"`
	Recorded int64            `json:"recorded"`
	Dropped  int64            `json:"dropped"`
	PerBatch map[string]int64 `json:"per_batch,omitempty"`
}

// NewStore creates a bounded history store
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		ring:     make([]types.HistoryEntry, capacity),
		perBatch: make(map[string]int64),
	}
}

// WithMetrics enables metrics tracking
func (s *Store) WithMetrics(metrics *monitoring.Metrics) *Store {
	s.metrics = metrics
	return s
}

// Append records one completed navigation
func (s *Store) Append(entry types.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	capacity := len(s.ring)
	if s.size == capacity {
		// Overwrite the oldest slot
		if old := s.ring[s.head]; old.BatchID != nil {
			if s.perBatch[*old.BatchID]--; s.perBatch[*old.BatchID] <= 0 {
				delete(s.perBatch, *old.BatchID)
			}
		}
		s.ring[s.head] = entry
		s.head = (s.head + 1) % capacity
		s.dropped++
	} else {
		s.ring[(s.head+s.size)%capacity] = entry
		s.size++
	}

	s.recorded++
	if entry.BatchID != nil {
		s.perBatch[*entry.BatchID]++
	}

	if s.metrics != nil {
		s.metrics.RecordHistoryAppend(s.size, s.dropped)
	}
}

// List returns entries in append order. A limit of 0 means no limit;
// offset skips from the oldest end.
func (s *Store) List(limit, offset int) []types.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= s.size {
		return []types.HistoryEntry{}
	}

	n := s.size - offset
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]types.HistoryEntry, n)
	capacity := len(s.ring)
	for i := 0; i < n; i++ {
		out[i] = s.ring[(s.head+offset+i)%capacity]
	}
	return out
}

// Len returns the number of retained entries
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size
}

// Stats returns store statistics
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	perBatch := make(map[string]int64, len(s.perBatch))
	for k, v := range s.perBatch {
		perBatch[k] = v
	}

	return Stats{
		Size:     s.size,
		Capacity: len(s.ring),
		Recorded: s.recorded,
		Dropped:  s.dropped,
		PerBatch: perBatch,
	}
}

// Clear removes all retained entries. Counters keep their totals.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.head = 0
	s.size = 0
	s.perBatch = make(map[string]int64)
}
