package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/ladyblueumd/url-opener-v2/internal/infrastructure/monitoring"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/id"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/paths"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/types"
	"github.com/ladyblueumd/url-opener-v2/internal/shared/utils"
)

var ErrNotFound = errors.New("snapshot not found")

// Views is the view manager surface needed to capture and restore
type Views interface {
	List(state *types.State) []*types.View
	Stats() types.Stats
	Restore(snap types.ViewSnapshot) *types.View
	Close(id string) bool
	Focus(id string) bool
}

// Manager handles shell session persistence
type Manager struct {
	snapshots sync.Map // id -> *types.Snapshot, immutable once stored
	views     Views
	tree      paths.Tree
	metrics   *monitoring.Metrics

	mu           sync.RWMutex
	lastSaved    *time.Time
	lastRestored *time.Time
}

// NewManager creates a new snapshot manager
func NewManager(views Views, tree paths.Tree) *Manager {
	return &Manager{
		views: views,
		tree:  tree,
	}
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// Hydrate loads snapshots saved by previous runs into the cache.
// Unreadable files are skipped.
func (m *Manager) Hydrate() error {
	entries, err := os.ReadDir(m.tree.Snapshots())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read snapshot dir: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		snapshotID := strings.TrimSuffix(name, ".json")
		if _, ok := m.snapshots.Load(snapshotID); ok {
			continue
		}
		snapshot, err := m.readFile(snapshotID)
		if err != nil {
			continue
		}
		m.snapshots.Store(snapshot.ID, snapshot)
	}
	return nil
}

// Save captures the open views and writes them to disk
func (m *Manager) Save(name string) (*types.Snapshot, error) {
	if err := utils.ValidateName(name, "name"); err != nil {
		return nil, err
	}

	// Capture without holding the lock
	views := m.views.List(nil)
	stats := m.views.Stats()

	captured := make([]types.ViewSnapshot, 0, len(views))
	for _, v := range views {
		if v.State == types.StateClosed {
			continue
		}
		captured = append(captured, types.ViewSnapshot{
			ID:         v.ID,
			URL:        v.URL,
			Title:      v.Title,
			State:      v.State,
			UserAgent:  v.UserAgent,
			WindowPos:  v.WindowPos,
			WindowSize: v.WindowSize,
		})
	}

	now := time.Now()
	snapshot := &types.Snapshot{
		ID:        string(id.NewSnapshotID()),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Views:     captured,
		FocusedID: stats.FocusedViewID,
	}

	data, err := sonic.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := m.tree.Ensure(); err != nil {
		return nil, err
	}
	if err := os.WriteFile(m.path(snapshot.ID), data, 0o644); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}

	m.snapshots.Store(snapshot.ID, snapshot)

	m.mu.Lock()
	m.lastSaved = &now
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.IncSnapshotsSaved()
	}

	return snapshot, nil
}

// Load fetches a snapshot from cache or disk
func (m *Manager) Load(snapshotID string) (*types.Snapshot, error) {
	if cached, ok := m.snapshots.Load(snapshotID); ok {
		return cached.(*types.Snapshot), nil
	}

	snapshot, err := m.readFile(snapshotID)
	if err != nil {
		return nil, err
	}

	m.snapshots.Store(snapshotID, snapshot)
	return snapshot, nil
}

// Restore closes the current views and reopens the saved set
func (m *Manager) Restore(snapshotID string) error {
	snapshot, err := m.Load(snapshotID)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	for _, v := range m.views.List(nil) {
		m.views.Close(v.ID)
	}

	// Reopen in saved order; focus is applied after so the last
	// restored view does not steal it
	viewMap := make(map[string]string, len(snapshot.Views)) // old ID -> new ID
	for _, saved := range snapshot.Views {
		restored := m.views.Restore(saved)
		viewMap[saved.ID] = restored.ID
	}

	if snapshot.FocusedID != nil {
		if newID, ok := viewMap[*snapshot.FocusedID]; ok {
			m.views.Focus(newID)
		}
	}

	now := time.Now()
	m.mu.Lock()
	m.lastRestored = &now
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.IncSnapshotsRestored()
	}

	return nil
}

// List returns metadata for all saved snapshots
func (m *Manager) List() []types.SnapshotMetadata {
	var metadata []types.SnapshotMetadata
	m.snapshots.Range(func(_, value interface{}) bool {
		metadata = append(metadata, value.(*types.Snapshot).ToMetadata())
		return true
	})
	return metadata
}

// Delete removes a snapshot from disk and cache
func (m *Manager) Delete(snapshotID string) error {
	if err := os.Remove(m.path(snapshotID)); err != nil {
		if os.IsNotExist(err) {
			if _, ok := m.snapshots.Load(snapshotID); !ok {
				return ErrNotFound
			}
		} else {
			return fmt.Errorf("delete snapshot: %w", err)
		}
	}

	m.snapshots.Delete(snapshotID)
	return nil
}

// Stats returns snapshot manager statistics
func (m *Manager) Stats() types.SnapshotStats {
	var total int
	m.snapshots.Range(func(_, _ interface{}) bool {
		total++
		return true
	})

	m.mu.RLock()
	lastSaved := m.lastSaved
	lastRestored := m.lastRestored
	m.mu.RUnlock()

	return types.SnapshotStats{
		TotalSnapshots: total,
		LastSaved:      lastSaved,
		LastRestored:   lastRestored,
	}
}

func (m *Manager) readFile(snapshotID string) (*types.Snapshot, error) {
	data, err := os.ReadFile(m.path(snapshotID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot types.Snapshot
	if err := sonic.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", snapshotID, err)
	}
	if snapshot.ID == "" {
		return nil, fmt.Errorf("snapshot %s has empty ID field", snapshotID)
	}

	return &snapshot, nil
}

func (m *Manager) path(snapshotID string) string {
	return filepath.Join(m.tree.Snapshots(), snapshotID+".json")
}
