package types

import "time"

// Snapshot represents a saved shell session: the set of open views
type Snapshot struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Views     []ViewSnapshot `json:"views"`
	FocusedID *string        `json:"focused_view_id,omitempty"`
}

// ViewSnapshot captures view state for restoration
type ViewSnapshot struct {
	ID         string          `json:"id"`
	URL        string          `json:"url"`
	Title      string          `json:"title,omitempty"`
	State      State           `json:"state"`
	UserAgent  string          `json:"user_agent,omitempty"`
	WindowPos  *WindowPosition `json:"window_pos,omitempty"`
	WindowSize *WindowSize     `json:"window_size,omitempty"`
}

// SnapshotMetadata contains summary information
type SnapshotMetadata struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ViewCount int       `json:"view_count"`
}

// ToMetadata extracts metadata from a snapshot
func (s *Snapshot) ToMetadata() SnapshotMetadata {
	return SnapshotMetadata{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		ViewCount: len(s.Views),
	}
}

// SnapshotStats contains snapshot manager statistics
type SnapshotStats struct {
	TotalSnapshots int        `json:"total_snapshots"`
	LastSaved      *time.Time `json:"last_saved,omitempty"`
	LastRestored   *time.Time `json:"last_restored,omitempty"`
}
