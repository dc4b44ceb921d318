package types

import "time"

// ItemStatus tracks the lifecycle of one URL within a batch
type ItemStatus string

const (
	ItemPending     ItemStatus = "pending"
	ItemOpened      ItemStatus = "opened"
	ItemSkipped     ItemStatus = "skipped"
	ItemUnreachable ItemStatus = "unreachable"
)

// BatchItem is one URL tracked within a batch
type BatchItem struct {
	URL      string       `json:"url"`
	Status   ItemStatus   `json:"status"`
	ViewID   *string      `json:"view_id,omitempty"`
	Probe    *ProbeResult `json:"probe,omitempty"`
	OpenedAt *time.Time   `json:"opened_at,omitempty"`
}

// Batch groups URLs submitted together for tracking
type Batch struct {
	ID          string      `json:"id"`
	Note        string      `json:"note,omitempty"`
	Fingerprint string      `json:"fingerprint"`
	Items       []BatchItem `json:"items"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Progress summarizes per-item outcomes for a batch
type Progress struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Opened      int `json:"opened"`
	Skipped     int `json:"skipped"`
	Unreachable int `json:"unreachable"`
}

// BatchMetadata contains summary information
type BatchMetadata struct {
	ID        string    `json:"id"`
	Note      string    `json:"note,omitempty"`
	URLCount  int       `json:"url_count"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
}

// ToMetadata extracts metadata from a batch
func (b *Batch) ToMetadata() BatchMetadata {
	return BatchMetadata{
		ID:        b.ID,
		Note:      b.Note,
		URLCount:  len(b.Items),
		Progress:  b.Progress(),
		CreatedAt: b.CreatedAt,
	}
}

// Progress computes per-item outcome counts
func (b *Batch) Progress() Progress {
	p := Progress{Total: len(b.Items)}
	for _, item := range b.Items {
		switch item.Status {
		case ItemOpened:
			p.Opened++
		case ItemSkipped:
			p.Skipped++
		case ItemUnreachable:
			p.Unreachable++
		default:
			p.Pending++
		}
	}
	return p
}

// BatchStats contains batch manager statistics
type BatchStats struct {
	TotalBatches int `json:"total_batches"`
	TotalURLs    int `json:"total_urls"`
	OpenedURLs   int `json:"opened_urls"`
}
