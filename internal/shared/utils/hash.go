package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "sha256"
)

// Hasher provides extensible hashing functionality
type Hasher struct {
	algorithm HashAlgorithm
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm HashAlgorithm) *Hasher {
	return &Hasher{
		algorithm: algorithm,
	}
}

// DefaultHasher returns a hasher with the default algorithm
func DefaultHasher() *Hasher {
	return NewHasher(SHA256)
}

// Hash computes a hash of the input data
func (h *Hasher) Hash(data []byte) string {
	switch h.algorithm {
	case SHA256:
		hash := sha256.Sum256(data)
		return hex.EncodeToString(hash[:])
	default:
		hash := sha256.Sum256(data)
		return hex.EncodeToString(hash[:])
	}
}

// HashString computes a hash of a string
func (h *Hasher) HashString(s string) string {
	return h.Hash([]byte(s))
}

// HashJSON computes a hash of a JSON-serializable object
// The hash is deterministic (same object = same hash)
func (h *Hasher) HashJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return h.Hash(data), nil
}

// BatchFingerprint identifies a submitted URL list independent of
// submission order and surrounding whitespace. Resubmitting the same
// list yields the same fingerprint, which drives the duplicate warning.
type BatchFingerprint struct {
	hasher *Hasher
}

// NewBatchFingerprint creates a fingerprint generator
func NewBatchFingerprint(hasher *Hasher) *BatchFingerprint {
	if hasher == nil {
		hasher = DefaultHasher()
	}
	return &BatchFingerprint{hasher: hasher}
}

// Generate computes a deterministic fingerprint for a URL list
func (bf *BatchFingerprint) Generate(urls []string) string {
	normalized := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		normalized = append(normalized, u)
	}
	sort.Strings(normalized)

	return bf.hasher.HashString(strings.Join(normalized, "\n"))
}

// Short returns an 8-character form for display
func (bf *BatchFingerprint) Short(fullHash string) string {
	if len(fullHash) < 8 {
		return fullHash
	}
	return fullHash[:8]
}

// Matches checks whether a URL list matches a stored fingerprint
func (bf *BatchFingerprint) Matches(fingerprint string, urls []string) bool {
	return fingerprint == bf.Generate(urls)
}
