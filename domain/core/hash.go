package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ContentKey is a content-derived key used for idempotent re-computation
// and deduplication. Two runs over identical inputs produce identical keys.
type ContentKey Hash

// NewContentKey builds a deterministic key from ordered parts.
// Parts are joined with a separator that cannot occur in segment names,
// metric names or element identifiers.
func NewContentKey(parts ...string) ContentKey {
	return ContentKey(NewHash([]byte(strings.Join(parts, "\x1f"))))
}

// String returns the string representation
func (k ContentKey) String() string { return Hash(k).String() }
