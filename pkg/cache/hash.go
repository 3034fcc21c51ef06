package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Keyer derives cache keys.
type Keyer interface {
	// HTTPKey returns the key for a response fetched from url within namespace
	// (for example "collections:").
	HTTPKey(namespace, url string) string
}

// DefaultKeyer builds keys of the form "http:<namespace><digest>", where
// digest is the xxhash of the full request URL including its query string.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey implements Keyer.
func (DefaultKeyer) HTTPKey(namespace, url string) string {
	return fmt.Sprintf("http:%s%016x", namespace, xxhash.Sum64String(url))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
