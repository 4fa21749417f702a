// Package cache provides a small in-process cache used for robots.txt rules.
// Evidence documents are never cached: they live only for the duration of one
// verification request.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a stable cache key from an arbitrary identifier
func Key(id string) string {
	hash := sha256.Sum256([]byte(id))
	return "certverify:v1:" + hex.EncodeToString(hash[:])
}
