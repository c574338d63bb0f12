package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching fetched bytes
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a namespaced cache key from a raw identifier such as a URL
func Key(namespace, raw string) string {
	hash := sha256.Sum256([]byte(raw))
	return "credence:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}
