// Package cache defines the TTL- and size-bounded byte cache used for
// catalog and per-title documents.
package cache

import (
	"context"
	"strings"
	"time"
)

// Entry describes one cached resource.
type Entry struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Store provides read/write access to cached payloads keyed by sanitized
// resource URLs. Staleness is judged against each entry's last write time.
type Store interface {
	// Write stores payload under key, replacing any existing entry.
	Write(ctx context.Context, key string, payload []byte) error

	// Read returns the payload and whether it is fresh for maxAge. A stale
	// entry is returned only when allowStale is set; otherwise it is a miss.
	// Misses return ErrMiss.
	Read(ctx context.Context, key string, maxAge time.Duration, allowStale bool) ([]byte, bool, error)

	// Entries lists every cached entry.
	Entries(ctx context.Context) ([]Entry, error)

	// Delete removes one entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, key string) error

	// Prune enforces the max-age, entry-count and byte ceilings.
	Prune(ctx context.Context) error

	// Flush removes every entry.
	Flush(ctx context.Context) error
}

// unsafeKeyChars are replaced in cache keys; the backing store treats them
// as path or query syntax.
const unsafeKeyChars = "/?:&=%#"

// Key derives the deterministic cache key for a resource URL.
func Key(url string) string {
	k := strings.ReplaceAll(url, "://", "__")
	for _, c := range unsafeKeyChars {
		k = strings.ReplaceAll(k, string(c), "_")
	}
	return k
}
