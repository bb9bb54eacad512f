package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default cache policy. The ceilings mirror what a small flash partition
// can hold; the age ceiling matches the catalog TTL.
const (
	defaultMaxEntries = 32
	defaultMaxBytes   = 128 * 1024
	defaultMaxAge     = 6 * time.Hour

	tmpMarker = ".tmp-"
)

// FSStore implements Store over a flat directory of files. One file per
// entry; the file modification time is the entry's last write time.
//
// The engine is the only writer, so no locking beyond atomic replace
// semantics is needed.
type FSStore struct {
	dir        string
	maxEntries int
	maxBytes   int64
	maxAge     time.Duration
	now        func() time.Time
}

// NewFSStore creates the cache directory if needed and returns a store
// with configuration options applied.
func NewFSStore(dir string, opts ...Option) (*FSStore, error) {
	s := &FSStore{
		dir:        dir,
		maxEntries: defaultMaxEntries,
		maxBytes:   defaultMaxBytes,
		maxAge:     defaultMaxAge,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return s, nil
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.dir, key)
}

// Write stores payload under key via write-to-temp-then-rename, then prunes.
func (s *FSStore) Write(ctx context.Context, key string, payload []byte) error {
	dst := s.path(key)
	tmp := dst + tmpMarker + uuid.NewString()
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace cache entry: %w", err)
	}
	// Ceilings are best-effort; a failed prune must not fail the write.
	_ = s.Prune(ctx)
	return nil
}

// Read returns the payload for key and whether it is fresh for maxAge.
func (s *FSStore) Read(_ context.Context, key string, maxAge time.Duration, allowStale bool) ([]byte, bool, error) {
	p := s.path(key)
	info, err := os.Stat(p)
	if err != nil {
		return nil, false, ErrMiss
	}
	payload, err := os.ReadFile(p)
	if err != nil {
		return nil, false, ErrMiss
	}
	fresh := s.now().Sub(info.ModTime()) <= maxAge
	if fresh {
		return payload, true, nil
	}
	if allowStale {
		return payload, false, nil
	}
	return nil, false, ErrMiss
}

// Entries lists every cached entry with size and last write time.
func (s *FSStore) Entries(_ context.Context) ([]Entry, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list cache dir: %w", err)
	}
	entries := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		if de.IsDir() || strings.Contains(de.Name(), tmpMarker) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Key:     de.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

// Delete removes one entry.
func (s *FSStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Prune runs two passes: entries older than the age ceiling go first,
// unconditionally; then, while the count or byte ceilings are still
// exceeded, the oldest-written entries go until the store fits.
func (s *FSStore) Prune(ctx context.Context) error {
	entries, err := s.Entries(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	kept := entries[:0]
	for _, e := range entries {
		if now.Sub(e.ModTime) > s.maxAge {
			_ = s.Delete(ctx, e.Key)
			continue
		}
		kept = append(kept, e)
	}

	count := len(kept)
	var bytes int64
	for _, e := range kept {
		bytes += e.Size
	}
	if count <= s.maxEntries && bytes <= s.maxBytes {
		return nil
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].ModTime.Before(kept[j].ModTime) })
	for _, e := range kept {
		if count <= s.maxEntries && bytes <= s.maxBytes {
			break
		}
		_ = s.Delete(ctx, e.Key)
		count--
		bytes -= e.Size
	}
	return nil
}

// Flush removes every entry, including leftover temp files.
func (s *FSStore) Flush(_ context.Context) error {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("list cache dir: %w", err)
	}
	for _, de := range dirents {
		if de.IsDir() {
			continue
		}
		_ = os.Remove(filepath.Join(s.dir, de.Name()))
	}
	return nil
}
