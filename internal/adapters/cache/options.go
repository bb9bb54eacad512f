package cache

import "time"

// Option applies a configuration option to the FSStore.
type Option func(*FSStore)

// WithMaxEntries sets the entry-count ceiling enforced by Prune.
func WithMaxEntries(n int) Option {
	return func(s *FSStore) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithMaxBytes sets the total-byte ceiling enforced by Prune.
func WithMaxBytes(n int64) Option {
	return func(s *FSStore) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithMaxAge sets the age past which Prune removes entries unconditionally.
func WithMaxAge(d time.Duration) Option {
	return func(s *FSStore) {
		if d > 0 {
			s.maxAge = d
		}
	}
}

// WithClock injects the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *FSStore) {
		if now != nil {
			s.now = now
		}
	}
}
