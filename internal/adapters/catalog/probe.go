package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	json "github.com/goccy/go-json"

	"github.com/darkone83/insignia-board/internal/adapters/cache"
	"github.com/darkone83/insignia-board/pkg/logger"
	"github.com/darkone83/insignia-board/pkg/metrics"
)

// Default probe tuning.
const (
	defaultSpacing        = 200 * time.Millisecond
	defaultBackoffInitial = 2 * time.Second
	maxBackoffInterval    = time.Minute
)

// Probe incrementally discovers a working catalog root among candidates
// derived from the configured base. One candidate is tested per Step call,
// spaced out so probing never saturates the network path. Once a root
// answers with valid JSON it is pinned for the rest of the session.
type Probe struct {
	client         *Client
	base           string
	spacing        time.Duration
	backoffInitial time.Duration
	boff           *backoff.ExponentialBackOff
	candidates     []string
	idx            int
	nextAt         time.Time
	root           string
	now            func() time.Time
	log            logger.Logger
}

// NewProbe creates a Probe for the given base configuration string, which
// may be a comma-separated list of base URLs.
func NewProbe(client *Client, base string, opts ...ProbeOption) *Probe {
	p := &Probe{
		client:         client,
		base:           base,
		spacing:        defaultSpacing,
		backoffInitial: defaultBackoffInitial,
		now:            time.Now,
		log:            logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.boff = newBackoff(p.backoffInitial)
	return p
}

func newBackoff(initial time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.MaxInterval = maxBackoffInterval
	return b
}

// Root returns the discovered root, if any.
func (p *Probe) Root() (string, bool) {
	return p.root, p.root != ""
}

// Reset discards the probe list and the discovered root, and restarts the
// exhaustion backoff from its initial interval.
func (p *Probe) Reset() {
	p.candidates = nil
	p.idx = 0
	p.nextAt = time.Time{}
	p.root = ""
	p.boff = newBackoff(p.backoffInitial)
}

// Step tests at most one candidate and reports whether a root is known.
// Attempts are spaced by the configured interval; exhausting the whole
// candidate list restarts it after an exponentially growing backoff.
func (p *Probe) Step(ctx context.Context) bool {
	if p.root != "" {
		return true
	}
	if len(p.candidates) == 0 {
		p.candidates = CandidateRoots(p.base)
		p.idx = 0
		if len(p.candidates) == 0 {
			return false
		}
		p.log.Debug(ctx, "probing candidate roots", logger.Int("candidates", len(p.candidates)))
	}

	now := p.now()
	if now.Before(p.nextAt) {
		return false
	}
	p.nextAt = now.Add(p.spacing)

	if p.idx >= len(p.candidates) {
		sleep := p.boff.NextBackOff()
		if sleep == backoff.Stop {
			sleep = maxBackoffInterval
		}
		p.nextAt = now.Add(sleep)
		p.idx = 0
		p.log.Debug(ctx, "probe cycle exhausted", logger.Duration("backoff", sleep))
		return false
	}

	cand := p.candidates[p.idx]
	p.idx++
	metrics.RecordProbeAttempt()

	body, err := p.client.probeCatalog(ctx, cand)
	if err != nil || !json.Valid(body) {
		return false
	}
	p.root = cand
	metrics.RecordRootDiscovered()
	p.log.Info(ctx, "catalog root discovered", logger.String("root", cand))
	return true
}

// probeCatalog fetches the well-known catalog resource under a candidate
// root. Unlike the regular fetch path, any cached copy is accepted first,
// stale included, so a known-good root can be pinned while offline.
func (c *Client) probeCatalog(ctx context.Context, root string) ([]byte, error) {
	url := root + catalogPath
	key := cache.Key(url)

	if body, _, err := c.store.Read(ctx, key, c.catalogTTL, true); err == nil {
		return body, nil
	}
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	if werr := c.store.Write(ctx, key, body); werr != nil {
		c.log.Warn(ctx, "cache write failed", logger.String("key", key), logger.Error(werr))
	}
	return body, nil
}

// CandidateRoots derives the ordered, de-duplicated candidate list from a
// base configuration string. For each comma-separated base: the base itself,
// the base with a trailing /data removed, and the /xbox and /xbox/data
// variants underneath it.
func CandidateRoots(base string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(s string) {
		s = strings.TrimRight(s, "/")
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for _, b := range strings.Split(base, ",") {
		b = strings.TrimRight(strings.TrimSpace(b), "/")
		if b == "" {
			continue
		}
		add(b)
		if strings.HasSuffix(b, "/data") {
			add(strings.TrimSuffix(b, "/data"))
		}
		add(b + "/xbox")
		add(b + "/xbox/data")
	}
	return out
}
