// Package catalog fetches catalog and per-title documents over HTTP with a
// cache-then-network policy, and discovers a working catalog root among
// candidate locations.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/darkone83/insignia-board/internal/adapters/cache"
	"github.com/darkone83/insignia-board/pkg/logger"
	"github.com/darkone83/insignia-board/pkg/metrics"
)

// Default fetch tuning. The timeout is short on purpose: a fetch blocks the
// engine tick, and the step-spacing mechanism handles retries.
const (
	defaultTimeout    = 1200 * time.Millisecond
	defaultCatalogTTL = 6 * time.Hour
	defaultTitleTTL   = 2 * time.Minute

	// maxBodyBytes bounds response reads; title documents are small.
	maxBodyBytes = 1 << 20

	catalogPath = "/data/search.json"
	titlePath   = "/data/by_id/"
)

// Client fetches catalog resources with per-class TTLs.
type Client struct {
	httpc      *http.Client
	store      cache.Store
	timeout    time.Duration
	catalogTTL time.Duration
	titleTTL   time.Duration
	log        logger.Logger
}

// NewClient creates a Client over the given cache store.
func NewClient(store cache.Store, opts ...ClientOption) *Client {
	c := &Client{
		httpc:      &http.Client{},
		store:      store,
		timeout:    defaultTimeout,
		catalogTTL: defaultCatalogTTL,
		titleTTL:   defaultTitleTTL,
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Catalog returns the catalog listing under root, cache first.
func (c *Client) Catalog(ctx context.Context, root string) ([]byte, error) {
	return c.fetch(ctx, root+catalogPath, c.catalogTTL)
}

// Title returns the per-title document for id under root, cache first.
func (c *Client) Title(ctx context.Context, root, id string) ([]byte, error) {
	return c.fetch(ctx, root+titlePath+id+".json", c.titleTTL)
}

// fetch implements the cache-then-network policy: a fresh cached payload
// wins; otherwise the network is tried and the result cached; on network
// failure a stale cached payload is served as graceful degradation.
func (c *Client) fetch(ctx context.Context, url string, ttl time.Duration) ([]byte, error) {
	key := cache.Key(url)

	if body, fresh, err := c.store.Read(ctx, key, ttl, false); err == nil && fresh {
		metrics.RecordCacheHit()
		return body, nil
	}
	metrics.RecordCacheMiss()

	body, err := c.get(ctx, url)
	if err == nil {
		// A failed write is non-fatal; the payload is already in hand.
		if werr := c.store.Write(ctx, key, body); werr != nil {
			c.log.Warn(ctx, "cache write failed", logger.String("key", key), logger.Error(werr))
		}
		return body, nil
	}

	if body, _, rerr := c.store.Read(ctx, key, 0, true); rerr == nil {
		metrics.RecordStaleServed()
		c.log.Debug(ctx, "serving stale cache", logger.String("url", url), logger.Error(err))
		return body, nil
	}
	return nil, err
}

// get performs the single blocking GET with the configured timeout.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.RecordFetchError()
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordFetchError()
		return nil, fmt.Errorf("%w: %d from %s", ErrBadStatus, resp.StatusCode, url)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.RecordFetchError()
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	metrics.RecordFetchLatency(float64(time.Since(start).Milliseconds()))
	return body, nil
}
