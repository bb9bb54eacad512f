package catalog

import (
	"net/http"
	"time"

	"github.com/darkone83/insignia-board/pkg/logger"
)

// ClientOption applies a configuration option to the Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.httpc = c
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithCatalogTTL sets the freshness window for the catalog listing.
func WithCatalogTTL(d time.Duration) ClientOption {
	return func(cl *Client) {
		if d > 0 {
			cl.catalogTTL = d
		}
	}
}

// WithTitleTTL sets the freshness window for per-title documents.
func WithTitleTTL(d time.Duration) ClientOption {
	return func(cl *Client) {
		if d > 0 {
			cl.titleTTL = d
		}
	}
}

// WithClientLogger sets a custom logger for the client.
func WithClientLogger(log logger.Logger) ClientOption {
	return func(cl *Client) {
		if log != nil {
			cl.log = log
		}
	}
}

// ProbeOption applies a configuration option to the Probe.
type ProbeOption func(*Probe)

// WithSpacing sets the minimum interval between probe attempts.
func WithSpacing(d time.Duration) ProbeOption {
	return func(p *Probe) {
		if d > 0 {
			p.spacing = d
		}
	}
}

// WithBackoff sets the initial delay applied after a full candidate cycle
// fails. Subsequent exhausted cycles back off exponentially from here.
func WithBackoff(d time.Duration) ProbeOption {
	return func(p *Probe) {
		if d > 0 {
			p.backoffInitial = d
		}
	}
}

// WithProbeClock injects the time source, for deterministic tests.
func WithProbeClock(now func() time.Time) ProbeOption {
	return func(p *Probe) {
		if now != nil {
			p.now = now
		}
	}
}

// WithProbeLogger sets a custom logger for the probe.
func WithProbeLogger(log logger.Logger) ProbeOption {
	return func(p *Probe) {
		if log != nil {
			p.log = log
		}
	}
}
