// Package api declares HTTP contracts and route registration helpers for
// the operator surface.
package api

import (
	"context"
	"net/http"

	"github.com/darkone83/insignia-board/internal/domain/resolve"
	"github.com/darkone83/insignia-board/internal/engine"
)

// Dependencies required by HTTP handlers. An interface bundle keeps the
// handler layer loosely coupled to the engine implementation.
type Dependencies interface {
	// SetQuery supplies the free-text name to resolve.
	SetQuery(query string)

	// Frame returns the current render snapshot.
	Frame() engine.Frame

	// Diagnostics returns the near-miss list from the last resolution.
	Diagnostics() []resolve.Diagnostic

	// FlushCache drops every cached entry.
	FlushCache(ctx context.Context) error
}

// Server wires HTTP routes for the operator API.
type Server struct {
	healthHandler *HealthHandler
	frameHandler  *FrameHandler
	queryHandler  *QueryHandler
	diagHandler   *DiagnosticsHandler
	cacheHandler  *CacheHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		frameHandler:  NewFrameHandler(deps),
		queryHandler:  NewQueryHandler(deps),
		diagHandler:   NewDiagnosticsHandler(deps),
		cacheHandler:  NewCacheHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleHealth, "metrics"))
	mux.HandleFunc("/frame", MetricsMiddleware(s.frameHandler.HandleGetFrame, "frame"))
	mux.HandleFunc("/query", MetricsMiddleware(s.queryHandler.HandleQuery, "query"))
	mux.HandleFunc("/diagnostics", MetricsMiddleware(s.diagHandler.HandleGetDiagnostics, "diagnostics"))
	mux.HandleFunc("/cache/flush", MetricsMiddleware(s.cacheHandler.HandleFlush, "cache_flush"))
}
