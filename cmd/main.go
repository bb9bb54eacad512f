package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/darkone83/insignia-board/internal/adapters/cache"
	"github.com/darkone83/insignia-board/internal/adapters/catalog"
	"github.com/darkone83/insignia-board/internal/adapters/http/api"
	"github.com/darkone83/insignia-board/internal/config"
	"github.com/darkone83/insignia-board/internal/domain/board"
	"github.com/darkone83/insignia-board/internal/domain/resolve"
	"github.com/darkone83/insignia-board/internal/engine"
	"github.com/darkone83/insignia-board/pkg/logger"
	"github.com/darkone83/insignia-board/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout        = 10 * time.Second
	writeTimeout       = 10 * time.Second
	idleTimeout        = 60 * time.Second
	readHeaderTimeout  = 5 * time.Second
	shutdownTimeout    = 30 * time.Second
	cacheGaugeInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := cache.NewFSStore(cfg.CacheDir,
		cache.WithMaxEntries(cfg.CacheMaxEntries),
		cache.WithMaxBytes(cfg.CacheMaxBytes),
		cache.WithMaxAge(time.Duration(cfg.CacheMaxAgeMS)*time.Millisecond),
	)
	if err != nil {
		os.Stderr.WriteString("failed to open cache: " + err.Error() + "\n")
		return
	}
	if cfg.FlushCacheOnStart {
		if err := store.Flush(ctx); err != nil {
			log.Warn(ctx, "cache flush on start failed", logger.Error(err))
		} else {
			log.Info(ctx, "cache flushed on start")
		}
	}

	client := catalog.NewClient(store,
		catalog.WithTimeout(time.Duration(cfg.HTTPTimeoutMS)*time.Millisecond),
		catalog.WithCatalogTTL(time.Duration(cfg.CatalogTTLMS)*time.Millisecond),
		catalog.WithTitleTTL(time.Duration(cfg.TitleTTLMS)*time.Millisecond),
		catalog.WithClientLogger(log.Named("catalog")),
	)
	probe := catalog.NewProbe(client, cfg.ServerBase,
		catalog.WithSpacing(time.Duration(cfg.ProbeSpacingMS)*time.Millisecond),
		catalog.WithBackoff(time.Duration(cfg.ProbeBackoffMS)*time.Millisecond),
		catalog.WithProbeLogger(log.Named("probe")),
	)

	eng := engine.New(client, probe, store,
		engine.WithLogger(log.Named("engine")),
		engine.WithResolver(resolve.New(
			resolve.WithAcceptScore(cfg.AcceptScore),
			resolve.WithMaxDiagnostics(cfg.MaxDiagnostics),
		)),
		engine.WithParser(board.NewParser(
			board.WithMaxRows(cfg.MaxRowsPerBoard),
		)),
		engine.WithStepInterval(time.Duration(cfg.StepIntervalMS)*time.Millisecond),
		engine.WithScrollCadence(time.Duration(cfg.ScrollIntervalMS)*time.Millisecond, cfg.ScrollStep),
		engine.WithFreeze(time.Duration(cfg.FreezeMS)*time.Millisecond),
		engine.WithBoardDwell(time.Duration(cfg.BoardDwellMS)*time.Millisecond),
		engine.WithVariantDwell(time.Duration(cfg.VariantDwellMS)*time.Millisecond),
		engine.WithHold(time.Duration(cfg.HoldMS)*time.Millisecond),
		engine.WithGeometry(cfg.ScreenHeight, cfg.LineHeight, cfg.FontAscent, cfg.ContentTop),
		engine.WithMaxLineChars(cfg.MaxLineChars),
	)

	// Engine tick loop: single goroutine, cooperative schedule.
	go runEngine(ctx, eng, time.Duration(cfg.TickIntervalMS)*time.Millisecond)

	// Cache gauges are refreshed out of band; they only inform dashboards.
	go runCacheGauges(ctx, store)

	mux := http.NewServeMux()
	apiServer := api.NewServer(eng)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// runEngine drives the engine's cooperative tick until ctx is canceled.
func runEngine(ctx context.Context, eng *engine.Engine, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eng.Tick(ctx)
		}
	}
}

// runCacheGauges periodically publishes cache occupancy metrics.
func runCacheGauges(ctx context.Context, store cache.Store) {
	ticker := time.NewTicker(cacheGaugeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			entries, err := store.Entries(ctx)
			if err != nil {
				continue
			}
			var bytes int64
			for _, e := range entries {
				bytes += e.Size
			}
			metrics.UpdateCacheEntries(len(entries))
			metrics.UpdateCacheBytes(bytes)
		}
	}
}
