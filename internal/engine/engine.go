// Package engine owns the title-resolution pipeline and the render
// schedule. One Engine instance holds all mutable state; the host drives it
// by calling Tick periodically from a single goroutine.
package engine

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/darkone83/insignia-board/internal/adapters/cache"
	"github.com/darkone83/insignia-board/internal/adapters/catalog"
	"github.com/darkone83/insignia-board/internal/domain/board"
	"github.com/darkone83/insignia-board/internal/domain/resolve"
	"github.com/darkone83/insignia-board/internal/domain/textnorm"
	"github.com/darkone83/insignia-board/pkg/logger"
	"github.com/darkone83/insignia-board/pkg/metrics"
)

// Default schedule tuning. Dwell and freeze values come from what reads
// comfortably on a small display.
const (
	defaultStepInterval   = 100 * time.Millisecond
	defaultScrollInterval = 40 * time.Millisecond
	defaultScrollStep     = 1
	defaultFreeze         = 750 * time.Millisecond
	defaultBoardDwell     = 3 * time.Second
	defaultVariantDwell   = 12 * time.Second
	defaultHold           = 15 * time.Second

	defaultScreenHeight = 64
	defaultLineHeight   = 9
	defaultFontAscent   = 7
	defaultContentTop   = 16
	defaultMaxLineChars = 42
)

// Engine resolves a query to a title pool, loads its boards, and rotates
// them on elapsed-time triggers.
type Engine struct {
	mu sync.Mutex

	log      logger.Logger
	clock    Clock
	rng      *rand.Rand
	client   *catalog.Client
	probe    *catalog.Probe
	store    cache.Store
	resolver *resolve.Resolver
	parser   *board.Parser

	stepInterval   time.Duration
	scrollInterval time.Duration
	scrollStep     int
	freeze         time.Duration
	boardDwell     time.Duration
	variantDwell   time.Duration
	hold           time.Duration

	screenHeight int
	lineHeight   int
	fontAscent   int
	contentTop   int
	maxLineChars int

	// Pipeline state. Reset in full whenever the query changes; the
	// discovered root survives a query change.
	query     string
	queryNorm string
	title     string
	resolved  bool
	loaded    bool

	pool       []string
	variantIdx int

	boards   []board.Board
	boardIdx int

	scrollY float64

	nextStepAt        time.Time
	lastScrollStep    time.Time
	lastBoardSwitch   time.Time
	freezeUntil       time.Time
	lastVariantSwitch time.Time

	diags []resolve.Diagnostic
}

// New constructs an Engine over the given catalog client, probe and cache
// store, with configuration options applied.
func New(client *catalog.Client, probe *catalog.Probe, store cache.Store, opts ...Option) *Engine {
	e := &Engine{
		log:            logger.Nop(),
		clock:          SystemClock(),
		client:         client,
		probe:          probe,
		store:          store,
		resolver:       resolve.New(),
		parser:         board.NewParser(),
		stepInterval:   defaultStepInterval,
		scrollInterval: defaultScrollInterval,
		scrollStep:     defaultScrollStep,
		freeze:         defaultFreeze,
		boardDwell:     defaultBoardDwell,
		variantDwell:   defaultVariantDwell,
		hold:           defaultHold,
		screenHeight:   defaultScreenHeight,
		lineHeight:     defaultLineHeight,
		fontAscent:     defaultFontAscent,
		contentTop:     defaultContentTop,
		maxLineChars:   defaultMaxLineChars,
		variantIdx:     -1,
		boardIdx:       -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(e.clock.Now().UnixNano())) //nolint:gosec // schedule jitter, not security
	}
	return e
}

// SetQuery supplies the free-text name to resolve. An unchanged post-trim
// value is a no-op; any other value fully resets pipeline and render state.
func (e *Engine) SetQuery(query string) {
	q := strings.TrimSpace(query)

	e.mu.Lock()
	defer e.mu.Unlock()
	if q == e.query {
		return
	}
	e.query = q
	e.queryNorm = textnorm.NormKey(q)
	e.reset()
	e.log.Info(context.Background(), "query changed",
		logger.String("query", q), logger.String("norm", e.queryNorm))
}

// reset discards resolution, board and schedule state. Callers hold e.mu.
func (e *Engine) reset() {
	e.title = ""
	e.resolved = false
	e.loaded = false
	e.pool = nil
	e.variantIdx = -1
	e.boards = nil
	e.boardIdx = -1
	e.scrollY = 0
	e.nextStepAt = time.Time{}
	e.lastScrollStep = time.Time{}
	e.lastBoardSwitch = time.Time{}
	e.freezeUntil = time.Time{}
	e.lastVariantSwitch = time.Time{}
	e.diags = nil
}

// Active reports whether a resolved, loaded title is available to render.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query != "" && e.resolved && e.loaded
}

// Diagnostics returns the bounded near-miss list from the last resolution.
func (e *Engine) Diagnostics() []resolve.Diagnostic {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]resolve.Diagnostic, len(e.diags))
	copy(out, e.diags)
	return out
}

// FlushCache drops every cached entry.
func (e *Engine) FlushCache(ctx context.Context) error {
	return e.store.Flush(ctx)
}

// Tick advances at most one network-touching pipeline step, then the render
// schedule. It never blocks longer than one fetch timeout.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.query == "" {
		return
	}
	e.stepPipeline(ctx)
	if !e.resolved || !e.loaded {
		return
	}
	e.advanceSchedule()
}

// stepPipeline runs the next pending stage: probe, resolve, or load.
// Stages are spaced by stepInterval so a struggling endpoint is never
// hammered tick after tick.
func (e *Engine) stepPipeline(ctx context.Context) {
	now := e.clock.Now()
	if now.Before(e.nextStepAt) {
		return
	}
	e.nextStepAt = now.Add(e.stepInterval)

	root, ok := e.probe.Root()
	if !ok {
		e.probe.Step(ctx)
		return
	}
	if !e.resolved {
		e.resolveStep(ctx, root)
		return
	}
	if !e.loaded {
		e.loadStep(ctx, root)
	}
}

// resolveStep fetches the catalog and matches the query against it.
func (e *Engine) resolveStep(ctx context.Context, root string) {
	catalogBody, err := e.client.Catalog(ctx, root)
	if err != nil {
		e.log.Debug(ctx, "catalog fetch failed", logger.Error(err))
		return
	}

	res, diags, err := e.resolver.Resolve(e.query, catalogBody)
	e.diags = diags
	if err != nil {
		if errors.Is(err, resolve.ErrNoMatch) {
			metrics.RecordResolutionFailure()
			e.log.Warn(ctx, "no acceptable match",
				logger.String("query", e.query), logger.String("norm", e.queryNorm),
				logger.Int("near_misses", len(diags)))
		} else {
			e.log.Debug(ctx, "resolution failed", logger.Error(err))
		}
		return
	}

	e.pool = res.Pool
	e.variantIdx = e.rng.Intn(len(e.pool))
	e.resolved = true
	metrics.RecordResolution()
	metrics.UpdatePoolSize(len(e.pool))
	e.log.Info(ctx, "query resolved",
		logger.String("query", e.query),
		logger.String("best", res.Name),
		logger.Int("score", res.Score),
		logger.String("family", res.FamilyKey),
		logger.Int("pool", len(e.pool)))
}

// loadStep fetches and normalizes the current variant's boards. A failed
// load advances to a sibling variant when one exists, so one broken
// document cannot wedge the rotation.
func (e *Engine) loadStep(ctx context.Context, root string) {
	if e.variantIdx < 0 || e.variantIdx >= len(e.pool) {
		return
	}
	id := e.pool[e.variantIdx]

	body, err := e.client.Title(ctx, root, id)
	if err != nil {
		e.log.Debug(ctx, "title fetch failed", logger.String("title_id", id), logger.Error(err))
		return
	}

	title, boards, err := e.parser.Parse(body)
	if err != nil {
		metrics.RecordTitleLoadFailure()
		e.log.Warn(ctx, "title document unusable", logger.String("title_id", id), logger.Error(err))
		if len(e.pool) > 1 {
			e.variantIdx = (e.variantIdx + 1) % len(e.pool)
		}
		return
	}

	now := e.clock.Now()
	e.title = title
	e.boards = boards
	e.boardIdx = e.rng.Intn(len(e.boards))
	e.scrollY = 0
	e.lastScrollStep = now
	e.lastBoardSwitch = now
	e.freezeUntil = now.Add(e.freeze)
	e.lastVariantSwitch = now
	e.loaded = true
	metrics.RecordTitleLoad()
	metrics.UpdateBoardsLoaded(len(e.boards))
	e.log.Info(ctx, "boards loaded",
		logger.String("title_id", id),
		logger.String("title", title),
		logger.Int("boards", len(e.boards)))
}

// advanceSchedule moves the scroll offset and rotates boards and variants.
// Callers hold e.mu.
func (e *Engine) advanceSchedule() {
	now := e.clock.Now()
	if now.Before(e.freezeUntil) {
		return
	}

	if now.Sub(e.lastScrollStep) >= e.scrollInterval {
		e.lastScrollStep = now
		e.scrollY += float64(e.scrollStep)
	}

	if e.boardIdx < 0 || e.boardIdx >= len(e.boards) {
		return
	}
	b := e.boards[e.boardIdx]
	if !e.lastRowScrolledOut(len(b.Rows)) || now.Sub(e.lastBoardSwitch) < e.boardDwell {
		return
	}

	next := e.boardIdx
	if len(e.boards) > 1 {
		next = e.rng.Intn(len(e.boards))
		if next == e.boardIdx {
			next = (next + 1) % len(e.boards)
		}
	}
	e.boardIdx = next
	e.scrollY = 0
	e.lastBoardSwitch = now
	e.freezeUntil = now.Add(e.freeze)
	metrics.RecordBoardSwitch()

	if len(e.pool) > 1 && now.Sub(e.lastVariantSwitch) >= e.variantDwell {
		e.variantIdx = (e.variantIdx + 1) % len(e.pool)
		e.loaded = false
		e.lastVariantSwitch = now
		metrics.RecordVariantSwitch()
		e.log.Info(context.Background(), "switching variant",
			logger.String("title_id", e.pool[e.variantIdx]))
	}
}

// lastRowScrolledOut reports whether the final row's top edge has passed
// above the content area.
func (e *Engine) lastRowScrolledOut(rowCount int) bool {
	if rowCount == 0 {
		return true
	}
	lastIdx := rowCount - 1
	bottomBaseline := float64(e.screenHeight - 2)
	yLast := bottomBaseline - (e.scrollY - float64(lastIdx*e.lineHeight))
	lastTop := yLast - float64(e.fontAscent)
	contentBodyTop := float64(e.contentTop + e.lineHeight)
	return lastTop < contentBodyTop
}
