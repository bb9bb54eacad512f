package engine

import (
	"math/rand"
	"time"

	"github.com/darkone83/insignia-board/internal/domain/board"
	"github.com/darkone83/insignia-board/internal/domain/resolve"
	"github.com/darkone83/insignia-board/pkg/logger"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithClock injects the time source, for deterministic tests.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithRand injects the random source used for board and variant picks.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithResolver replaces the default title resolver.
func WithResolver(r *resolve.Resolver) Option {
	return func(e *Engine) {
		if r != nil {
			e.resolver = r
		}
	}
}

// WithParser replaces the default board parser.
func WithParser(p *board.Parser) Option {
	return func(e *Engine) {
		if p != nil {
			e.parser = p
		}
	}
}

// WithStepInterval sets the minimum spacing between network-touching
// pipeline steps.
func WithStepInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.stepInterval = d
		}
	}
}

// WithScrollCadence sets the scroll timer interval and the pixel step
// applied on each firing.
func WithScrollCadence(interval time.Duration, step int) Option {
	return func(e *Engine) {
		if interval > 0 {
			e.scrollInterval = interval
		}
		if step > 0 {
			e.scrollStep = step
		}
	}
}

// WithFreeze sets the scroll-suppression window after a board switch.
func WithFreeze(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.freeze = d
		}
	}
}

// WithBoardDwell sets the minimum time a board stays on screen.
func WithBoardDwell(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.boardDwell = d
		}
	}
}

// WithVariantDwell sets the minimum time between title-variant rotations.
func WithVariantDwell(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.variantDwell = d
		}
	}
}

// WithHold sets the recommended minimum display-hold duration surfaced in
// each frame.
func WithHold(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.hold = d
		}
	}
}

// WithGeometry sets the display window geometry, in pixels, used to decide
// when the last row has scrolled out of view.
func WithGeometry(screenHeight, lineHeight, fontAscent, contentTop int) Option {
	return func(e *Engine) {
		if screenHeight > 0 {
			e.screenHeight = screenHeight
		}
		if lineHeight > 0 {
			e.lineHeight = lineHeight
		}
		if fontAscent > 0 {
			e.fontAscent = fontAscent
		}
		if contentTop > 0 {
			e.contentTop = contentTop
		}
	}
}

// WithMaxLineChars truncates rendered row text to the given rune count.
// Zero disables truncation.
func WithMaxLineChars(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.maxLineChars = n
		}
	}
}
