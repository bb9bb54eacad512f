package engine

import "time"

// Clock supplies the engine's notion of now. Every timer in the engine is a
// next-eligible-time field compared against this clock, so tests can inject
// a fake and step time deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now.
func SystemClock() Clock { return systemClock{} }
