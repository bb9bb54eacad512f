package engine

import (
	"strings"
	"time"
)

// Frame is the render snapshot exposed to the display host: the header
// line, the current board, and the rows visible at the current scroll
// offset, already formatted.
type Frame struct {
	Active bool     `json:"active"`
	Header string   `json:"header"`
	Board  string   `json:"board,omitempty"`
	Rows   []string `json:"rows,omitempty"`

	// HoldMS is the recommended minimum display-hold duration.
	HoldMS int64 `json:"hold_ms"`
}

// Frame returns the current render snapshot. When no title is loaded the
// header falls back to the raw query and no rows are present.
func (e *Engine) Frame() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()

	f := Frame{
		Header: e.query,
		HoldMS: e.hold.Milliseconds(),
	}
	if !e.resolved || !e.loaded || e.boardIdx < 0 || e.boardIdx >= len(e.boards) {
		return f
	}

	if e.title != "" {
		f.Header = e.title
	}
	b := e.boards[e.boardIdx]
	f.Active = true
	f.Board = b.Name

	bottomBaseline := float64(e.screenHeight - 2)
	contentBodyTop := float64(e.contentTop + e.lineHeight)
	for i, r := range b.Rows {
		y := bottomBaseline - (e.scrollY - float64(i*e.lineHeight))
		if y-float64(e.fontAscent) < contentBodyTop || y > float64(e.screenHeight+e.lineHeight) {
			continue
		}
		f.Rows = append(f.Rows, e.formatRow(r.Rank, r.Name, r.Metric, r.Extras))
	}
	return f
}

// Hold returns the recommended minimum display-hold duration.
func (e *Engine) Hold() time.Duration {
	return e.hold
}

// formatRow renders one row as "rank. name  metric  · extra1  · extra2".
func (e *Engine) formatRow(rank, name, metric string, extras []string) string {
	var sb strings.Builder
	if rank != "" {
		sb.WriteString(rank)
		sb.WriteString(". ")
	}
	if name != "" {
		sb.WriteString(name)
	} else {
		sb.WriteString("—")
	}
	if metric != "" {
		sb.WriteString("  ")
		sb.WriteString(metric)
	}
	for _, x := range extras {
		sb.WriteString("  · ")
		sb.WriteString(x)
	}
	line := sb.String()
	if e.maxLineChars > 0 {
		if runes := []rune(line); len(runes) > e.maxLineChars {
			line = string(runes[:e.maxLineChars])
		}
	}
	return line
}
