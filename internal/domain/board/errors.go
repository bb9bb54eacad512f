package board

import "errors"

// Sentinel kinds for title-document errors.
var (
	ErrBadDocument   = errors.New("title document is not valid JSON")
	ErrNoScoreboards = errors.New("title document has no scoreboards array")
	ErrNoUsableRows  = errors.New("title document yielded no usable rows")
)
