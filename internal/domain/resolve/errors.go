package resolve

import "errors"

// Sentinel kinds for resolution errors.
var (
	ErrEmptyQuery = errors.New("empty query")
	ErrBadCatalog = errors.New("catalog document is not valid JSON")
	ErrNoMatch    = errors.New("no catalog entry cleared the acceptance threshold")
)
