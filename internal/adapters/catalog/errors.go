package catalog

import "errors"

// Sentinel kinds for catalog fetch errors.
var (
	ErrUnreachable = errors.New("endpoint unreachable")
	ErrBadStatus   = errors.New("unexpected HTTP status")
)
