package geom

import "errors"

// Sentinel kinds for geometry errors.
var (
	ErrInsufficientCandidates = errors.New("insufficient candidates")
	ErrInvalidK               = errors.New("k must be positive")
)
