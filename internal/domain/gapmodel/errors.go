package gapmodel

import "errors"

// Sentinel kinds for model-fit failures. A fit failure is fatal to the
// run: every downstream gap depends on a valid model.
var (
	ErrTooFewRows  = errors.New("too few rows to fit")
	ErrNoVariance  = errors.New("no variance in target")
	ErrSingularFit = errors.New("singular system in fit")
	ErrNotFitted   = errors.New("model not fitted")
)
