package repository

import "errors"

// Sentinel kinds for results-store errors.
var (
	ErrOpenStore = errors.New("open results store failed")
	ErrSaveRun   = errors.New("save run failed")
)
