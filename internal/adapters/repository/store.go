// Package repository defines the results store interface and errors.
// A store persists the flat per-run tables that are the pipeline's
// compatibility surface for downstream visualization and writeup.
package repository

import (
	"context"
	"time"

	"github.com/okian/voidframe/internal/domain/model"
)

// Run is one pipeline run's persisted output.
type Run struct {
	ID        string // run uuid
	CreatedAt time.Time
	Filter    string // named filter configuration

	Plays     []PlayRow
	Receivers []model.PlayerAggregate
	Defenders []model.PlayerAggregate
}

// PlayRow is one play's output record. Nil metric pointers persist as
// SQL NULLs, never as zeros.
type PlayRow struct {
	Key      model.PlayKey
	Outcome  model.Outcome
	Metrics  model.PlayMetrics
	Expected *float64
	Gap      *float64
}

// Store persists pipeline runs.
type Store interface {
	// SaveRun writes a run's play table and ranking tables atomically.
	SaveRun(ctx context.Context, run Run) error

	// Close releases the underlying storage.
	Close() error
}
