// Package playfilter selects the analysis subset from the full play
// population. A filter is a pure predicate over the play context plus
// the tracking coverage of its post-release window; it is re-evaluated
// whenever the analysis configuration changes.
package playfilter

import (
	"github.com/okian/voidframe/internal/domain/model"
	"github.com/okian/voidframe/internal/domain/track"
)

// Default predicate parameters for the base subset.
const (
	DefaultMinDefenders = 2
	DefaultWinProbMin   = 0.20
	DefaultWinProbMax   = 0.80
)

// Config is a named filter configuration.
type Config struct {
	Name string

	// MinDefenders requires at least this many role-tagged defenders
	// tracked in every frame of the post-release window.
	MinDefenders int

	// Downs restricts the play's down; empty admits any down.
	Downs []int

	// Win-probability band, applied only when UseWinProb is set.
	UseWinProb bool
	WinProbMin float64
	WinProbMax float64

	// Field-position band (absolute yardline), applied only when
	// UseFieldPos is set. Keeps plays away from end-zone compression.
	UseFieldPos bool
	FieldPosMin float64
	FieldPosMax float64
}

// BaseSubset is the contested-catch configuration: at least two
// defenders tracked through the ball-in-air window, no situational
// constraints.
func BaseSubset() Config {
	return Config{
		Name:         "base",
		MinDefenders: DefaultMinDefenders,
	}
}

// NeutralSituations narrows the base subset to early downs in
// competitive game states, away from the end zones.
func NeutralSituations() Config {
	return Config{
		Name:         "neutral",
		MinDefenders: DefaultMinDefenders,
		Downs:        []int{1, 2},
		UseWinProb:   true,
		WinProbMin:   DefaultWinProbMin,
		WinProbMax:   DefaultWinProbMax,
		UseFieldPos:  true,
		FieldPosMin:  15,
		FieldPosMax:  105,
	}
}

// Keep reports whether a play belongs to the configured subset.
func (c Config) Keep(ctx model.PlayContext, roles track.Roles) bool {
	if roles.MinDefendersPerFrame() < c.MinDefenders {
		return false
	}
	if len(c.Downs) > 0 {
		ok := false
		for _, d := range c.Downs {
			if ctx.Down == d {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if c.UseWinProb && (ctx.WinProbability < c.WinProbMin || ctx.WinProbability > c.WinProbMax) {
		return false
	}
	if c.UseFieldPos && (ctx.FieldPosition < c.FieldPosMin || ctx.FieldPosition > c.FieldPosMax) {
		return false
	}
	return true
}
