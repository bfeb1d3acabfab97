// Package model contains domain models passed between pipeline stages.
package model

import "fmt"

// FrameRateHz is the tracking-data sampling rate.
const FrameRateHz = 10.0

// Event tags carried on tracking samples.
const (
	EventPassForward      = "pass_forward"
	EventPassArrived      = "pass_arrived"
	EventPassCaught       = "pass_outcome_caught"
	EventPassIncomplete   = "pass_outcome_incomplete"
	EventPassInterception = "pass_outcome_interception"
	EventTackle           = "tackle"
	EventOutOfBounds      = "out_of_bounds"
)

// CoverageClass is the defensive coverage scheme called on a play.
type CoverageClass int

const (
	CoverageUnknown CoverageClass = iota
	CoverageMan
	CoverageZone
	CoveragePress
)

// String returns the coverage label used in output tables.
func (c CoverageClass) String() string {
	switch c {
	case CoverageMan:
		return "man"
	case CoverageZone:
		return "zone"
	case CoveragePress:
		return "press"
	default:
		return "unknown"
	}
}

// Outcome is the recorded result of a pass attempt.
type Outcome int

const (
	OutcomeIncomplete Outcome = iota
	OutcomeComplete
	OutcomeIntercepted
)

// Completed reports whether the pass was caught by the offense.
// Interceptions count as failed attempts, matching the target coding
// of the baseline model.
func (o Outcome) Completed() bool {
	return o == OutcomeComplete
}

// String returns the outcome label used in output tables.
func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomeIntercepted:
		return "intercepted"
	default:
		return "incomplete"
	}
}

// VoidBucket classifies the separation held at the moment of throw.
type VoidBucket string

const (
	VoidHigh    VoidBucket = "high_void"
	VoidTight   VoidBucket = "tight_window"
	VoidNeutral VoidBucket = "neutral"
)

// Void bucket thresholds in yards, applied to S_throw.
const (
	VoidHighThreshold  = 5.0
	VoidTightThreshold = 2.0
)

// ClassifyVoid buckets an S_throw separation distance.
func ClassifyVoid(sThrow float64) VoidBucket {
	switch {
	case sThrow > VoidHighThreshold:
		return VoidHigh
	case sThrow < VoidTightThreshold:
		return VoidTight
	default:
		return VoidNeutral
	}
}

// PlayKey uniquely identifies a play within the dataset.
type PlayKey struct {
	GameID int64
	PlayID int
}

// String renders the key for logs and error messages.
func (k PlayKey) String() string {
	return fmt.Sprintf("%d-%d", k.GameID, k.PlayID)
}

// TrackingSample is one player at one frame of one play.
// (GameID, PlayID, PlayerID, FrameID) is unique; FrameID increases
// strictly within a play for a given player at FrameRateHz.
type TrackingSample struct {
	GameID      int64
	PlayID      int
	PlayerID    int
	FrameID     int
	X           float64 // field coordinates, yards
	Y           float64
	Speed       float64 // yards/s; NaN when the tracker dropped it
	Accel       float64 // yards/s^2
	Orientation float64 // degrees
	Dir         float64 // direction of motion, degrees
	Event       string  // optional event tag, e.g. "pass_forward"
}

// Key returns the play key for the sample.
func (s TrackingSample) Key() PlayKey {
	return PlayKey{GameID: s.GameID, PlayID: s.PlayID}
}

// PlayContext is the per-play metadata joined against tracking samples.
type PlayContext struct {
	GameID             int64
	PlayID             int
	Week               int
	TargetedReceiverID int
	DefenderIDs        []int // role-tagged coverage defenders
	Coverage           CoverageClass
	Outcome            Outcome
	Down               int
	WinProbability     float64
	FieldPosition      float64 // absolute yardline, 0-120
	BallLandX          float64
	BallLandY          float64
}

// Key returns the play key for the context row.
func (c PlayContext) Key() PlayKey {
	return PlayKey{GameID: c.GameID, PlayID: c.PlayID}
}

// PlayMetrics holds the derived per-play metrics. Nil pointers mean
// "undefined": the metric could not be computed for this play and must
// be excluded downstream, never coerced to zero.
type PlayMetrics struct {
	Key PlayKey

	SQI *float64 // separation quality index, yards
	BAA *float64 // ball arrival advantage, frames
	RES *float64 // route efficiency score, percent
	CTI *float64 // coverage tightness index, yards (validation only)

	SThrow    *float64 // receiver-to-nearest-defender distance at release
	SArrival  *float64 // same distance at ball arrival
	VIS       *float64 // S_throw - S_arrival
	CEOE      *float64 // VIS / flight time, yards/s
	CEOEDelta *float64 // CEOE minus peer-group mean, set by benchmarking

	Void              VoidBucket
	NearestDefenderID int // defender closest to the receiver at release
}

// ExecutionGapRecord is the residual of a play against the baseline
// model. Immutable once computed for a given model fit.
type ExecutionGapRecord struct {
	Key      PlayKey
	Expected float64 // model completion probability in [0,1]
	Actual   float64 // 1 complete, 0 otherwise
	Gap      float64 // Actual - Expected
}

// PlayerAggregate is one row of a ranking table. Metric means are nil
// when no play in the group had the metric defined.
type PlayerAggregate struct {
	PlayerID int
	Plays    int

	MeanSQI       *float64
	MeanBAA       *float64
	MeanRES       *float64
	MeanCTI       *float64
	MeanVIS       *float64
	MeanCEOEDelta *float64

	MeanGap float64
	Rank    int
}
