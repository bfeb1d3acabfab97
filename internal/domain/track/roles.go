package track

import (
	"math"

	"github.com/okian/voidframe/internal/domain/geom"
	"github.com/okian/voidframe/internal/domain/model"
)

var nan = math.NaN()

// FrameSnapshot is one window frame with the targeted receiver and the
// coverage defenders tracked at that frame.
type FrameSnapshot struct {
	FrameID   int
	Receiver  geom.Point
	Defenders []geom.Candidate
}

// Roles is the resolved role structure for a play's window. It is
// produced once per play and handed to every metric calculator, so the
// calculators never repeat ad hoc role filtering.
type Roles struct {
	Key        model.PlayKey
	ReceiverID int
	// Frames holds the window frames where the receiver is tracked,
	// ascending by frame id.
	Frames []FrameSnapshot
}

// ReceiverPath returns the receiver's positions across the resolved
// frames, in frame order.
func (r Roles) ReceiverPath() []geom.Point {
	path := make([]geom.Point, len(r.Frames))
	for i, f := range r.Frames {
		path[i] = f.Receiver
	}
	return path
}

// MinDefendersPerFrame returns the smallest number of valid defender
// positions in any resolved frame, or 0 when there are no frames.
func (r Roles) MinDefendersPerFrame() int {
	if len(r.Frames) == 0 {
		return 0
	}
	minDef := -1
	for _, f := range r.Frames {
		n := 0
		for _, d := range f.Defenders {
			if d.P.Valid() {
				n++
			}
		}
		if minDef < 0 || n < minDef {
			minDef = n
		}
	}
	return minDef
}

// ResolveRoles builds the role structure for a window from the play
// context. Frames where the receiver is not tracked are dropped.
// Returns a RoleError wrapping ErrMissingRole when the context names no
// targeted receiver or the receiver never appears in the window.
func ResolveRoles(w Window, ctx model.PlayContext) (Roles, error) {
	if ctx.TargetedReceiverID == 0 {
		return Roles{}, &RoleError{Key: w.Key, Role: "targeted receiver"}
	}

	defenders := make(map[int]bool, len(ctx.DefenderIDs))
	for _, id := range ctx.DefenderIDs {
		defenders[id] = true
	}

	byFrame := make(map[int]*FrameSnapshot)
	order := make([]int, 0, 16)
	for _, sample := range w.Samples {
		snap, ok := byFrame[sample.FrameID]
		if !ok {
			snap = &FrameSnapshot{FrameID: sample.FrameID, Receiver: geom.Point{X: nan, Y: nan}}
			byFrame[sample.FrameID] = snap
			order = append(order, sample.FrameID)
		}
		p := geom.Point{X: sample.X, Y: sample.Y}
		switch {
		case sample.PlayerID == ctx.TargetedReceiverID:
			snap.Receiver = p
		case defenders[sample.PlayerID]:
			snap.Defenders = append(snap.Defenders, geom.Candidate{ID: sample.PlayerID, P: p})
		}
	}

	roles := Roles{Key: w.Key, ReceiverID: ctx.TargetedReceiverID}
	for _, frameID := range order {
		snap := byFrame[frameID]
		if !snap.Receiver.Valid() {
			continue
		}
		roles.Frames = append(roles.Frames, *snap)
	}
	if len(roles.Frames) == 0 {
		return Roles{}, &RoleError{Key: w.Key, Role: "targeted receiver"}
	}
	return roles, nil
}
