package metric

import (
	"github.com/okian/voidframe/internal/domain/geom"
	"github.com/okian/voidframe/internal/domain/model"
	"github.com/okian/voidframe/internal/domain/track"
)

// arrivalFrame returns the frame at which the tracked points come
// closest to the landing point: argmin distance, earliest frame on
// ties. ok is false when the player never appears.
func arrivalFrame(frames []track.FrameSnapshot, playerID int, receiver bool, land geom.Point) (int, bool) {
	best := 0
	bestDist := 0.0
	found := false
	for _, frame := range frames {
		var p geom.Point
		if receiver {
			p = frame.Receiver
		} else {
			ok := false
			for _, d := range frame.Defenders {
				if d.ID == playerID {
					p = d.P
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}
		dist := geom.Distance(p, land)
		if !found || dist < bestDist {
			found = true
			best = frame.FrameID
			bestDist = dist
		}
	}
	return best, found
}

// BAA computes the Ball Arrival Advantage in frames: the mean arrival
// frame of the k defenders nearest the receiver at release, minus the
// receiver's own arrival frame at the ball landing point. Positive BAA
// means the receiver gets there first.
func BAA(roles track.Roles, ctx model.PlayContext, k int) (float64, error) {
	if len(roles.Frames) == 0 {
		return 0, undefined(roles.Key, "baa", "no resolved frames in window")
	}
	land := geom.Point{X: ctx.BallLandX, Y: ctx.BallLandY}

	release := roles.Frames[0]
	nearest, err := geom.NearestK(release.Receiver, release.Defenders, k)
	if err != nil {
		return 0, undefined(roles.Key, "baa", err.Error())
	}

	receiverArrival, ok := arrivalFrame(roles.Frames, roles.ReceiverID, true, land)
	if !ok {
		return 0, undefined(roles.Key, "baa", "receiver trajectory empty")
	}

	sum := 0.0
	counted := 0
	for _, n := range nearest {
		frame, ok := arrivalFrame(roles.Frames, n.ID, false, land)
		if !ok {
			continue
		}
		sum += float64(frame)
		counted++
	}
	if counted == 0 {
		return 0, undefined(roles.Key, "baa", "no defender trajectories in window")
	}
	return sum/float64(counted) - float64(receiverArrival), nil
}
