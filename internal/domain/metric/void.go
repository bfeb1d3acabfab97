package metric

import (
	"github.com/okian/voidframe/internal/domain/geom"
	"github.com/okian/voidframe/internal/domain/track"
)

// VoidMetrics are the throw-moment separation measurements: the void
// the offense held at release and how much of it the defense erased by
// ball arrival.
type VoidMetrics struct {
	SThrow            float64 // receiver-to-nearest-defender distance at release, yards
	SArrival          float64 // same distance at ball arrival
	VIS               float64 // SThrow - SArrival; positive = defender closed the gap
	ClosingRate       float64 // VIS / flight seconds, yards/s (CEOE raw term)
	ClosingRateOK     bool    // false when the window has zero flight time
	NearestDefenderID int     // defender nearest the receiver at release
}

// Void computes the void-framework metrics over a window. Undefined
// when no defender is tracked at the release or arrival frame.
func Void(w track.Window, roles track.Roles) (VoidMetrics, error) {
	if len(roles.Frames) == 0 {
		return VoidMetrics{}, undefined(roles.Key, "void", "no resolved frames in window")
	}
	release := roles.Frames[0]
	arrival := roles.Frames[len(roles.Frames)-1]

	atThrow, err := geom.NearestK(release.Receiver, release.Defenders, 1)
	if err != nil {
		return VoidMetrics{}, undefined(roles.Key, "s_throw", err.Error())
	}
	atArrival, err := geom.NearestK(arrival.Receiver, arrival.Defenders, 1)
	if err != nil {
		return VoidMetrics{}, undefined(roles.Key, "s_arrival", err.Error())
	}

	vm := VoidMetrics{
		SThrow:            atThrow[0].Dist,
		SArrival:          atArrival[0].Dist,
		NearestDefenderID: atThrow[0].ID,
	}
	vm.VIS = vm.SThrow - vm.SArrival
	if flight := w.FlightSeconds(); flight > 0 {
		vm.ClosingRate = vm.VIS / flight
		vm.ClosingRateOK = true
	}
	return vm, nil
}
