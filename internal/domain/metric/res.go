package metric

import (
	"github.com/okian/voidframe/internal/domain/geom"
	"github.com/okian/voidframe/internal/domain/model"
	"github.com/okian/voidframe/internal/domain/track"
)

// RESDataQualityCeiling marks the value above which RES is a
// measurement-noise signal: a route cannot be shorter than the straight
// line to the landing point.
const RESDataQualityCeiling = 100.0

// RES computes the Route Efficiency Score as a percentage: the
// straight-line distance from the receiver's release position to the
// ball landing point, over the receiver's actual path length across the
// window. Values above RESDataQualityCeiling are returned unclamped;
// the caller records them as a data-quality warning instead of trusting
// them silently.
func RES(roles track.Roles, ctx model.PlayContext) (float64, error) {
	path := roles.ReceiverPath()
	if len(path) < 2 {
		return 0, undefined(roles.Key, "res", "receiver tracked in fewer than two frames")
	}

	land := geom.Point{X: ctx.BallLandX, Y: ctx.BallLandY}
	optimal := geom.Distance(path[0], land)
	actual := geom.PathLength(path)
	switch {
	case optimal == 0 && actual == 0:
		// Receiver camped on the landing point; the trivial route is
		// trivially efficient.
		return RESDataQualityCeiling, nil
	case actual == 0:
		return 0, undefined(roles.Key, "res", "receiver stationary away from landing point")
	case optimal == 0:
		return 0, undefined(roles.Key, "res", "receiver at landing point at release but moved")
	}
	return optimal / actual * RESDataQualityCeiling, nil
}
