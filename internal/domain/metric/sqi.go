// Package metric implements the contested-catch calculators: SQI, BAA,
// RES, CTI, and the void framework (S_throw, S_arrival, VIS, CEOE).
// Every calculator is a pure function of the resolved window roles and
// play context; when a required role is missing it reports an
// UndefinedError rather than substituting a default.
package metric

import (
	"github.com/okian/voidframe/internal/domain/geom"
	"github.com/okian/voidframe/internal/domain/track"
	"gonum.org/v1/gonum/stat"
)

// separationSeries returns the per-frame mean distance from the
// receiver to its k nearest defenders. Undefined when any frame has
// fewer than k valid defenders.
func separationSeries(roles track.Roles, k int, metric string) ([]float64, error) {
	if len(roles.Frames) == 0 {
		return nil, undefined(roles.Key, metric, "no resolved frames in window")
	}
	series := make([]float64, 0, len(roles.Frames))
	for _, frame := range roles.Frames {
		neighbors, err := geom.NearestK(frame.Receiver, frame.Defenders, k)
		if err != nil {
			return nil, undefined(roles.Key, metric, err.Error())
		}
		sum := 0.0
		for _, n := range neighbors {
			sum += n.Dist
		}
		series = append(series, sum/float64(k))
	}
	return series, nil
}

// meanMinusHalfStd is the shared SQI/CTI shape: the series mean
// penalized by half its population standard deviation, so volatile
// separation scores lower than consistently tight coverage.
func meanMinusHalfStd(series []float64) float64 {
	return stat.Mean(series, nil) - 0.5*stat.PopStdDev(series, nil)
}

// SQI computes the Separation Quality Index over the post-release
// window: mean per-frame separation to the k nearest defenders minus
// half its standard deviation, in yards.
func SQI(roles track.Roles, k int) (float64, error) {
	series, err := separationSeries(roles, k, "sqi")
	if err != nil {
		return 0, err
	}
	return meanMinusHalfStd(series), nil
}

// CTI computes the Coverage Tightness Index, the defensive mirror of
// SQI taken from the nearest defender's perspective (k=1). It is a
// fairness/validation signal, never a primary ranking metric.
func CTI(roles track.Roles) (float64, error) {
	series, err := separationSeries(roles, 1, "cti")
	if err != nil {
		return 0, err
	}
	return meanMinusHalfStd(series), nil
}
