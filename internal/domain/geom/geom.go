// Package geom provides the geometry primitives shared by the metric
// calculators: Euclidean distance, nearest-K selection, and path length
// over ordered point sequences. All functions are pure; NaN inputs
// propagate as NaN rather than erroring.
package geom

import (
	"fmt"
	"math"
	"sort"
)

// Point is a position in field coordinates, yards.
type Point struct {
	X float64
	Y float64
}

// Valid reports whether both coordinates are real numbers.
func (p Point) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y)
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// PathLength returns the sum of consecutive segment lengths along an
// ordered point sequence. Zero or one point yields 0.0.
func PathLength(pts []Point) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += Distance(pts[i-1], pts[i])
	}
	return total
}

// Candidate is an identified point offered to NearestK.
type Candidate struct {
	ID int
	P  Point
}

// Neighbor is a NearestK result: candidate id and its distance to the
// reference point.
type Neighbor struct {
	ID   int
	Dist float64
}

// NearestK returns the k candidates closest to ref, ascending by
// distance with ties broken by candidate id so re-running on the same
// unordered candidate set yields the same ordered result. Candidates
// with NaN coordinates are not valid and do not count toward k.
// Returns ErrInsufficientCandidates when fewer than k valid candidates
// exist; callers treat that as "metric undefined", not a fatal error.
func NearestK(ref Point, candidates []Candidate, k int) ([]Neighbor, error) {
	if k <= 0 {
		return nil, fmt.Errorf("nearest-k: %w: got %d", ErrInvalidK, k)
	}

	neighbors := make([]Neighbor, 0, len(candidates))
	for _, c := range candidates {
		if !c.P.Valid() {
			continue
		}
		neighbors = append(neighbors, Neighbor{ID: c.ID, Dist: Distance(ref, c.P)})
	}
	if len(neighbors) < k {
		return nil, fmt.Errorf("nearest-k: %w: need %d, have %d valid", ErrInsufficientCandidates, k, len(neighbors))
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Dist != neighbors[j].Dist {
			return neighbors[i].Dist < neighbors[j].Dist
		}
		return neighbors[i].ID < neighbors[j].ID
	})
	return neighbors[:k:k], nil
}
