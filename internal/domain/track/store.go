// Package track holds the in-memory tracking frame store and the role
// and window resolution steps that feed the metric calculators.
package track

import (
	"math"
	"sort"

	"github.com/okian/voidframe/internal/domain/model"
)

// Store is an in-memory table of tracking samples partitioned by play.
// It is populated once by an external loader and is read-only for the
// rest of the run.
type Store struct {
	plays map[model.PlayKey][]model.TrackingSample
	dirty map[model.PlayKey]bool
}

// NewStore creates an empty frame store.
func NewStore() *Store {
	return &Store{
		plays: make(map[model.PlayKey][]model.TrackingSample),
		dirty: make(map[model.PlayKey]bool),
	}
}

// Add appends a sample to its play partition.
func (s *Store) Add(sample model.TrackingSample) {
	key := sample.Key()
	s.plays[key] = append(s.plays[key], sample)
	s.dirty[key] = true
}

// AddAll appends a batch of samples.
func (s *Store) AddAll(samples []model.TrackingSample) {
	for _, sample := range samples {
		s.Add(sample)
	}
}

// Plays returns the stored play keys in deterministic order.
func (s *Store) Plays() []model.PlayKey {
	keys := make([]model.PlayKey, 0, len(s.plays))
	for k := range s.plays {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].GameID != keys[j].GameID {
			return keys[i].GameID < keys[j].GameID
		}
		return keys[i].PlayID < keys[j].PlayID
	})
	return keys
}

// Len returns the number of plays with at least one sample.
func (s *Store) Len() int {
	return len(s.plays)
}

// Play returns a play's samples ordered by frame then player id.
// Returns ErrPlayNotFound for unknown keys.
func (s *Store) Play(key model.PlayKey) ([]model.TrackingSample, error) {
	samples, ok := s.plays[key]
	if !ok {
		return nil, ErrPlayNotFound
	}
	if s.dirty[key] {
		sort.Slice(samples, func(i, j int) bool {
			if samples[i].FrameID != samples[j].FrameID {
				return samples[i].FrameID < samples[j].FrameID
			}
			return samples[i].PlayerID < samples[j].PlayerID
		})
		deriveSpeeds(samples)
		s.plays[key] = samples
		delete(s.dirty, key)
	}
	return samples, nil
}

// deriveSpeeds fills NaN speeds from positional first differences at
// the fixed sampling rate. Single-sample players keep NaN: there is no
// displacement to difference.
func deriveSpeeds(samples []model.TrackingSample) {
	byPlayer := make(map[int][]int)
	for i, sample := range samples {
		byPlayer[sample.PlayerID] = append(byPlayer[sample.PlayerID], i)
	}
	for _, idx := range byPlayer {
		for j := 1; j < len(idx); j++ {
			cur := &samples[idx[j]]
			if !math.IsNaN(cur.Speed) {
				continue
			}
			prev := samples[idx[j-1]]
			dt := float64(cur.FrameID-prev.FrameID) / model.FrameRateHz
			if dt <= 0 {
				continue
			}
			cur.Speed = math.Hypot(cur.X-prev.X, cur.Y-prev.Y) / dt
		}
	}
}
