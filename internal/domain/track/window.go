package track

import (
	"fmt"

	"github.com/okian/voidframe/internal/domain/model"
)

// Window is the post-release slice of a play: all frames from the
// pass-forward event (inclusive) to the catch/incompletion event, or
// the last frame of the play when no outcome event is tagged.
type Window struct {
	Key          model.PlayKey
	ReleaseFrame int
	ArrivalFrame int
	Samples      []model.TrackingSample
}

// FlightSeconds converts the window span to seconds at the fixed
// sampling rate.
func (w Window) FlightSeconds() float64 {
	return float64(w.ArrivalFrame-w.ReleaseFrame) / model.FrameRateHz
}

// outcomeEvent reports whether the tag ends the ball-in-air phase.
func outcomeEvent(event string) bool {
	switch event {
	case model.EventPassCaught, model.EventPassIncomplete, model.EventPassInterception:
		return true
	}
	return false
}

// PostRelease extracts the post-release window from a play's samples.
// Samples must already be frame-ordered, as returned by Store.Play.
// Returns ErrNoRelease when the play has no pass-forward event.
func PostRelease(key model.PlayKey, samples []model.TrackingSample) (Window, error) {
	release := -1
	for _, sample := range samples {
		if sample.Event == model.EventPassForward {
			release = sample.FrameID
			break
		}
	}
	if release < 0 {
		return Window{}, fmt.Errorf("play %s: %w", key, ErrNoRelease)
	}

	arrival := -1
	last := release
	for _, sample := range samples {
		if sample.FrameID < release {
			continue
		}
		if sample.FrameID > last {
			last = sample.FrameID
		}
		if outcomeEvent(sample.Event) && (arrival < 0 || sample.FrameID < arrival) {
			arrival = sample.FrameID
		}
	}
	if arrival < 0 {
		arrival = last
	}

	window := Window{Key: key, ReleaseFrame: release, ArrivalFrame: arrival}
	for _, sample := range samples {
		if sample.FrameID >= release && sample.FrameID <= arrival {
			window.Samples = append(window.Samples, sample)
		}
	}
	return window, nil
}
