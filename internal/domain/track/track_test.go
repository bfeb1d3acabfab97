package track_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/voidframe/internal/domain/model"
	"github.com/okian/voidframe/internal/domain/track"
	. "github.com/smartystreets/goconvey/convey"
)

func sample(game int64, play, player, frame int, x, y float64, event string) model.TrackingSample {
	return model.TrackingSample{
		GameID:      game,
		PlayID:      play,
		PlayerID:    player,
		FrameID:     frame,
		X:           x,
		Y:           y,
		Speed:       math.NaN(),
		Accel:       math.NaN(),
		Orientation: math.NaN(),
		Dir:         math.NaN(),
		Event:       event,
	}
}

func TestStore(t *testing.T) {
	Convey("Given samples added out of order", t, func() {
		s := track.NewStore()
		s.Add(sample(1, 7, 22, 3, 2, 0, ""))
		s.Add(sample(1, 7, 10, 1, 0, 0, ""))
		s.Add(sample(1, 7, 22, 1, 1, 0, ""))
		s.Add(sample(1, 7, 10, 3, 2, 0, ""))
		s.Add(sample(1, 7, 10, 2, 1, 0, ""))
		s.Add(sample(1, 7, 22, 2, 1.5, 0, ""))
		key := model.PlayKey{GameID: 1, PlayID: 7}

		Convey("When the play is read back", func() {
			got, err := s.Play(key)

			Convey("Then samples are ordered by frame then player", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 6)
				for i := 1; i < len(got); i++ {
					prev, cur := got[i-1], got[i]
					ordered := prev.FrameID < cur.FrameID ||
						(prev.FrameID == cur.FrameID && prev.PlayerID < cur.PlayerID)
					So(ordered, ShouldBeTrue)
				}
			})

			Convey("Then missing speeds are derived from displacement", func() {
				So(err, ShouldBeNil)
				// Player 10 moves 1 yard per frame at 10 Hz.
				for _, g := range got {
					if g.PlayerID == 10 && g.FrameID > 1 {
						So(g.Speed, ShouldAlmostEqual, 10.0)
					}
				}
				// First frame keeps NaN: nothing to difference against.
				So(math.IsNaN(got[0].Speed), ShouldBeTrue)
			})
		})

		Convey("When reading an unknown key", func() {
			_, err := s.Play(model.PlayKey{GameID: 9, PlayID: 9})

			Convey("Then it reports the play as not found", func() {
				So(err, ShouldWrap, track.ErrPlayNotFound)
			})
		})

		Convey("When listing play keys", func() {
			s.Add(sample(1, 2, 10, 1, 0, 0, ""))
			s.Add(sample(2, 1, 10, 1, 0, 0, ""))
			keys := s.Plays()

			Convey("Then keys come back sorted by game then play", func() {
				So(keys, ShouldResemble, []model.PlayKey{
					{GameID: 1, PlayID: 2},
					{GameID: 1, PlayID: 7},
					{GameID: 2, PlayID: 1},
				})
				So(s.Len(), ShouldEqual, 3)
			})
		})
	})

	Convey("Given a sample with a recorded speed", t, func() {
		s := track.NewStore()
		withSpeed := sample(3, 1, 10, 1, 0, 0, "")
		withSpeed.Speed = 4.5
		s.Add(withSpeed)
		s.Add(sample(3, 1, 10, 2, 9, 0, ""))

		Convey("Then derivation never overwrites recorded values", func() {
			got, err := s.Play(model.PlayKey{GameID: 3, PlayID: 1})
			So(err, ShouldBeNil)
			So(got[0].Speed, ShouldEqual, 4.5)
			So(got[1].Speed, ShouldAlmostEqual, 90.0)
		})
	})
}

func TestPostRelease(t *testing.T) {
	key := model.PlayKey{GameID: 1, PlayID: 1}

	Convey("Given a play with release and outcome events", t, func() {
		var samples []model.TrackingSample
		for f := 1; f <= 12; f++ {
			event := ""
			switch f {
			case 3:
				event = model.EventPassForward
			case 9:
				event = model.EventPassCaught
			}
			samples = append(samples, sample(1, 1, 10, f, float64(f), 0, event))
		}

		Convey("When the window is extracted", func() {
			w, err := track.PostRelease(key, samples)

			Convey("Then it spans release to the outcome event inclusive", func() {
				So(err, ShouldBeNil)
				So(w.ReleaseFrame, ShouldEqual, 3)
				So(w.ArrivalFrame, ShouldEqual, 9)
				So(w.Samples, ShouldHaveLength, 7)
				So(w.FlightSeconds(), ShouldAlmostEqual, 0.6)
			})
		})
	})

	Convey("Given a play with no outcome event after release", t, func() {
		var samples []model.TrackingSample
		for f := 1; f <= 8; f++ {
			event := ""
			if f == 2 {
				event = model.EventPassForward
			}
			samples = append(samples, sample(1, 1, 10, f, float64(f), 0, event))
		}

		Convey("Then the window runs to the last tracked frame", func() {
			w, err := track.PostRelease(key, samples)
			So(err, ShouldBeNil)
			So(w.ReleaseFrame, ShouldEqual, 2)
			So(w.ArrivalFrame, ShouldEqual, 8)
		})
	})

	Convey("Given a play with no pass-forward event", t, func() {
		samples := []model.TrackingSample{
			sample(1, 1, 10, 1, 0, 0, ""),
			sample(1, 1, 10, 2, 1, 0, model.EventPassCaught),
		}

		Convey("Then extraction fails with a no-release error", func() {
			_, err := track.PostRelease(key, samples)
			So(err, ShouldWrap, track.ErrNoRelease)
		})
	})
}

func TestResolveRoles(t *testing.T) {
	key := model.PlayKey{GameID: 4, PlayID: 2}
	ctx := model.PlayContext{
		GameID:             4,
		PlayID:             2,
		TargetedReceiverID: 10,
		DefenderIDs:        []int{21, 22},
	}

	Convey("Given a window with a tracked receiver and defenders", t, func() {
		w := track.Window{Key: key, ReleaseFrame: 1, ArrivalFrame: 3}
		for f := 1; f <= 3; f++ {
			w.Samples = append(w.Samples,
				sample(4, 2, 10, f, float64(f), 0, ""),
				sample(4, 2, 21, f, float64(f)+2, 0, ""),
				sample(4, 2, 22, f, float64(f), 5, ""),
				sample(4, 2, 99, f, 0, 0, ""), // untracked role, ignored
			)
		}

		Convey("When roles are resolved", func() {
			roles, err := track.ResolveRoles(w, ctx)

			Convey("Then each frame carries the receiver and both defenders", func() {
				So(err, ShouldBeNil)
				So(roles.ReceiverID, ShouldEqual, 10)
				So(roles.Frames, ShouldHaveLength, 3)
				for _, f := range roles.Frames {
					So(f.Defenders, ShouldHaveLength, 2)
				}
				So(roles.MinDefendersPerFrame(), ShouldEqual, 2)
				So(roles.ReceiverPath(), ShouldHaveLength, 3)
			})
		})

		Convey("When one frame lacks the receiver", func() {
			w.Samples = append(w.Samples, sample(4, 2, 21, 4, 9, 9, ""))
			roles, err := track.ResolveRoles(w, ctx)

			Convey("Then the frame is dropped, not zero-filled", func() {
				So(err, ShouldBeNil)
				So(roles.Frames, ShouldHaveLength, 3)
			})
		})
	})

	Convey("Given a context with no targeted receiver", t, func() {
		w := track.Window{Key: key, Samples: []model.TrackingSample{sample(4, 2, 21, 1, 0, 0, "")}}
		_, err := track.ResolveRoles(w, model.PlayContext{GameID: 4, PlayID: 2})

		Convey("Then resolution fails with a missing-role error", func() {
			So(err, ShouldWrap, track.ErrMissingRole)
			var re *track.RoleError
			So(errors.As(err, &re), ShouldBeTrue)
			So(re.Role, ShouldEqual, "targeted receiver")
		})
	})

	Convey("Given a receiver that never appears in the window", t, func() {
		w := track.Window{Key: key, Samples: []model.TrackingSample{sample(4, 2, 21, 1, 0, 0, "")}}
		_, err := track.ResolveRoles(w, ctx)

		Convey("Then resolution fails with a missing-role error", func() {
			So(err, ShouldWrap, track.ErrMissingRole)
		})
	})
}
