package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/okian/voidframe/internal/config"
	"github.com/okian/voidframe/internal/domain/model"
	"github.com/okian/voidframe/internal/domain/track"
)

// The pipeline core never reads files; this loader is the in-process
// stand-in for the external data-loading collaborator. It consumes the
// pre-parsed JSON tables the preprocessing step emits.

type trackingRow struct {
	GameID      int64    `json:"game_id"`
	PlayID      int      `json:"play_id"`
	PlayerID    int      `json:"player_id"`
	FrameID     int      `json:"frame_id"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Speed       *float64 `json:"s"`
	Accel       *float64 `json:"a"`
	Orientation *float64 `json:"o"`
	Dir         *float64 `json:"dir"`
	Event       string   `json:"event,omitempty"`
}

type playRow struct {
	GameID             int64   `json:"game_id"`
	PlayID             int     `json:"play_id"`
	Week               int     `json:"week"`
	TargetedReceiverID int     `json:"targeted_receiver_id"`
	DefenderIDs        []int   `json:"defender_ids"`
	Coverage           string  `json:"coverage_type"`
	Outcome            string  `json:"outcome"`
	Down               int     `json:"down"`
	WinProbability     float64 `json:"win_probability"`
	FieldPosition      float64 `json:"field_position"`
	BallLandX          float64 `json:"ball_land_x"`
	BallLandY          float64 `json:"ball_land_y"`
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func parseCoverage(s string) model.CoverageClass {
	switch s {
	case "man":
		return model.CoverageMan
	case "zone":
		return model.CoverageZone
	case "press":
		return model.CoveragePress
	default:
		return model.CoverageUnknown
	}
}

func parseOutcome(s string) model.Outcome {
	switch s {
	case "complete":
		return model.OutcomeComplete
	case "intercepted":
		return model.OutcomeIntercepted
	default:
		return model.OutcomeIncomplete
	}
}

func decodeFile[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var rows []T
	if err := json.NewDecoder(f).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// loadDataset reads the tracking and play tables, restricted to the
// configured weeks.
func loadDataset(cfg *config.Config) (*track.Store, []model.PlayContext, error) {
	playRows, err := decodeFile[playRow](cfg.PlaysPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load plays: %w", err)
	}

	weeks := make(map[int]bool, len(cfg.Weeks))
	for _, w := range cfg.Weeks {
		weeks[w] = true
	}

	plays := make([]model.PlayContext, 0, len(playRows))
	keep := make(map[model.PlayKey]bool, len(playRows))
	for _, r := range playRows {
		if len(weeks) > 0 && !weeks[r.Week] {
			continue
		}
		pc := model.PlayContext{
			GameID:             r.GameID,
			PlayID:             r.PlayID,
			Week:               r.Week,
			TargetedReceiverID: r.TargetedReceiverID,
			DefenderIDs:        r.DefenderIDs,
			Coverage:           parseCoverage(r.Coverage),
			Outcome:            parseOutcome(r.Outcome),
			Down:               r.Down,
			WinProbability:     r.WinProbability,
			FieldPosition:      r.FieldPosition,
			BallLandX:          r.BallLandX,
			BallLandY:          r.BallLandY,
		}
		plays = append(plays, pc)
		keep[pc.Key()] = true
	}

	trackingRows, err := decodeFile[trackingRow](cfg.TrackingPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load tracking: %w", err)
	}

	frames := track.NewStore()
	for _, r := range trackingRows {
		sample := model.TrackingSample{
			GameID:      r.GameID,
			PlayID:      r.PlayID,
			PlayerID:    r.PlayerID,
			FrameID:     r.FrameID,
			X:           r.X,
			Y:           r.Y,
			Speed:       orNaN(r.Speed),
			Accel:       orNaN(r.Accel),
			Orientation: orNaN(r.Orientation),
			Dir:         orNaN(r.Dir),
			Event:       r.Event,
		}
		if !keep[sample.Key()] {
			continue
		}
		frames.Add(sample)
	}
	return frames, plays, nil
}
