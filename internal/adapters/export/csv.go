// Package export writes the per-run CSV artifacts consumed by the
// visualization and writeup collaborators. The column names and order
// are a stable compatibility surface.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/okian/voidframe/internal/adapters/repository"
	"github.com/okian/voidframe/internal/domain/model"
)

// CSVWriter writes run artifacts into a target directory.
type CSVWriter struct {
	dir string
}

// NewCSVWriter creates a writer targeting dir, creating it if needed.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create output dir: %w", err)
	}
	return &CSVWriter{dir: dir}, nil
}

func formatNullable(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}

// WritePlays writes the per-play table: one row per play with the
// stable column set.
func (w *CSVWriter) WritePlays(rows []repository.PlayRow) error {
	f, err := os.Create(filepath.Join(w.dir, "all_plays_metrics.csv"))
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := []string{"game_id", "play_id", "outcome", "sqi", "baa", "res", "expected_catch_rate", "execution_gap"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.Key.GameID, 10),
			strconv.Itoa(row.Key.PlayID),
			row.Outcome.String(),
			formatNullable(row.Metrics.SQI),
			formatNullable(row.Metrics.BAA),
			formatNullable(row.Metrics.RES),
			formatNullable(row.Expected),
			formatNullable(row.Gap),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("export: play %s: %w", row.Key, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRankings writes a player ranking table under the given name,
// e.g. "receiver_rankings" or "defender_rankings".
func (w *CSVWriter) WriteRankings(name string, aggs []model.PlayerAggregate) error {
	f, err := os.Create(filepath.Join(w.dir, name+".csv"))
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := []string{"player_id", "n_plays", "mean_sqi", "mean_baa", "mean_res", "mean_cti", "mean_vis", "mean_ceoe", "execution_gap", "rank"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for _, a := range aggs {
		record := []string{
			strconv.Itoa(a.PlayerID),
			strconv.Itoa(a.Plays),
			formatNullable(a.MeanSQI),
			formatNullable(a.MeanBAA),
			formatNullable(a.MeanRES),
			formatNullable(a.MeanCTI),
			formatNullable(a.MeanVIS),
			formatNullable(a.MeanCEOEDelta),
			strconv.FormatFloat(a.MeanGap, 'f', 6, 64),
			strconv.Itoa(a.Rank),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("export: player %d: %w", a.PlayerID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
