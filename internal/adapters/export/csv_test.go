package export_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/voidframe/internal/adapters/export"
	"github.com/okian/voidframe/internal/adapters/repository"
	"github.com/okian/voidframe/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func fp(v float64) *float64 { return &v }

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestWritePlays(t *testing.T) {
	Convey("Given a CSV writer", t, func() {
		dir := filepath.Join(t.TempDir(), "outputs")
		w, err := export.NewCSVWriter(dir)
		So(err, ShouldBeNil)

		Convey("When the play table is written", func() {
			key := model.PlayKey{GameID: 2022090800, PlayID: 56}
			rows := []repository.PlayRow{
				{
					Key:      key,
					Outcome:  model.OutcomeComplete,
					Metrics:  model.PlayMetrics{Key: key, SQI: fp(3.2), BAA: fp(1.5), RES: fp(91.5)},
					Expected: fp(0.61),
					Gap:      fp(0.39),
				},
				{
					Key:     model.PlayKey{GameID: 2022090800, PlayID: 101},
					Outcome: model.OutcomeIncomplete,
					Metrics: model.PlayMetrics{Key: model.PlayKey{GameID: 2022090800, PlayID: 101}},
				},
			}
			So(w.WritePlays(rows), ShouldBeNil)

			records := readCSV(t, filepath.Join(dir, "all_plays_metrics.csv"))

			Convey("Then the header carries the stable column set", func() {
				So(records[0], ShouldResemble, []string{
					"game_id", "play_id", "outcome", "sqi", "baa", "res", "expected_catch_rate", "execution_gap",
				})
			})

			Convey("Then defined metrics are formatted and nils stay empty", func() {
				So(records, ShouldHaveLength, 3)
				So(records[1][0], ShouldEqual, "2022090800")
				So(records[1][1], ShouldEqual, "56")
				So(records[1][2], ShouldEqual, "complete")
				So(records[1][3], ShouldEqual, "3.200000")
				So(records[1][7], ShouldEqual, "0.390000")
				So(records[2][2], ShouldEqual, "incomplete")
				So(records[2][3], ShouldEqual, "")
				So(records[2][7], ShouldEqual, "")
			})
		})
	})
}

func TestWriteRankings(t *testing.T) {
	Convey("Given a CSV writer", t, func() {
		dir := filepath.Join(t.TempDir(), "outputs")
		w, err := export.NewCSVWriter(dir)
		So(err, ShouldBeNil)

		Convey("When a ranking table is written", func() {
			aggs := []model.PlayerAggregate{
				{PlayerID: 10, Plays: 25, MeanSQI: fp(3.1), MeanRES: fp(88.0), MeanGap: 0.05, Rank: 1},
				{PlayerID: 11, Plays: 21, MeanGap: -0.02, Rank: 2},
			}
			So(w.WriteRankings("receiver_rankings", aggs), ShouldBeNil)

			records := readCSV(t, filepath.Join(dir, "receiver_rankings.csv"))

			Convey("Then the header carries the stable column set", func() {
				So(records[0], ShouldResemble, []string{
					"player_id", "n_plays", "mean_sqi", "mean_baa", "mean_res", "mean_cti", "mean_vis", "mean_ceoe", "execution_gap", "rank",
				})
			})

			Convey("Then rows preserve ranking order and nullable means", func() {
				So(records, ShouldHaveLength, 3)
				So(records[1][0], ShouldEqual, "10")
				So(records[1][2], ShouldEqual, "3.100000")
				So(records[1][9], ShouldEqual, "1")
				So(records[2][0], ShouldEqual, "11")
				So(records[2][2], ShouldEqual, "")
				So(records[2][9], ShouldEqual, "2")
			})
		})

		Convey("When the target directory already exists", func() {
			again, aerr := export.NewCSVWriter(dir)

			Convey("Then creation is idempotent", func() {
				So(aerr, ShouldBeNil)
				So(again, ShouldNotBeNil)
			})
		})
	})
}
