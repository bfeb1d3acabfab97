// Package aggregate groups play-level metrics and execution gaps into
// ranked per-player summary tables, benchmarks CEOE against peer
// groups, and bins plays by coverage tightness for the
// performance-under-pressure breakdown.
package aggregate

import (
	"sort"

	"github.com/okian/voidframe/internal/domain/model"
	"gonum.org/v1/gonum/stat"
)

// DefaultMinPlays is the minimum-sample cutoff for ranking inclusion.
const DefaultMinPlays = 20

// Config controls aggregation.
type Config struct {
	MinPlays int
}

// DefaultConfig returns the aggregation defaults.
func DefaultConfig() Config {
	return Config{MinPlays: DefaultMinPlays}
}

func (c Config) minPlays() int {
	if c.MinPlays > 0 {
		return c.MinPlays
	}
	return DefaultMinPlays
}

// PlayRow joins one filtered play's metrics, gap, and attribution.
// Gap is nil when the play was excluded from the model (nil feature).
type PlayRow struct {
	Key               model.PlayKey
	ReceiverID        int
	NearestDefenderID int
	Coverage          model.CoverageClass
	Metrics           model.PlayMetrics
	Gap               *model.ExecutionGapRecord
}

// meanAcc accumulates a nil-excluding mean: undefined metrics reduce
// the denominator rather than counting as zero.
type meanAcc struct {
	sum float64
	n   int
}

func (a *meanAcc) add(v *float64) {
	if v == nil {
		return
	}
	a.sum += *v
	a.n++
}

func (a *meanAcc) mean() *float64 {
	if a.n == 0 {
		return nil
	}
	m := a.sum / float64(a.n)
	return &m
}

type group struct {
	playerID int
	rows     []PlayRow
}

func groupBy(rows []PlayRow, playerOf func(PlayRow) int) []group {
	byID := make(map[int]*group)
	for _, row := range rows {
		id := playerOf(row)
		if id == 0 {
			continue
		}
		g, ok := byID[id]
		if !ok {
			g = &group{playerID: id}
			byID[id] = g
		}
		g.rows = append(g.rows, row)
	}
	groups := make([]group, 0, len(byID))
	for _, g := range byID {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].playerID < groups[j].playerID })
	return groups
}

func (g group) aggregate(score func(PlayRow) (float64, bool)) (model.PlayerAggregate, bool) {
	agg := model.PlayerAggregate{PlayerID: g.playerID}
	var sqi, baa, res, cti, vis, ceoe meanAcc
	scoreSum := 0.0
	for _, row := range g.rows {
		v, ok := score(row)
		if !ok {
			continue
		}
		agg.Plays++
		scoreSum += v
		sqi.add(row.Metrics.SQI)
		baa.add(row.Metrics.BAA)
		res.add(row.Metrics.RES)
		cti.add(row.Metrics.CTI)
		vis.add(row.Metrics.VIS)
		ceoe.add(row.Metrics.CEOEDelta)
	}
	if agg.Plays == 0 {
		return agg, false
	}
	agg.MeanGap = scoreSum / float64(agg.Plays)
	agg.MeanSQI = sqi.mean()
	agg.MeanBAA = baa.mean()
	agg.MeanRES = res.mean()
	agg.MeanCTI = cti.mean()
	agg.MeanVIS = vis.mean()
	agg.MeanCEOEDelta = ceoe.mean()
	return agg, true
}

// rank sorts descending by mean score with player id as tie-break and
// assigns 1-based ranks.
func rank(aggs []model.PlayerAggregate) []model.PlayerAggregate {
	sort.Slice(aggs, func(i, j int) bool {
		if aggs[i].MeanGap != aggs[j].MeanGap {
			return aggs[i].MeanGap > aggs[j].MeanGap
		}
		return aggs[i].PlayerID < aggs[j].PlayerID
	})
	for i := range aggs {
		aggs[i].Rank = i + 1
	}
	return aggs
}

// Receivers ranks targeted receivers by mean execution gap. Only plays
// with a computed gap count toward the sample; players below the
// minimum-sample cutoff are excluded entirely.
func Receivers(rows []PlayRow, cfg Config) []model.PlayerAggregate {
	var out []model.PlayerAggregate
	for _, g := range groupBy(rows, func(r PlayRow) int { return r.ReceiverID }) {
		agg, ok := g.aggregate(func(r PlayRow) (float64, bool) {
			if r.Gap == nil {
				return 0, false
			}
			return r.Gap.Gap, true
		})
		if ok && agg.Plays >= cfg.minPlays() {
			out = append(out, agg)
		}
	}
	return rank(out)
}

// Defenders ranks nearest defenders by mean CEOE delta: how much
// faster than their peer group they erased the throw-moment void.
func Defenders(rows []PlayRow, cfg Config) []model.PlayerAggregate {
	var out []model.PlayerAggregate
	for _, g := range groupBy(rows, func(r PlayRow) int { return r.NearestDefenderID }) {
		agg, ok := g.aggregate(func(r PlayRow) (float64, bool) {
			if r.Metrics.CEOEDelta == nil {
				return 0, false
			}
			return *r.Metrics.CEOEDelta, true
		})
		if ok && agg.Plays >= cfg.minPlays() {
			out = append(out, agg)
		}
	}
	// For defenders the ranking score is the CEOE delta mean; reuse the
	// MeanGap slot as the sort key it already is.
	for i := range out {
		out[i].MeanGap = *out[i].MeanCEOEDelta
	}
	return rank(out)
}

// BenchmarkCEOE fills CEOEDelta on every row that has a raw closing
// rate: the row's rate minus its peer-group mean (coverage class x
// void bucket) computed over the filtered dataset. Rows without a
// closing rate keep a nil delta.
func BenchmarkCEOE(rows []PlayRow) {
	type peer struct {
		coverage model.CoverageClass
		void     model.VoidBucket
	}
	sums := make(map[peer]*meanAcc)
	for _, row := range rows {
		if row.Metrics.CEOE == nil {
			continue
		}
		p := peer{coverage: row.Coverage, void: row.Metrics.Void}
		acc, ok := sums[p]
		if !ok {
			acc = &meanAcc{}
			sums[p] = acc
		}
		acc.add(row.Metrics.CEOE)
	}
	for i := range rows {
		if rows[i].Metrics.CEOE == nil {
			continue
		}
		p := peer{coverage: rows[i].Coverage, void: rows[i].Metrics.Void}
		mean := sums[p].mean()
		delta := *rows[i].Metrics.CEOE - *mean
		rows[i].Metrics.CEOEDelta = &delta
	}
}

// Bin is one quartile of the pressure breakdown.
type Bin struct {
	Quartile int // 1 (tightest coverage) through 4 (loosest)
	Low      float64
	High     float64
	Plays    int
	MeanGap  float64
}

// PressureBins splits plays into CTI quartiles computed over the
// filtered dataset and reports the mean execution gap inside each bin.
// Bin edges are recomputed whenever the filter configuration changes,
// which callers get for free by re-running over the new subset.
func PressureBins(rows []PlayRow) []Bin {
	var ctis []float64
	for _, row := range rows {
		if row.Metrics.CTI != nil && row.Gap != nil {
			ctis = append(ctis, *row.Metrics.CTI)
		}
	}
	if len(ctis) < 4 {
		return nil
	}
	sort.Float64s(ctis)
	q1 := stat.Quantile(0.25, stat.Empirical, ctis, nil)
	q2 := stat.Quantile(0.50, stat.Empirical, ctis, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, ctis, nil)
	edges := []float64{q1, q2, q3}

	bins := make([]Bin, 4)
	for i := range bins {
		bins[i].Quartile = i + 1
	}
	bins[0].Low = ctis[0]
	bins[0].High = q1
	bins[1].Low, bins[1].High = q1, q2
	bins[2].Low, bins[2].High = q2, q3
	bins[3].Low, bins[3].High = q3, ctis[len(ctis)-1]

	sums := make([]float64, 4)
	for _, row := range rows {
		if row.Metrics.CTI == nil || row.Gap == nil {
			continue
		}
		b := 0
		for _, e := range edges {
			if *row.Metrics.CTI > e {
				b++
			}
		}
		bins[b].Plays++
		sums[b] += row.Gap.Gap
	}
	for i := range bins {
		if bins[i].Plays > 0 {
			bins[i].MeanGap = sums[i] / float64(bins[i].Plays)
		}
	}
	return bins
}
