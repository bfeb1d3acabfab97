// Package app wires the pipeline stages together: filter, metric
// extraction, CEOE benchmarking, baseline fit, gap computation,
// aggregation, and persistence.
package app

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/voidframe/internal/adapters/export"
	"github.com/okian/voidframe/internal/adapters/repository"
	"github.com/okian/voidframe/internal/domain/aggregate"
	"github.com/okian/voidframe/internal/domain/gapmodel"
	"github.com/okian/voidframe/internal/domain/metric"
	"github.com/okian/voidframe/internal/domain/model"
	"github.com/okian/voidframe/internal/domain/playfilter"
	"github.com/okian/voidframe/internal/domain/track"
	"github.com/okian/voidframe/pkg/logger"
	"github.com/okian/voidframe/pkg/metrics"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Pipeline runs the full analysis over a loaded frame store and play
// metadata. It holds configuration only; all per-run state lives in the
// Result so repeated runs are independent.
type Pipeline struct {
	filter    playfilter.Config
	metricCfg metric.Config
	modelCfg  gapmodel.Config
	aggCfg    aggregate.Config
	workers   int

	store    repository.Store
	exporter *export.CSVWriter

	logger logger.Logger
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithFilter sets the analysis-subset filter configuration.
func WithFilter(cfg playfilter.Config) Option {
	return func(p *Pipeline) {
		p.filter = cfg
	}
}

// WithMetricConfig sets the calculator configuration.
func WithMetricConfig(cfg metric.Config) Option {
	return func(p *Pipeline) {
		p.metricCfg = cfg
	}
}

// WithModelConfig sets the baseline-model fit configuration.
func WithModelConfig(cfg gapmodel.Config) Option {
	return func(p *Pipeline) {
		p.modelCfg = cfg
	}
}

// WithAggregateConfig sets the aggregation configuration.
func WithAggregateConfig(cfg aggregate.Config) Option {
	return func(p *Pipeline) {
		p.aggCfg = cfg
	}
}

// WithWorkers bounds the per-play extraction fan-out.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithStore sets the results store; nil disables persistence.
func WithStore(s repository.Store) Option {
	return func(p *Pipeline) {
		p.store = s
	}
}

// WithExporter sets the CSV artifact writer; nil disables export.
func WithExporter(w *export.CSVWriter) Option {
	return func(p *Pipeline) {
		p.exporter = w
	}
}

// New constructs a Pipeline with default configuration.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		filter:    playfilter.BaseSubset(),
		metricCfg: metric.DefaultConfig(),
		modelCfg:  gapmodel.DefaultConfig(),
		aggCfg:    aggregate.DefaultConfig(),
		workers:   runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is one run's complete output.
type Result struct {
	RunID    uuid.UUID
	Filter   string
	Finished time.Time

	Rows      []aggregate.PlayRow
	Report    gapmodel.Report
	Params    gapmodel.Params
	Receivers []model.PlayerAggregate
	Defenders []model.PlayerAggregate
	Pressure  []aggregate.Bin
	Warnings  []metric.Warning

	Skipped  int // no release event or missing roles
	Filtered int // excluded by the subset filter
}

// extraction is the per-play outcome of the extract stage.
type extraction struct {
	row      aggregate.PlayRow
	warnings []metric.Warning
	skipped  bool
	filtered bool
}

// Run executes the pipeline. Per-play failures are local; a model-fit
// failure aborts the run since every downstream gap depends on a valid
// fit.
func (p *Pipeline) Run(ctx context.Context, frames *track.Store, plays []model.PlayContext) (*Result, error) {
	log := p.logger
	if log == nil {
		log = logger.Get().Named("pipeline")
	}

	result := &Result{RunID: uuid.New(), Filter: p.filter.Name}
	log.Info(ctx, "starting run",
		logger.String("run_id", result.RunID.String()),
		logger.String("filter", p.filter.Name),
		logger.Int("plays", len(plays)),
	)

	// Deterministic play order regardless of caller ordering.
	ordered := make([]model.PlayContext, len(plays))
	copy(ordered, plays)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].GameID != ordered[j].GameID {
			return ordered[i].GameID < ordered[j].GameID
		}
		return ordered[i].PlayID < ordered[j].PlayID
	})

	extractions := p.extract(ctx, frames, ordered)

	for _, ex := range extractions {
		switch {
		case ex.skipped:
			result.Skipped++
			metrics.RecordPlaySkipped()
		case ex.filtered:
			result.Filtered++
			metrics.RecordPlayFiltered()
		default:
			result.Rows = append(result.Rows, ex.row)
			result.Warnings = append(result.Warnings, ex.warnings...)
			metrics.RecordPlayProcessed()
			countUndefined(ex.row.Metrics)
		}
	}
	for range result.Warnings {
		metrics.RecordDataQualityWarning()
	}
	log.Info(ctx, "extraction complete",
		logger.Int("kept", len(result.Rows)),
		logger.Int("skipped", result.Skipped),
		logger.Int("filtered", result.Filtered),
		logger.Int("warnings", len(result.Warnings)),
	)

	// CEOE peer benchmarking over the filtered subset.
	p.timed(ctx, "benchmark", func() error {
		aggregate.BenchmarkCEOE(result.Rows)
		return nil
	})

	// Baseline fit. Rows with any nil feature are excluded from both
	// fit and prediction, never imputed.
	outcomes := make(map[model.PlayKey]model.Outcome, len(ordered))
	for _, pc := range ordered {
		outcomes[pc.Key()] = pc.Outcome
	}
	features := modelFeatures(result.Rows, outcomes)

	err := p.timed(ctx, "fit", func() error {
		params, report, err := gapmodel.Fit(features, p.modelCfg)
		if err != nil {
			return fmt.Errorf("baseline model fit: %w", err)
		}
		result.Params = params
		result.Report = report
		return nil
	})
	if err != nil {
		log.Error(ctx, "model fit failed", logger.Error(err))
		return nil, err
	}
	metrics.SetModelReport(result.Report.TrainAccuracy, result.Report.TestAccuracy, result.Report.TrainN)
	log.Info(ctx, "baseline model fitted",
		logger.Int("train_rows", result.Report.TrainN),
		logger.Int("test_rows", result.Report.TestN),
		logger.Float64("train_accuracy", result.Report.TrainAccuracy),
		logger.Float64("test_accuracy", result.Report.TestAccuracy),
	)
	if result.Report.BelowFloor {
		log.Warn(ctx, "test accuracy below configured floor; reconsider features",
			logger.Float64("test_accuracy", result.Report.TestAccuracy),
		)
	}

	// Execution gaps for every predictable play.
	err = p.timed(ctx, "gap", func() error {
		gaps, err := gapmodel.Gaps(features, result.Params)
		if err != nil {
			return fmt.Errorf("gap computation: %w", err)
		}
		byKey := make(map[model.PlayKey]model.ExecutionGapRecord, len(gaps))
		for _, g := range gaps {
			byKey[g.Key] = g
		}
		for i := range result.Rows {
			if g, ok := byKey[result.Rows[i].Key]; ok {
				gap := g
				result.Rows[i].Gap = &gap
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Ranking tables and the pressure breakdown.
	p.timed(ctx, "aggregate", func() error {
		result.Receivers = aggregate.Receivers(result.Rows, p.aggCfg)
		result.Defenders = aggregate.Defenders(result.Rows, p.aggCfg)
		result.Pressure = aggregate.PressureBins(result.Rows)
		return nil
	})
	metrics.SetRankedPlayers("receivers", len(result.Receivers))
	metrics.SetRankedPlayers("defenders", len(result.Defenders))

	result.Finished = time.Now()
	metrics.SetLastRun(len(result.Rows), result.Finished)

	if err := p.persist(ctx, result, outcomes); err != nil {
		return nil, err
	}

	p.logSummary(ctx, log, result)
	return result, nil
}

// extract loads each play sequentially (the store sorts lazily), then
// fans pure per-play computation out across the worker bound. Output
// order matches input order, so runs are deterministic regardless of
// scheduling.
func (p *Pipeline) extract(ctx context.Context, frames *track.Store, ordered []model.PlayContext) []extraction {
	type loaded struct {
		ctx     model.PlayContext
		samples []model.TrackingSample
	}
	plays := make([]loaded, 0, len(ordered))
	for _, pc := range ordered {
		samples, err := frames.Play(pc.Key())
		if err != nil {
			plays = append(plays, loaded{ctx: pc})
			continue
		}
		plays = append(plays, loaded{ctx: pc, samples: samples})
	}

	out := make([]extraction, len(plays))
	for i := range out {
		// Plays left unprocessed on early cancellation count as skipped.
		out[i] = extraction{skipped: true}
	}
	workers := p.workers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	indices := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				out[i] = p.extractOne(plays[i].ctx, plays[i].samples)
			}
		}()
	}
	for i := range plays {
		if ctx.Err() != nil {
			break
		}
		indices <- i
	}
	close(indices)
	wg.Wait()
	return out
}

func (p *Pipeline) extractOne(pc model.PlayContext, samples []model.TrackingSample) extraction {
	if len(samples) == 0 {
		return extraction{skipped: true}
	}
	window, err := track.PostRelease(pc.Key(), samples)
	if err != nil {
		return extraction{skipped: true}
	}
	roles, err := track.ResolveRoles(window, pc)
	if err != nil {
		return extraction{skipped: true}
	}
	if !p.filter.Keep(pc, roles) {
		return extraction{filtered: true}
	}
	pm, warnings := metric.Compute(window, roles, pc, p.metricCfg)
	return extraction{
		row: aggregate.PlayRow{
			Key:               pc.Key(),
			ReceiverID:        pc.TargetedReceiverID,
			NearestDefenderID: pm.NearestDefenderID,
			Coverage:          pc.Coverage,
			Metrics:           pm,
		},
		warnings: warnings,
	}
}

// modelFeatures builds the fit/predict rows from plays where every
// model feature is defined.
func modelFeatures(rows []aggregate.PlayRow, outcomes map[model.PlayKey]model.Outcome) []gapmodel.Features {
	features := make([]gapmodel.Features, 0, len(rows))
	for _, row := range rows {
		m := row.Metrics
		if m.SQI == nil || m.BAA == nil || m.RES == nil {
			continue
		}
		features = append(features, gapmodel.Features{
			Key:       row.Key,
			SQI:       *m.SQI,
			BAA:       *m.BAA,
			RES:       *m.RES,
			Coverage:  row.Coverage,
			Completed: outcomes[row.Key].Completed(),
		})
	}
	return features
}

func (p *Pipeline) persist(ctx context.Context, result *Result, outcomes map[model.PlayKey]model.Outcome) error {
	if p.store == nil && p.exporter == nil {
		return nil
	}
	playRows := make([]repository.PlayRow, len(result.Rows))
	for i, row := range result.Rows {
		pr := repository.PlayRow{
			Key:     row.Key,
			Outcome: outcomes[row.Key],
			Metrics: row.Metrics,
		}
		if row.Gap != nil {
			expected := row.Gap.Expected
			gap := row.Gap.Gap
			pr.Expected = &expected
			pr.Gap = &gap
		}
		playRows[i] = pr
	}

	return p.timed(ctx, "persist", func() error {
		if p.store != nil {
			run := repository.Run{
				ID:        result.RunID.String(),
				CreatedAt: result.Finished,
				Filter:    result.Filter,
				Plays:     playRows,
				Receivers: result.Receivers,
				Defenders: result.Defenders,
			}
			if err := p.store.SaveRun(ctx, run); err != nil {
				return err
			}
		}
		if p.exporter != nil {
			if err := p.exporter.WritePlays(playRows); err != nil {
				return err
			}
			if err := p.exporter.WriteRankings("receiver_rankings", result.Receivers); err != nil {
				return err
			}
			if err := p.exporter.WriteRankings("defender_rankings", result.Defenders); err != nil {
				return err
			}
		}
		return nil
	})
}

// timed runs a stage and records its wall-clock duration.
func (p *Pipeline) timed(_ context.Context, stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.ObserveStageDuration(stage, time.Since(start))
	return err
}

func countUndefined(m model.PlayMetrics) {
	for name, v := range map[string]*float64{
		"sqi":       m.SQI,
		"baa":       m.BAA,
		"res":       m.RES,
		"cti":       m.CTI,
		"s_throw":   m.SThrow,
		"s_arrival": m.SArrival,
		"vis":       m.VIS,
		"ceoe":      m.CEOE,
	} {
		if v == nil {
			metrics.RecordUndefinedMetric(name)
		}
	}
}

// logSummary reports the run's headline numbers, the analogue of the
// original analysis printout.
func (p *Pipeline) logSummary(ctx context.Context, log logger.Logger, result *Result) {
	for _, m := range []struct {
		name string
		get  func(model.PlayMetrics) *float64
	}{
		{"sqi", func(m model.PlayMetrics) *float64 { return m.SQI }},
		{"baa", func(m model.PlayMetrics) *float64 { return m.BAA }},
		{"res", func(m model.PlayMetrics) *float64 { return m.RES }},
		{"vis", func(m model.PlayMetrics) *float64 { return m.VIS }},
	} {
		var vals []float64
		for _, row := range result.Rows {
			if v := m.get(row.Metrics); v != nil {
				vals = append(vals, *v)
			}
		}
		if len(vals) == 0 {
			continue
		}
		log.Info(ctx, "metric summary",
			logger.String("metric", m.name),
			logger.Int("n", len(vals)),
			logger.Float64("mean", stat.Mean(vals, nil)),
			logger.Float64("std", stat.PopStdDev(vals, nil)),
			logger.Float64("min", floats.Min(vals)),
			logger.Float64("max", floats.Max(vals)),
		)
	}

	var best, worst *aggregate.PlayRow
	for i := range result.Rows {
		row := &result.Rows[i]
		if row.Gap == nil {
			continue
		}
		if best == nil || row.Gap.Gap > best.Gap.Gap {
			best = row
		}
		if worst == nil || row.Gap.Gap < worst.Gap.Gap {
			worst = row
		}
	}
	fields := []logger.Field{
		logger.String("run_id", result.RunID.String()),
		logger.Int("plays", len(result.Rows)),
		logger.Int("ranked_receivers", len(result.Receivers)),
		logger.Int("ranked_defenders", len(result.Defenders)),
	}
	if best != nil {
		fields = append(fields,
			logger.String("top_overperformance_play", best.Key.String()),
			logger.Float64("top_overperformance_gap", best.Gap.Gap),
		)
	}
	if worst != nil {
		fields = append(fields,
			logger.String("top_underperformance_play", worst.Key.String()),
			logger.Float64("top_underperformance_gap", worst.Gap.Gap),
		)
	}
	log.Info(ctx, "run complete", fields...)
}
