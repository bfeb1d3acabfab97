// Package gapmodel fits the baseline completion model and derives the
// execution gap residual. The model is a logistic regression over
// {SQI, BAA, RES, coverage one-hot}; its fitted parameters live in an
// immutable Params value passed explicitly into every prediction call,
// never in ambient process state.
package gapmodel

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/okian/voidframe/internal/domain/model"
	"gonum.org/v1/gonum/mat"
)

// Fit defaults.
const (
	DefaultSeed          = 42
	DefaultTestFraction  = 0.2
	DefaultMaxIterations = 50
	DefaultTolerance     = 1e-8
	DefaultAccuracyFloor = 0.65

	// minFitRows guards against degenerate fits on tiny subsets.
	minFitRows = 10

	// ridge keeps the Newton system positive definite when features
	// are collinear or a coverage level is absent from the subset.
	ridge = 1e-6
)

// Features is one play's model input. Rows reaching Fit or Gaps must
// have every feature defined; plays with any nil metric are excluded
// upstream, not imputed.
type Features struct {
	Key       model.PlayKey
	SQI       float64
	BAA       float64
	RES       float64
	Coverage  model.CoverageClass
	Completed bool
}

// Config controls the fit.
type Config struct {
	Seed          int64
	TestFraction  float64
	MaxIterations int
	Tolerance     float64
	AccuracyFloor float64
}

// DefaultConfig returns the reproducible fit defaults.
func DefaultConfig() Config {
	return Config{
		Seed:          DefaultSeed,
		TestFraction:  DefaultTestFraction,
		MaxIterations: DefaultMaxIterations,
		Tolerance:     DefaultTolerance,
		AccuracyFloor: DefaultAccuracyFloor,
	}
}

func (c Config) normalized() Config {
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		c.TestFraction = DefaultTestFraction
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.Tolerance <= 0 {
		c.Tolerance = DefaultTolerance
	}
	if c.AccuracyFloor <= 0 {
		c.AccuracyFloor = DefaultAccuracyFloor
	}
	return c
}

// Params holds fitted coefficients. The zero value is unfitted and
// refuses to predict.
type Params struct {
	coef []float64 // intercept, sqi, baa, res, man, zone, press
}

// Fitted reports whether the params came from a successful fit.
func (p Params) Fitted() bool {
	return len(p.coef) > 0
}

// Coefficients returns a copy of the fitted coefficient vector,
// intercept first.
func (p Params) Coefficients() []float64 {
	out := make([]float64, len(p.coef))
	copy(out, p.coef)
	return out
}

// PredictExpected returns the completion probability in [0,1] for one
// play's features.
func (p Params) PredictExpected(f Features) (float64, error) {
	if !p.Fitted() {
		return 0, ErrNotFitted
	}
	row := designRow(f)
	eta := 0.0
	for i, x := range row {
		eta += p.coef[i] * x
	}
	return sigmoid(eta), nil
}

// Report summarizes a fit for the surrounding analysis. BelowFloor is
// a signal to reconsider features, not an error.
type Report struct {
	TrainN        int
	TestN         int
	TrainAccuracy float64
	TestAccuracy  float64
	BelowFloor    bool
}

func designRow(f Features) []float64 {
	row := []float64{1, f.SQI, f.BAA, f.RES, 0, 0, 0}
	switch f.Coverage {
	case model.CoverageMan:
		row[4] = 1
	case model.CoverageZone:
		row[5] = 1
	case model.CoveragePress:
		row[6] = 1
	}
	return row
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Fit trains the logistic baseline on a seeded 80/20 split and reports
// accuracy on both partitions. Degenerate input (too few rows, a
// single-class target, a singular Newton system) fails the fit.
func Fit(rows []Features, cfg Config) (Params, Report, error) {
	cfg = cfg.normalized()
	if len(rows) < minFitRows {
		return Params{}, Report{}, fmt.Errorf("%w: %d rows, need %d", ErrTooFewRows, len(rows), minFitRows)
	}

	// Seeded shuffle, then split. Same seed and rows, same partitions.
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

	testN := int(math.Round(cfg.TestFraction * float64(len(rows))))
	if testN < 1 {
		testN = 1
	}
	trainIdx, testIdx := idx[testN:], idx[:testN]

	train := make([]Features, len(trainIdx))
	for i, j := range trainIdx {
		train[i] = rows[j]
	}
	test := make([]Features, len(testIdx))
	for i, j := range testIdx {
		test[i] = rows[j]
	}

	completions := 0
	for _, r := range train {
		if r.Completed {
			completions++
		}
	}
	if completions == 0 || completions == len(train) {
		return Params{}, Report{}, fmt.Errorf("%w: %d of %d train rows complete", ErrNoVariance, completions, len(train))
	}

	coef, err := irls(train, cfg.MaxIterations, cfg.Tolerance)
	if err != nil {
		return Params{}, Report{}, err
	}
	params := Params{coef: coef}

	report := Report{
		TrainN:        len(train),
		TestN:         len(test),
		TrainAccuracy: accuracy(params, train),
		TestAccuracy:  accuracy(params, test),
	}
	report.BelowFloor = report.TestAccuracy < cfg.AccuracyFloor
	return params, report, nil
}

// irls runs iteratively reweighted least squares (Newton-Raphson) on
// the logistic log-likelihood with a small ridge term.
func irls(rows []Features, maxIter int, tol float64) ([]float64, error) {
	n := len(rows)
	p := len(designRow(rows[0]))

	x := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	for i, r := range rows {
		x.SetRow(i, designRow(r))
		if r.Completed {
			y[i] = 1
		}
	}

	beta := make([]float64, p)
	eta := make([]float64, n)
	mu := make([]float64, n)
	wx := mat.NewDense(n, p, nil)

	for iter := 0; iter < maxIter; iter++ {
		for i := 0; i < n; i++ {
			eta[i] = 0
			for j := 0; j < p; j++ {
				eta[i] += x.At(i, j) * beta[j]
			}
			mu[i] = sigmoid(eta[i])
		}

		// Gradient: X^T (y - mu) - ridge * beta.
		grad := make([]float64, p)
		for j := 0; j < p; j++ {
			for i := 0; i < n; i++ {
				grad[j] += x.At(i, j) * (y[i] - mu[i])
			}
			grad[j] -= ridge * beta[j]
		}

		// Hessian: X^T W X + ridge * I, with W = diag(mu(1-mu)).
		for i := 0; i < n; i++ {
			w := mu[i] * (1 - mu[i])
			for j := 0; j < p; j++ {
				wx.Set(i, j, w*x.At(i, j))
			}
		}
		var hessian mat.Dense
		hessian.Mul(x.T(), wx)
		for j := 0; j < p; j++ {
			hessian.Set(j, j, hessian.At(j, j)+ridge)
		}

		sym := symFromDense(&hessian)
		var chol mat.Cholesky
		if ok := chol.Factorize(sym); !ok {
			return nil, ErrSingularFit
		}
		delta := mat.NewVecDense(p, nil)
		if err := chol.SolveVecTo(delta, mat.NewVecDense(p, grad)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSingularFit, err)
		}

		maxStep := 0.0
		for j := 0; j < p; j++ {
			beta[j] += delta.AtVec(j)
			if s := math.Abs(delta.AtVec(j)); s > maxStep {
				maxStep = s
			}
		}
		if maxStep < tol {
			break
		}
	}
	return beta, nil
}

// symFromDense copies a (numerically symmetric) dense matrix into the
// symmetric representation Cholesky requires.
func symFromDense(d *mat.Dense) *mat.SymDense {
	n, _ := d.Dims()
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, d.At(i, j))
		}
	}
	return s
}

// accuracy is the fraction of rows where the 0.5-thresholded prediction
// matches the recorded outcome.
func accuracy(p Params, rows []Features) float64 {
	if len(rows) == 0 {
		return 0
	}
	correct := 0
	for _, r := range rows {
		prob, err := p.PredictExpected(r)
		if err != nil {
			return 0
		}
		if (prob >= 0.5) == r.Completed {
			correct++
		}
	}
	return float64(correct) / float64(len(rows))
}

// Gaps computes the execution gap for every predictable row:
// actual outcome minus model-expected completion probability.
func Gaps(rows []Features, p Params) ([]model.ExecutionGapRecord, error) {
	out := make([]model.ExecutionGapRecord, 0, len(rows))
	for _, r := range rows {
		expected, err := p.PredictExpected(r)
		if err != nil {
			return nil, err
		}
		actual := 0.0
		if r.Completed {
			actual = 1
		}
		out = append(out, model.ExecutionGapRecord{
			Key:      r.Key,
			Expected: expected,
			Actual:   actual,
			Gap:      actual - expected,
		})
	}
	return out, nil
}
