package sld

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/banshee-data/sldvol/internal/monitoring"
)

const (
	// DefaultIterations is used when Request.Iterations is zero.
	DefaultIterations = 10000

	// UncertaintyDivisor scales each reported SLD uncertainty down before it
	// is used as the standard deviation of a draw. The value 3 matches the
	// published analyses and must not change.
	UncertaintyDivisor = 3.0

	// cancelCheckInterval is how many iterations a worker runs between
	// context checks.
	cancelCheckInterval = 1024
)

// Request is one bootstrap analysis. The zero values of Iterations and
// Workers select DefaultIterations and a single sequential worker.
type Request struct {
	Sample     Sample     `json:"sample"`
	References References `json:"references"`
	Iterations int        `json:"iterations"`

	// Seed fixes the random draws. A given (Seed, Workers) pair always
	// produces the same result.
	Seed uint64 `json:"seed"`

	// Workers splits the iterations into contiguous blocks, each drawn from
	// its own source. Values below 2 run sequentially.
	Workers int `json:"workers"`

	// KeepSamples retains every per-iteration triple in
	// FractionEstimate.Distribution.
	KeepSamples bool `json:"keep_samples"`
}

// Validate checks the sample, the reference curves and the iteration count.
func (r Request) Validate() error {
	if r.Iterations < 0 {
		return fmt.Errorf("%w: iterations must be non-negative, got %d", ErrInvalidInput, r.Iterations)
	}
	if err := r.Sample.Validate(); err != nil {
		return fmt.Errorf("sample: %w", err)
	}
	return r.References.Validate()
}

// Fits are the lines fitted to the unperturbed input.
type Fits struct {
	Sample     LinearFit     `json:"sample"`
	References ReferenceFits `json:"references"`
}

// Result is the outcome of Estimate.
type Result struct {
	RunID      string           `json:"run_id"`
	Iterations int              `json:"iterations"`
	Workers    int              `json:"workers"`
	Seed       uint64           `json:"seed"`
	Fits       Fits             `json:"fits"`
	Point      Fractions        `json:"point"`
	Estimate   FractionEstimate `json:"estimate"`
	Elapsed    time.Duration    `json:"elapsed_ns"`
}

// Estimate runs the bootstrap described by req.
//
// The reference curves are fitted once. Each iteration then draws every
// sample SLD from Normal(Y[i], Err[i]/UncertaintyDivisor), fits the drawn
// points and solves for the fractions. Per-iteration fractions are not
// clamped or discarded. Any failing iteration aborts the whole run.
//
// Once every iteration has completed, ErrImplausibleResult is returned if
// a mean fraction lies outside [0, 100].
func Estimate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	iterations := req.Iterations
	if iterations == 0 {
		iterations = DefaultIterations
	}
	workers := req.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > iterations {
		workers = iterations
	}

	refFits, err := req.References.Fit()
	if err != nil {
		return nil, err
	}
	solver, err := NewSolver(refFits)
	if err != nil {
		return nil, err
	}
	sampleFit, err := req.Sample.Curve().Fit()
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	point, err := solver.Solve(sampleFit)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	monitoring.Logf("[sld] run %s: %d iterations, %d worker(s), seed=%d", runID, iterations, workers, req.Seed)

	var dist *Distribution
	if req.KeepSamples {
		dist = newDistribution(iterations)
	}
	partials := make([]fractionStats, workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo, hi := blockRange(iterations, workers, w)
		src := rand.NewPCG(req.Seed, uint64(w))
		g.Go(func() error {
			return runBlock(gctx, req.Sample, refFits, src, lo, hi, dist, &partials[w])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var est FractionEstimate
	if dist != nil {
		est = summarize(dist)
	} else {
		var total fractionStats
		for _, p := range partials {
			total.merge(p)
		}
		est = FractionEstimate{
			Solvent: total.solvent.stat(),
			Protein: total.protein.stat(),
			Lipid:   total.lipid.stat(),
		}
	}

	if m := est.Means(); !plausible(m) {
		return nil, fmt.Errorf("%w: solvent=%.4f%% protein=%.4f%% lipid=%.4f%%, check the experimental data",
			ErrImplausibleResult, m.Solvent, m.Protein, m.Lipid)
	}

	res := &Result{
		RunID:      runID,
		Iterations: iterations,
		Workers:    workers,
		Seed:       req.Seed,
		Fits:       Fits{Sample: sampleFit, References: refFits},
		Point:      point,
		Estimate:   est,
		Elapsed:    time.Since(start),
	}
	monitoring.Logf("[sld] run %s finished in %s: solvent=%.2f±%.2f protein=%.2f±%.2f lipid=%.2f±%.2f",
		runID, res.Elapsed,
		est.Solvent.Mean, est.Solvent.Std,
		est.Protein.Mean, est.Protein.Std,
		est.Lipid.Mean, est.Lipid.Std)
	return res, nil
}

// runBlock performs iterations [lo, hi). Results go to dist when it is
// non-nil and to acc otherwise.
func runBlock(ctx context.Context, s Sample, refs ReferenceFits, src rand.Source, lo, hi int, dist *Distribution, acc *fractionStats) error {
	solver, err := NewSolver(refs)
	if err != nil {
		return err
	}

	draws := make([]distuv.Normal, len(s.Y))
	for i := range draws {
		draws[i] = distuv.Normal{Mu: s.Y[i], Sigma: s.Err[i] / UncertaintyDivisor, Src: src}
	}
	ys := make([]float64, len(s.Y))

	for it := lo; it < hi; it++ {
		if (it-lo)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for i := range draws {
			ys[i] = draws[i].Rand()
		}
		fit, err := Fit(s.X, ys)
		if err != nil {
			return fmt.Errorf("iteration %d: %w", it, err)
		}
		f, err := solver.Solve(fit)
		if err != nil {
			return fmt.Errorf("iteration %d: %w", it, err)
		}
		if dist != nil {
			dist.set(it, f)
		} else {
			acc.add(f)
		}
	}
	return nil
}

// blockRange returns the half-open iteration range of worker w when n
// iterations are split over k workers. Earlier workers take the remainder.
func blockRange(n, k, w int) (lo, hi int) {
	size, rem := n/k, n%k
	lo = w*size + min(w, rem)
	hi = lo + size
	if w < rem {
		hi++
	}
	return lo, hi
}

func summarize(d *Distribution) FractionEstimate {
	var est FractionEstimate
	est.Solvent.Mean, est.Solvent.Std = stat.PopMeanStdDev(d.Solvent, nil)
	est.Protein.Mean, est.Protein.Std = stat.PopMeanStdDev(d.Protein, nil)
	est.Lipid.Mean, est.Lipid.Std = stat.PopMeanStdDev(d.Lipid, nil)
	est.Distribution = d
	return est
}

func plausible(f Fractions) bool {
	for _, v := range [...]float64{f.Solvent, f.Protein, f.Lipid} {
		if v < 0 || v > 100 {
			return false
		}
	}
	return true
}
