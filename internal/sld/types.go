package sld

import (
	"fmt"
	"math"
)

// MinPoints is the smallest number of points a line can be fitted through.
const MinPoints = 2

// Curve is an ordered set of (D2O concentration, SLD) points for one
// component. The engine never modifies X or Y.
type Curve struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// Validate checks that X and Y have matching length of at least MinPoints
// and hold only finite values.
func (c Curve) Validate() error {
	return validatePoints(c.X, c.Y)
}

// Fit returns the least-squares line through the curve's points.
func (c Curve) Fit() (LinearFit, error) {
	return Fit(c.X, c.Y)
}

// LinearFit describes SLD = Slope*concentration + Intercept.
type LinearFit struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

// Eval returns the fitted SLD at concentration x.
func (f LinearFit) Eval(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// Sample is a measured sample: SLD values Y with one-sigma uncertainties Err
// at D2O concentrations X.
type Sample struct {
	X   []float64 `json:"x"`
	Y   []float64 `json:"y"`
	Err []float64 `json:"err"`
}

// Validate checks that X, Y and Err are parallel sequences of at least
// MinPoints finite values and that every uncertainty is non-negative.
func (s Sample) Validate() error {
	if err := validatePoints(s.X, s.Y); err != nil {
		return err
	}
	if len(s.Err) != len(s.Y) {
		return fmt.Errorf("%w: %d uncertainties for %d SLD values", ErrInvalidInput, len(s.Err), len(s.Y))
	}
	for i, e := range s.Err {
		if math.IsNaN(e) || math.IsInf(e, 0) || e < 0 {
			return fmt.Errorf("%w: uncertainty %d is %v, want finite and non-negative", ErrInvalidInput, i, e)
		}
	}
	return nil
}

// Curve returns the measured points without their uncertainties.
func (s Sample) Curve() Curve {
	return Curve{X: s.X, Y: s.Y}
}

// Fractions holds volume fractions in percent. Values are not clamped to
// [0, 100].
type Fractions struct {
	Solvent float64 `json:"solvent"`
	Protein float64 `json:"protein"`
	Lipid   float64 `json:"lipid"`
}

// Sum returns Solvent + Protein + Lipid.
func (f Fractions) Sum() float64 {
	return f.Solvent + f.Protein + f.Lipid
}

func (f Fractions) finite() bool {
	for _, v := range [...]float64{f.Solvent, f.Protein, f.Lipid} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Stat is a mean and population standard deviation.
type Stat struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// FractionEstimate summarises a bootstrap run per component.
type FractionEstimate struct {
	Solvent Stat `json:"solvent"`
	Protein Stat `json:"protein"`
	Lipid   Stat `json:"lipid"`

	// Distribution is only populated when Request.KeepSamples is set.
	Distribution *Distribution `json:"-"`
}

// Means returns the per-component means as a Fractions value.
func (e FractionEstimate) Means() Fractions {
	return Fractions{Solvent: e.Solvent.Mean, Protein: e.Protein.Mean, Lipid: e.Lipid.Mean}
}

// Distribution holds the per-iteration fractions, one slice per component,
// in iteration order.
type Distribution struct {
	Solvent []float64 `json:"solvent"`
	Protein []float64 `json:"protein"`
	Lipid   []float64 `json:"lipid"`
}

// Len returns the number of iterations recorded.
func (d *Distribution) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Solvent)
}

func newDistribution(n int) *Distribution {
	return &Distribution{
		Solvent: make([]float64, n),
		Protein: make([]float64, n),
		Lipid:   make([]float64, n),
	}
}

func (d *Distribution) set(i int, f Fractions) {
	d.Solvent[i] = f.Solvent
	d.Protein[i] = f.Protein
	d.Lipid[i] = f.Lipid
}

func validatePoints(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("%w: x has %d values, y has %d", ErrInvalidInput, len(xs), len(ys))
	}
	if len(xs) < MinPoints {
		return fmt.Errorf("%w: need at least %d points, got %d", ErrInvalidInput, MinPoints, len(xs))
	}
	for i := range xs {
		if !isFinite(xs[i]) || !isFinite(ys[i]) {
			return fmt.Errorf("%w: point %d (%v, %v) is not finite", ErrInvalidInput, i, xs[i], ys[i])
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
