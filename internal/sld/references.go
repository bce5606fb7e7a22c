package sld

import "fmt"

// References are the calibration curves of the three pure components.
type References struct {
	Solvent Curve `json:"solvent"`
	Protein Curve `json:"protein"`
	Lipid   Curve `json:"lipid"`
}

// DefaultReferences returns the conventional calibration measured at 0%,
// 38% and 100% D2O. SLD values are in units of 1e-6 Å^-2.
func DefaultReferences() References {
	x := func() []float64 { return []float64{0, 38, 100} }
	return References{
		Solvent: Curve{X: x(), Y: []float64{-0.56, 2.07, 6.35}},
		Protein: Curve{X: x(), Y: []float64{1.68, 2.3678, 3.49}},
		Lipid:   Curve{X: x(), Y: []float64{-0.39, -0.39, -0.39}},
	}
}

// Validate checks every curve.
func (r References) Validate() error {
	for _, c := range r.named() {
		if err := c.curve.Validate(); err != nil {
			return fmt.Errorf("%s reference: %w", c.name, err)
		}
	}
	return nil
}

// Fit fits the three reference curves.
func (r References) Fit() (ReferenceFits, error) {
	var fits [3]LinearFit
	for i, c := range r.named() {
		f, err := c.curve.Fit()
		if err != nil {
			return ReferenceFits{}, fmt.Errorf("%s reference: %w", c.name, err)
		}
		fits[i] = f
	}
	return ReferenceFits{Solvent: fits[0], Protein: fits[1], Lipid: fits[2]}, nil
}

type namedCurve struct {
	name  string
	curve Curve
}

func (r References) named() [3]namedCurve {
	return [3]namedCurve{
		{"solvent", r.Solvent},
		{"protein", r.Protein},
		{"lipid", r.Lipid},
	}
}
