package sld

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaxConditionNumber is the largest condition number of the reference
// matrix accepted by NewSolver. Above it the three reference lines are too
// close to affinely dependent to separate.
const MaxConditionNumber = 1e12

// ReferenceFits are the fitted lines of the three reference components.
type ReferenceFits struct {
	Solvent LinearFit `json:"solvent"`
	Protein LinearFit `json:"protein"`
	Lipid   LinearFit `json:"lipid"`
}

// Solver converts sample fits into volume fractions against a fixed set of
// reference fits. The reference matrix
//
//	| solvent.slope      protein.slope      lipid.slope     |
//	| solvent.intercept  protein.intercept  lipid.intercept |
//	| 1                  1                  1               |
//
// is factorised once. A Solver is not safe for concurrent use.
type Solver struct {
	refs ReferenceFits
	lu   mat.LU
	b    *mat.VecDense
	v    mat.VecDense
}

// NewSolver factorises the reference matrix. It returns ErrSingularSystem
// when the matrix is singular or its condition number exceeds
// MaxConditionNumber.
func NewSolver(refs ReferenceFits) (*Solver, error) {
	m := mat.NewDense(3, 3, []float64{
		refs.Solvent.Slope, refs.Protein.Slope, refs.Lipid.Slope,
		refs.Solvent.Intercept, refs.Protein.Intercept, refs.Lipid.Intercept,
		1, 1, 1,
	})

	s := &Solver{refs: refs, b: mat.NewVecDense(3, nil)}
	s.lu.Factorize(m)
	if c := s.lu.Cond(); math.IsNaN(c) || math.IsInf(c, 0) || c > MaxConditionNumber {
		return nil, fmt.Errorf("%w: condition number %g exceeds %g", ErrSingularSystem, c, MaxConditionNumber)
	}
	return s, nil
}

// References returns the reference fits the solver was built from.
func (s *Solver) References() ReferenceFits {
	return s.refs
}

// Solve returns the fractions v (in percent) satisfying M*v = b where
// b = [sample.Slope, sample.Intercept, 1]. A non-finite sample fit is
// ErrInvalidInput.
func (s *Solver) Solve(sample LinearFit) (Fractions, error) {
	if !isFinite(sample.Slope) || !isFinite(sample.Intercept) {
		return Fractions{}, fmt.Errorf("%w: sample fit slope=%v intercept=%v is not finite", ErrInvalidInput, sample.Slope, sample.Intercept)
	}
	s.b.SetVec(0, sample.Slope)
	s.b.SetVec(1, sample.Intercept)
	s.b.SetVec(2, 1)

	if err := s.lu.SolveVecTo(&s.v, false, s.b); err != nil {
		return Fractions{}, fmt.Errorf("%w: %v", ErrSingularSystem, err)
	}

	f := Fractions{
		Solvent: 100 * s.v.AtVec(0),
		Protein: 100 * s.v.AtVec(1),
		Lipid:   100 * s.v.AtVec(2),
	}
	if !f.finite() {
		return Fractions{}, fmt.Errorf("%w: non-finite solution %+v", ErrSingularSystem, f)
	}
	return f, nil
}

// SolveFractions is the one-shot form of NewSolver followed by Solve.
func SolveFractions(sample, solvent, protein, lipid LinearFit) (Fractions, error) {
	s, err := NewSolver(ReferenceFits{Solvent: solvent, Protein: protein, Lipid: lipid})
	if err != nil {
		return Fractions{}, err
	}
	return s.Solve(sample)
}
