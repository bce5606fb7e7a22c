package sld

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Fit performs an ordinary least-squares fit of a first-degree polynomial
// through the points (xs[i], ys[i]).
//
// It returns ErrInvalidInput when the lengths differ, fewer than MinPoints
// are given or a value is not finite. When every x is identical the slope is
// undefined and ErrDegenerateFit is returned instead of an infinite slope.
func Fit(xs, ys []float64) (LinearFit, error) {
	if err := validatePoints(xs, ys); err != nil {
		return LinearFit{}, err
	}
	if floats.Min(xs) == floats.Max(xs) {
		return LinearFit{}, fmt.Errorf("%w: all %d x values equal %v", ErrDegenerateFit, len(xs), xs[0])
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	if !isFinite(slope) || !isFinite(intercept) {
		return LinearFit{}, fmt.Errorf("%w: slope=%v intercept=%v", ErrDegenerateFit, slope, intercept)
	}
	return LinearFit{Slope: slope, Intercept: intercept}, nil
}
