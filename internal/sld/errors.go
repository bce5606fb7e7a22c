package sld

import "errors"

var (
	// ErrInvalidInput reports mismatched, too short or non-finite input
	// sequences. It is detected before any computation.
	ErrInvalidInput = errors.New("sld: invalid input")

	// ErrDegenerateFit reports a least-squares fit that cannot be computed,
	// e.g. when every x value is identical.
	ErrDegenerateFit = errors.New("sld: degenerate fit")

	// ErrSingularSystem reports a reference system that is singular or too
	// ill-conditioned to separate the three components.
	ErrSingularSystem = errors.New("sld: singular reference system")

	// ErrImplausibleResult reports a bootstrap mean fraction outside
	// [0, 100] percent.
	ErrImplausibleResult = errors.New("sld: implausible volume fractions")
)
