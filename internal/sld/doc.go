// Package sld estimates the volume composition of a layered sample from
// scattering length density (SLD) measurements taken at several D2O
// concentrations.
//
// The engine has three stages:
//
//   - Fit: ordinary least squares line through (concentration, SLD) points.
//   - SolveFractions: expresses a sample's fitted line as a linear
//     combination of the solvent, protein and lipid reference lines. The
//     3x3 system carries a unit-sum row so the three fractions add up to
//     100%.
//   - Estimate: Monte Carlo resampling of the sample SLD values within
//     their error bars, re-fitting and re-solving each draw, then reducing
//     the per-draw fractions to a mean and standard deviation per
//     component.
//
// All inputs are passed explicitly. Nothing in this package holds global
// state, so analyses with different reference calibrations can run
// concurrently.
package sld
