package sld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultReferences(t *testing.T) {
	refs := DefaultReferences()
	require.NoError(t, refs.Validate())

	assert.Equal(t, []float64{0, 38, 100}, refs.Solvent.X)
	assert.Equal(t, []float64{-0.56, 2.07, 6.35}, refs.Solvent.Y)
	assert.Equal(t, []float64{1.68, 2.3678, 3.49}, refs.Protein.Y)
	assert.Equal(t, []float64{-0.39, -0.39, -0.39}, refs.Lipid.Y)

	// Each call returns independent slices.
	refs.Solvent.X[0] = 99
	assert.Equal(t, 0.0, DefaultReferences().Solvent.X[0])
	assert.Equal(t, 0.0, refs.Protein.X[0])
}

func TestReferences_ErrorsNameComponent(t *testing.T) {
	refs := DefaultReferences()
	refs.Protein.Y = refs.Protein.Y[:1]

	err := refs.Validate()
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "protein reference")

	_, err = refs.Fit()
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "protein reference")
}

func TestSample_Validate(t *testing.T) {
	s := Sample{X: []float64{0, 100}, Y: []float64{1, 2}, Err: []float64{0, 0.1}}
	require.NoError(t, s.Validate())
	assert.Equal(t, Curve{X: s.X, Y: s.Y}, s.Curve())

	s.Err = []float64{0.1}
	assert.ErrorIs(t, s.Validate(), ErrInvalidInput)
}

func TestFractions_Sum(t *testing.T) {
	f := Fractions{Solvent: 65, Protein: 25, Lipid: 10}
	assert.Equal(t, 100.0, f.Sum())
	assert.Equal(t, f, FractionEstimate{
		Solvent: Stat{Mean: 65}, Protein: Stat{Mean: 25}, Lipid: Stat{Mean: 10},
	}.Means())
}
