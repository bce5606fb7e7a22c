package sld

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func defaultReferenceFits(t *testing.T) ReferenceFits {
	t.Helper()
	fits, err := DefaultReferences().Fit()
	require.NoError(t, err)
	return fits
}

func TestSolveFractions_ReferenceIdentity(t *testing.T) {
	t.Parallel()
	refs := defaultReferenceFits(t)

	cases := []struct {
		name   string
		sample LinearFit
		want   Fractions
	}{
		{"solvent", refs.Solvent, Fractions{Solvent: 100}},
		{"protein", refs.Protein, Fractions{Protein: 100}},
		{"lipid", refs.Lipid, Fractions{Lipid: 100}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := SolveFractions(tc.sample, refs.Solvent, refs.Protein, refs.Lipid)
			require.NoError(t, err)
			assert.InDelta(t, tc.want.Solvent, got.Solvent, 1e-9)
			assert.InDelta(t, tc.want.Protein, got.Protein, 1e-9)
			assert.InDelta(t, tc.want.Lipid, got.Lipid, 1e-9)
		})
	}
}

func TestSolveFractions_RandomReferencesIdentity(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 200; i++ {
		refs := ReferenceFits{
			Solvent: LinearFit{Slope: rng.Float64() - 0.5, Intercept: 4*rng.Float64() - 2},
			Protein: LinearFit{Slope: rng.Float64() - 0.5, Intercept: 4*rng.Float64() - 2},
			Lipid:   LinearFit{Slope: rng.Float64() - 0.5, Intercept: 4*rng.Float64() - 2},
		}
		if math.Abs(referenceDet(refs)) < 0.05 {
			continue
		}
		s, err := NewSolver(refs)
		require.NoError(t, err)

		for j, ref := range []LinearFit{refs.Solvent, refs.Protein, refs.Lipid} {
			got, err := s.Solve(ref)
			require.NoError(t, err)
			want := [3]float64{}
			want[j] = 100
			assert.InDelta(t, want[0], got.Solvent, 1e-6, "draw %d ref %d", i, j)
			assert.InDelta(t, want[1], got.Protein, 1e-6, "draw %d ref %d", i, j)
			assert.InDelta(t, want[2], got.Lipid, 1e-6, "draw %d ref %d", i, j)
		}
	}
}

func referenceDet(r ReferenceFits) float64 {
	return mat.Det(mat.NewDense(3, 3, []float64{
		r.Solvent.Slope, r.Protein.Slope, r.Lipid.Slope,
		r.Solvent.Intercept, r.Protein.Intercept, r.Lipid.Intercept,
		1, 1, 1,
	}))
}

func TestSolveFractions_SumsToHundred(t *testing.T) {
	t.Parallel()
	refs := defaultReferenceFits(t)
	s, err := NewSolver(refs)
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 1000; i++ {
		sample := LinearFit{Slope: 0.2*rng.Float64() - 0.1, Intercept: 10*rng.Float64() - 5}
		got, err := s.Solve(sample)
		require.NoError(t, err)
		assert.InEpsilon(t, 100.0, got.Sum(), 1e-6, "sample %+v gave %+v", sample, got)
	}
}

func TestSolveFractions_ReferenceScenario(t *testing.T) {
	t.Parallel()
	refs := defaultReferenceFits(t)

	sampleFit, err := Fit([]float64{0, 38, 100}, []float64{0.017, 1.8985, 4.961})
	require.NoError(t, err)

	got, err := SolveFractions(sampleFit, refs.Solvent, refs.Protein, refs.Lipid)
	require.NoError(t, err)
	assert.InDelta(t, 65.0, got.Solvent, 0.01)
	assert.InDelta(t, 25.0, got.Protein, 0.01)
	assert.InDelta(t, 10.0, got.Lipid, 0.01)
}

func TestSolveFractions_Unclamped(t *testing.T) {
	t.Parallel()
	refs := defaultReferenceFits(t)

	// A line steeper than pure solvent lies outside the reference triangle.
	got, err := SolveFractions(LinearFit{Slope: 0.1, Intercept: -0.56}, refs.Solvent, refs.Protein, refs.Lipid)
	require.NoError(t, err)
	assert.Greater(t, got.Solvent, 100.0)
	assert.InEpsilon(t, 100.0, got.Sum(), 1e-6)
}

func TestNewSolver_Singular(t *testing.T) {
	t.Parallel()
	refs := defaultReferenceFits(t)

	cases := []struct {
		name string
		refs ReferenceFits
	}{
		{"lipid_equals_protein", ReferenceFits{Solvent: refs.Solvent, Protein: refs.Protein, Lipid: refs.Protein}},
		{"solvent_equals_lipid", ReferenceFits{Solvent: refs.Lipid, Protein: refs.Protein, Lipid: refs.Lipid}},
		{"collinear", ReferenceFits{
			Solvent: LinearFit{Slope: 0, Intercept: 0},
			Protein: LinearFit{Slope: 1, Intercept: 1},
			Lipid:   LinearFit{Slope: 2, Intercept: 2},
		}},
		{"all_zero", ReferenceFits{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewSolver(tc.refs)
			assert.ErrorIs(t, err, ErrSingularSystem)

			_, err = SolveFractions(LinearFit{Slope: 0.05, Intercept: 0.1}, tc.refs.Solvent, tc.refs.Protein, tc.refs.Lipid)
			assert.ErrorIs(t, err, ErrSingularSystem)
		})
	}
}

func TestSolver_NonFiniteSample(t *testing.T) {
	t.Parallel()
	s, err := NewSolver(defaultReferenceFits(t))
	require.NoError(t, err)

	cases := []struct {
		name   string
		sample LinearFit
	}{
		{"inf_slope", LinearFit{Slope: math.Inf(1)}},
		{"neg_inf_intercept", LinearFit{Slope: 0.05, Intercept: math.Inf(-1)}},
		{"nan_slope", LinearFit{Slope: math.NaN(), Intercept: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Solve(tc.sample)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.NotErrorIs(t, err, ErrSingularSystem)

			_, err = SolveFractions(tc.sample, s.refs.Solvent, s.refs.Protein, s.refs.Lipid)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSolver_References(t *testing.T) {
	refs := defaultReferenceFits(t)
	s, err := NewSolver(refs)
	require.NoError(t, err)
	assert.Equal(t, refs, s.References())
}
