package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/sldvol/internal/sld"
)

func TestDefaultAnalysisConfig(t *testing.T) {
	cfg := DefaultAnalysisConfig()

	if cfg.Iterations == nil || *cfg.Iterations != 10000 {
		t.Errorf("Expected Iterations 10000, got %v", cfg.Iterations)
	}
	if cfg.Seed == nil || *cfg.Seed != 0 {
		t.Errorf("Expected Seed 0, got %v", cfg.Seed)
	}
	if cfg.Workers == nil || *cfg.Workers != 1 {
		t.Errorf("Expected Workers 1, got %v", cfg.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if diff := cmp.Diff(sld.DefaultReferences(), cfg.GetReferences()); diff != "" {
		t.Errorf("GetReferences mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyAnalysisConfigGetters(t *testing.T) {
	cfg := EmptyAnalysisConfig()

	if cfg.GetIterations() != sld.DefaultIterations {
		t.Errorf("GetIterations() = %d, want %d", cfg.GetIterations(), sld.DefaultIterations)
	}
	if cfg.GetSeed() != 0 {
		t.Errorf("GetSeed() = %d, want 0", cfg.GetSeed())
	}
	if cfg.GetWorkers() != 1 {
		t.Errorf("GetWorkers() = %d, want 1", cfg.GetWorkers())
	}
	if diff := cmp.Diff(sld.DefaultReferences(), cfg.GetReferences()); diff != "" {
		t.Errorf("GetReferences mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAnalysisConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "analysis.json")

	// Only the lipid curve is overridden.
	testJSON := `{
  "iterations": 500,
  "seed": 17,
  "workers": 4,
  "references": {
    "lipid": { "x": [0, 100], "y": [-0.4, -0.35] }
  }
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadAnalysisConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetIterations() != 500 {
		t.Errorf("GetIterations() = %d, want 500", cfg.GetIterations())
	}
	if cfg.GetSeed() != 17 {
		t.Errorf("GetSeed() = %d, want 17", cfg.GetSeed())
	}
	if cfg.GetWorkers() != 4 {
		t.Errorf("GetWorkers() = %d, want 4", cfg.GetWorkers())
	}

	refs := cfg.GetReferences()
	want := sld.DefaultReferences()
	want.Lipid = sld.Curve{X: []float64{0, 100}, Y: []float64{-0.4, -0.35}}
	if diff := cmp.Diff(want, refs); diff != "" {
		t.Errorf("GetReferences mismatch (-want +got):\n%s", diff)
	}

	sample := sld.Sample{X: []float64{0, 100}, Y: []float64{0, 5}, Err: []float64{0.1, 0.1}}
	req := cfg.Request(sample)
	if req.Iterations != 500 || req.Seed != 17 || req.Workers != 4 {
		t.Errorf("Request() = %+v, want iterations=500 seed=17 workers=4", req)
	}
	if diff := cmp.Diff(sample, req.Sample); diff != "" {
		t.Errorf("Request sample mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAnalysisConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
		return p
	}

	testCases := []struct {
		name    string
		path    string
		wantSub string
	}{
		{"wrong_extension", write("cfg.yaml", `{}`), ".json extension"},
		{"missing_file", filepath.Join(tmpDir, "missing.json"), "failed to stat"},
		{"bad_json", write("bad.json", `{"iterations": `), "failed to parse"},
		{"negative_iterations", write("negative.json", `{"iterations": -1}`), "iterations must be"},
		{"too_many_iterations", write("huge.json", `{"iterations": 20000000}`), "iterations must be"},
		{"negative_workers", write("workers.json", `{"workers": -2}`), "workers must be"},
		{"short_curve", write("curve.json", `{"references": {"protein": {"x": [0], "y": [1]}}}`), "references.protein"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadAnalysisConfig(tc.path)
			if err == nil {
				t.Fatalf("Expected error for %s, got nil", tc.name)
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("error %q does not contain %q", err, tc.wantSub)
			}
		})
	}
}

func TestLoadAnalysisConfig_ZeroIterationsUsesDefault(t *testing.T) {
	p := filepath.Join(t.TempDir(), "zero.json")
	if err := os.WriteFile(p, []byte(`{"iterations": 0}`), 0644); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	cfg, err := LoadAnalysisConfig(p)
	if err != nil {
		t.Fatalf("iterations 0 should be accepted: %v", err)
	}
	if cfg.GetIterations() != sld.DefaultIterations {
		t.Errorf("GetIterations() = %d, want %d", cfg.GetIterations(), sld.DefaultIterations)
	}
	if req := cfg.Request(sld.Sample{}); req.Iterations != sld.DefaultIterations {
		t.Errorf("Request().Iterations = %d, want %d", req.Iterations, sld.DefaultIterations)
	}
}

func TestValidate_CurveErrorWrapsInvalidInput(t *testing.T) {
	cfg := &AnalysisConfig{References: &ReferencesConfig{
		Solvent: &sld.Curve{X: []float64{0, 38}, Y: []float64{1}},
	}}
	err := cfg.Validate()
	if !errors.Is(err, sld.ErrInvalidInput) {
		t.Errorf("Validate() = %v, want wrapped sld.ErrInvalidInput", err)
	}
}

func TestLoadAnalysisConfig_TooLarge(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.json")
	data := `{"iterations": 10` + strings.Repeat(" ", 1024*1024) + `}`
	if err := os.WriteFile(p, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	_, err := LoadAnalysisConfig(p)
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected too large error, got %v", err)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if diff := cmp.Diff(DefaultAnalysisConfig(), cfg); diff != "" {
		t.Errorf("defaults file drifted from DefaultAnalysisConfig (-code +file):\n%s", diff)
	}
}
