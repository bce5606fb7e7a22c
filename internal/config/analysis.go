package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/sldvol/internal/sld"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
const DefaultConfigPath = "config/analysis.defaults.json"

const (
	// MaxIterations bounds the bootstrap length accepted from a config file
	// so a typo cannot allocate unbounded memory.
	MaxIterations = 10_000_000

	// MaxWorkers bounds the number of bootstrap workers.
	MaxWorkers = 256
)

// AnalysisConfig is the JSON configuration of a volume fraction analysis.
// Every field is optional; the Get* methods supply defaults for omitted
// values, so partial configs are safe.
type AnalysisConfig struct {
	// Iterations of 0 selects sld.DefaultIterations.
	Iterations *int    `json:"iterations,omitempty"`
	Seed       *uint64 `json:"seed,omitempty"`
	Workers    *int    `json:"workers,omitempty"`

	// References overrides individual reference curves. Components that
	// are not listed keep their default calibration.
	References *ReferencesConfig `json:"references,omitempty"`
}

// ReferencesConfig holds optional per-component calibration curves.
type ReferencesConfig struct {
	Solvent *sld.Curve `json:"solvent,omitempty"`
	Protein *sld.Curve `json:"protein,omitempty"`
	Lipid   *sld.Curve `json:"lipid,omitempty"`
}

func ptrInt(v int) *int          { return &v }
func ptrUint64(v uint64) *uint64 { return &v }

// EmptyAnalysisConfig returns an AnalysisConfig with all fields set to nil.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// DefaultAnalysisConfig returns a config with every field populated with
// its default value.
func DefaultAnalysisConfig() *AnalysisConfig {
	refs := sld.DefaultReferences()
	return &AnalysisConfig{
		Iterations: ptrInt(sld.DefaultIterations),
		Seed:       ptrUint64(0),
		Workers:    ptrInt(1),
		References: &ReferencesConfig{
			Solvent: &refs.Solvent,
			Protein: &refs.Protein,
			Lipid:   &refs.Lipid,
		},
	}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root. Panics if the file
// cannot be loaded.
//
// The CLI does not read the defaults file: without -config it uses
// DefaultAnalysisConfig, so the binary works from any directory. The file
// documents those defaults for users writing their own config, and tests
// use this function to keep it identical to DefaultAnalysisConfig.
func MustLoadDefaultConfig() *AnalysisConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,       // from cmd/
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadAnalysisConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configured values are usable.
func (c *AnalysisConfig) Validate() error {
	if c.Iterations != nil {
		if *c.Iterations < 0 || *c.Iterations > MaxIterations {
			return fmt.Errorf("iterations must be between 0 and %d, got %d", MaxIterations, *c.Iterations)
		}
	}

	if c.Workers != nil {
		if *c.Workers < 0 || *c.Workers > MaxWorkers {
			return fmt.Errorf("workers must be between 0 and %d, got %d", MaxWorkers, *c.Workers)
		}
	}

	if c.References != nil {
		curves := []struct {
			name  string
			curve *sld.Curve
		}{
			{"solvent", c.References.Solvent},
			{"protein", c.References.Protein},
			{"lipid", c.References.Lipid},
		}
		for _, rc := range curves {
			if rc.curve == nil {
				continue
			}
			if err := rc.curve.Validate(); err != nil {
				return fmt.Errorf("references.%s: %w", rc.name, err)
			}
		}
	}

	return nil
}

// GetIterations returns the iterations value, or sld.DefaultIterations when
// it is unset or 0.
func (c *AnalysisConfig) GetIterations() int {
	if c.Iterations == nil || *c.Iterations == 0 {
		return sld.DefaultIterations
	}
	return *c.Iterations
}

// GetSeed returns the seed value or the default of 0.
func (c *AnalysisConfig) GetSeed() uint64 {
	if c.Seed == nil {
		return 0
	}
	return *c.Seed
}

// GetWorkers returns the workers value or the default of 1.
func (c *AnalysisConfig) GetWorkers() int {
	if c.Workers == nil {
		return 1
	}
	return *c.Workers
}

// GetReferences returns the configured reference curves, falling back to
// sld.DefaultReferences for any component that is not set.
func (c *AnalysisConfig) GetReferences() sld.References {
	refs := sld.DefaultReferences()
	if c.References == nil {
		return refs
	}
	if c.References.Solvent != nil {
		refs.Solvent = *c.References.Solvent
	}
	if c.References.Protein != nil {
		refs.Protein = *c.References.Protein
	}
	if c.References.Lipid != nil {
		refs.Lipid = *c.References.Lipid
	}
	return refs
}

// Request builds an analysis request for sample from the configuration.
func (c *AnalysisConfig) Request(sample sld.Sample) sld.Request {
	return sld.Request{
		Sample:     sample,
		References: c.GetReferences(),
		Iterations: c.GetIterations(),
		Seed:       c.GetSeed(),
		Workers:    c.GetWorkers(),
	}
}
