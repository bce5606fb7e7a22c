// Command sldvol estimates the solvent, protein and lipid volume fractions
// of a sample from SLD measurements at several D2O concentrations.
//
// Example:
//
//	sldvol -x 0,38,100 -y 0.017,1.8985,4.961 -err 0.08,0.13,0.012 -plot-dir plots
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/sldvol/internal/config"
	"github.com/banshee-data/sldvol/internal/monitoring"
	"github.com/banshee-data/sldvol/internal/report"
	"github.com/banshee-data/sldvol/internal/security"
	"github.com/banshee-data/sldvol/internal/sld"
	"github.com/banshee-data/sldvol/internal/version"
)

const (
	exitOK       = 0
	exitAnalysis = 1
	exitUsage    = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	x, y, err  string
	configPath string
	iterations int
	seed       uint64
	workers    int
	samples    bool
	plotDir    string
	label      string
	htmlPath   string
	jsonOut    bool
	quiet      bool
	version    bool
}

func newFlagSet(o *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("sldvol", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.x, "x", "", "Comma-separated sample D2O concentrations (%)")
	fs.StringVar(&o.y, "y", "", "Comma-separated sample SLD values")
	fs.StringVar(&o.err, "err", "", "Comma-separated one-sigma SLD uncertainties")
	fs.StringVar(&o.configPath, "config", "", "Path to a JSON analysis config (defaults built in)")
	fs.IntVar(&o.iterations, "iterations", sld.DefaultIterations, "Bootstrap iterations (overrides config)")
	fs.Uint64Var(&o.seed, "seed", 0, "Random seed (overrides config)")
	fs.IntVar(&o.workers, "workers", 1, "Parallel bootstrap workers (overrides config)")
	fs.BoolVar(&o.samples, "samples", false, "Keep per-iteration fractions and include them in -json output (implied by -plot-dir and -html)")
	fs.StringVar(&o.plotDir, "plot-dir", "", "Directory to write PNG plots to")
	fs.StringVar(&o.label, "label", "", "Run label; plots are written to <plot-dir>/<label>")
	fs.StringVar(&o.htmlPath, "html", "", "Path to write an interactive HTML histogram page to")
	fs.BoolVar(&o.jsonOut, "json", false, "Print the result as JSON instead of text")
	fs.BoolVar(&o.quiet, "quiet", false, "Suppress diagnostic logging")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")
	return fs
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var o options
	fs := newFlagSet(&o, stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if o.version {
		fmt.Fprintln(stdout, version.String("sldvol"))
		return exitOK
	}

	if o.quiet {
		monitoring.SetLogger(nil)
	} else {
		monitoring.SetOutput(stderr, "sldvol ")
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	req, err := buildRequest(o, set)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		fs.Usage()
		return exitUsage
	}

	plotDir, err := outputDirs(o)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	res, err := sld.Estimate(ctx, req)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitAnalysis
	}

	if o.jsonOut {
		err = report.WriteJSON(stdout, res)
	} else {
		err = report.WriteText(stdout, res)
	}
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitAnalysis
	}

	if plotDir != "" {
		written, err := report.WritePlots(plotDir, req, res)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return exitAnalysis
		}
		for _, p := range written {
			monitoring.Logf("wrote %s", p)
		}
	}

	if o.htmlPath != "" {
		if err := writeHTML(o.htmlPath, res); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return exitAnalysis
		}
		monitoring.Logf("wrote %s", o.htmlPath)
	}

	return exitOK
}

// buildRequest merges the config file, explicitly set flags and the sample
// vectors into a request.
func buildRequest(o options, set map[string]bool) (sld.Request, error) {
	cfg := config.DefaultAnalysisConfig()
	if o.configPath != "" {
		loaded, err := config.LoadAnalysisConfig(o.configPath)
		if err != nil {
			return sld.Request{}, err
		}
		cfg = loaded
	}
	if set["iterations"] {
		cfg.Iterations = &o.iterations
	}
	if set["seed"] {
		cfg.Seed = &o.seed
	}
	if set["workers"] {
		cfg.Workers = &o.workers
	}
	if err := cfg.Validate(); err != nil {
		return sld.Request{}, err
	}

	if o.x == "" || o.y == "" || o.err == "" {
		return sld.Request{}, fmt.Errorf("-x, -y and -err are required")
	}
	var sample sld.Sample
	var err error
	if sample.X, err = parseCSVFloatSlice(o.x); err != nil {
		return sld.Request{}, fmt.Errorf("-x: %w", err)
	}
	if sample.Y, err = parseCSVFloatSlice(o.y); err != nil {
		return sld.Request{}, fmt.Errorf("-y: %w", err)
	}
	if sample.Err, err = parseCSVFloatSlice(o.err); err != nil {
		return sld.Request{}, fmt.Errorf("-err: %w", err)
	}

	req := cfg.Request(sample)
	req.KeepSamples = o.samples || o.plotDir != "" || o.htmlPath != ""
	return req, nil
}

// outputDirs validates the output locations and returns the directory plots
// are written to.
func outputDirs(o options) (string, error) {
	plotDir := o.plotDir
	if plotDir != "" {
		if o.label != "" {
			plotDir = filepath.Join(plotDir, security.SanitizeFilename(o.label))
		}
		if err := security.ValidateOutputPath(plotDir); err != nil {
			return "", fmt.Errorf("-plot-dir: %w", err)
		}
	}
	if o.htmlPath != "" {
		if err := security.ValidateOutputPath(o.htmlPath); err != nil {
			return "", fmt.Errorf("-html: %w", err)
		}
	}
	return plotDir, nil
}

func writeHTML(path string, res *sld.Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create html dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html file: %w", err)
	}
	if err := report.WriteHTML(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// parseCSVFloatSlice parses a comma-separated list of floats
func parseCSVFloatSlice(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
