package report

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/sldvol/internal/sld"
)

// Bin is one histogram bin over [Lo, Hi).
type Bin struct {
	Lo, Hi  float64
	Count   float64
	Density float64
}

// Histogram splits values into n equal-width bins spanning their range.
// The last bin includes the maximum. Identical values produce one bin.
func Histogram(values []float64, n int) []Bin {
	if len(values) == 0 || n < 1 {
		return nil
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		n = 1
	}

	dividers := floats.Span(make([]float64, n+1), lo, hi)
	dividers[n] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(make([]float64, n), dividers, sorted, nil)

	total := float64(len(sorted))
	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{Lo: dividers[i], Hi: dividers[i+1], Count: counts[i]}
		if w := bins[i].Hi - bins[i].Lo; w > 0 {
			bins[i].Density = counts[i] / (total * w)
		}
	}
	return bins
}

// WriteHTML renders an interactive page with one bar chart histogram per
// component. res must carry a distribution.
func WriteHTML(w io.Writer, res *sld.Result) error {
	if res == nil || res.Estimate.Distribution.Len() == 0 {
		return fmt.Errorf("result has no distribution to render")
	}
	est := res.Estimate
	d := est.Distribution

	page := components.NewPage()
	page.SetPageTitle("Bootstrapped volume fractions")
	page.AddCharts(
		histogramChart("Solvent", d.Solvent, est.Solvent, res),
		histogramChart("Protein", d.Protein, est.Protein, res),
		histogramChart("Lipid", d.Lipid, est.Lipid, res),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func histogramChart(name string, values []float64, s sld.Stat, res *sld.Result) *charts.Bar {
	bins := Histogram(values, HistogramBins)
	x := make([]string, len(bins))
	y := make([]opts.BarData, len(bins))
	for i, b := range bins {
		x[i] = fmt.Sprintf("%.2f", (b.Lo+b.Hi)/2)
		y[i] = opts.BarData{Value: b.Density}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Bootstrapped volume fractions", Width: "900px", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s: %.1f +/- %.1f %%", name, s.Mean, s.Std),
			Subtitle: fmt.Sprintf("run=%s iterations=%d", res.RunID, res.Iterations),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Volume %", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "probability"}),
	)
	bar.SetXAxis(x).
		AddSeries(name, y, charts.WithBarChartOpts(opts.BarChart{BarCategoryGap: "0%"}))
	return bar
}
