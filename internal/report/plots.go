package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/banshee-data/sldvol/internal/sld"
)

const (
	// CurvesFile is the file name of the SLD vs D2O plot.
	CurvesFile = "sld_curves.png"

	// HistogramsFile is the file name of the bootstrap histogram plot.
	HistogramsFile = "fractions_hist.png"

	// HistogramBins is the number of bins per component histogram.
	HistogramBins = 80
)

var (
	solventColor = color.RGBA{B: 255, A: 255}
	proteinColor = color.RGBA{G: 128, A: 255}
	lipidColor   = color.RGBA{R: 255, G: 165, A: 255}
	sampleColor  = color.RGBA{R: 255, A: 255}
	meanColor    = color.NRGBA{R: 255, A: 153}
	histFill     = color.NRGBA{R: 128, G: 128, B: 128, A: 128}
)

// WritePlots writes CurvesFile and, when res carries a distribution,
// HistogramsFile into dir. It returns the paths written.
func WritePlots(dir string, req sld.Request, res *sld.Result) ([]string, error) {
	if res == nil {
		return nil, fmt.Errorf("no result to plot")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create plot dir: %w", err)
	}

	var written []string
	curves := filepath.Join(dir, CurvesFile)
	if err := SaveCurves(curves, req.Sample, req.References, res.Fits.Sample); err != nil {
		return written, err
	}
	written = append(written, curves)

	if res.Estimate.Distribution.Len() == 0 {
		return written, nil
	}
	hist := filepath.Join(dir, HistogramsFile)
	if err := SaveHistograms(hist, res.Estimate); err != nil {
		return written, err
	}
	return append(written, hist), nil
}

// CurvesPlot draws the reference curves, the measured sample points with
// their error bars, a dashed line through the measured points and the
// fitted sample line.
func CurvesPlot(sample sld.Sample, refs sld.References, sampleFit sld.LinearFit) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Scattering Length Density vs D2O concentration"
	p.X.Label.Text = "D2O concentration (%)"
	p.Y.Label.Text = "SLD (x10^-6 Å^-2)"

	layers, err := curveLayers(sample, refs, sampleFit)
	if err != nil {
		return nil, err
	}
	for _, l := range layers {
		p.Add(l.plotter)
		if l.label != "" {
			p.Legend.Add(l.label, l.thumb)
		}
	}

	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.XOffs = 10
	p.Legend.YOffs = -10
	return p, nil
}

// curveLayer is one plotter of the curves plot. Layers with an empty label
// are not listed in the legend.
type curveLayer struct {
	label   string
	plotter plot.Plotter
	thumb   plot.Thumbnailer
}

func curveLayers(sample sld.Sample, refs sld.References, sampleFit sld.LinearFit) ([]curveLayer, error) {
	var layers []curveLayer

	lines := []struct {
		name  string
		curve sld.Curve
		color color.Color
	}{
		{"Solvent", refs.Solvent, solventColor},
		{"Protein", refs.Protein, proteinColor},
		{"Lipid", refs.Lipid, lipidColor},
	}
	for _, l := range lines {
		line, err := plotter.NewLine(curveXYs(l.curve.X, l.curve.Y))
		if err != nil {
			return nil, fmt.Errorf("%s line: %w", l.name, err)
		}
		line.Color = l.color
		line.Width = vg.Points(1.5)
		layers = append(layers, curveLayer{label: l.name, plotter: line, thumb: line})
	}

	if len(sample.X) == 0 {
		return layers, nil
	}

	pts := curveXYs(sample.X, sample.Y)
	measured, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("sample line: %w", err)
	}
	measured.Color = color.Black
	measured.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
	measured.Width = vg.Points(1.5)
	layers = append(layers, curveLayer{label: "Sample", plotter: measured, thumb: measured})

	lo, hi := floats.Min(sample.X), floats.Max(sample.X)
	fitLine, err := plotter.NewLine(plotter.XYs{
		{X: lo, Y: sampleFit.Eval(lo)},
		{X: hi, Y: sampleFit.Eval(hi)},
	})
	if err != nil {
		return nil, fmt.Errorf("sample fit line: %w", err)
	}
	fitLine.Color = sampleColor
	fitLine.Width = vg.Points(1)
	layers = append(layers, curveLayer{label: "Sample fit", plotter: fitLine, thumb: fitLine})

	errs := make(plotter.YErrors, len(sample.Err))
	for i, e := range sample.Err {
		errs[i].Low, errs[i].High = e, e
	}
	bars, err := plotter.NewYErrorBars(struct {
		plotter.XYs
		plotter.YErrors
	}{pts, errs})
	if err != nil {
		return nil, fmt.Errorf("sample error bars: %w", err)
	}
	bars.LineStyle.Width = vg.Points(1.5)
	bars.CapWidth = vg.Points(9)
	layers = append(layers, curveLayer{plotter: bars})

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("sample points: %w", err)
	}
	scatter.GlyphStyle.Color = sampleColor
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(3)
	layers = append(layers, curveLayer{plotter: scatter})

	return layers, nil
}

// SaveCurves renders CurvesPlot to a PNG file at path.
func SaveCurves(path string, sample sld.Sample, refs sld.References, sampleFit sld.LinearFit) error {
	p, err := CurvesPlot(sample, refs, sampleFit)
	if err != nil {
		return err
	}
	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save curves plot: %w", err)
	}
	return nil
}

// HistogramPlots returns one density-normalised histogram per component,
// each marked with a dashed line at the component mean.
func HistogramPlots(est sld.FractionEstimate) ([]*plot.Plot, error) {
	d := est.Distribution
	if d.Len() == 0 {
		return nil, fmt.Errorf("estimate has no distribution to plot")
	}

	panels := []struct {
		name string
		vals []float64
		mean float64
	}{
		{"Solvent", d.Solvent, est.Solvent.Mean},
		{"Protein", d.Protein, est.Protein.Mean},
		{"Lipid", d.Lipid, est.Lipid.Mean},
	}
	plots := make([]*plot.Plot, 0, len(panels))
	for i, pn := range panels {
		p := plot.New()
		p.Title.Text = pn.name
		p.X.Label.Text = "Volume %"
		if i == 0 {
			p.Y.Label.Text = "probability"
		}

		h, err := plotter.NewHist(plotter.Values(pn.vals), HistogramBins)
		if err != nil {
			return nil, fmt.Errorf("%s histogram: %w", pn.name, err)
		}
		h.Normalize(1)
		h.FillColor = histFill
		h.LineStyle.Width = 0
		p.Add(h)

		_, _, _, ymax := h.DataRange()
		mean, err := plotter.NewLine(plotter.XYs{{X: pn.mean, Y: 0}, {X: pn.mean, Y: ymax}})
		if err != nil {
			return nil, fmt.Errorf("%s mean line: %w", pn.name, err)
		}
		mean.Color = meanColor
		mean.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(mean)

		plots = append(plots, p)
	}
	return plots, nil
}

// SaveHistograms renders HistogramPlots side by side into a PNG file at path.
func SaveHistograms(path string, est sld.FractionEstimate) error {
	plots, err := HistogramPlots(est)
	if err != nil {
		return err
	}

	img := vgimg.New(13*vg.Inch, 3*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(plots),
		PadX:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align([][]*plot.Plot{plots}, tiles, dc)
	for j, p := range plots {
		p.Draw(canvases[0][j])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create histogram file: %w", err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write histogram png: %w", err)
	}
	return f.Close()
}

func curveXYs(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X, pts[i].Y = xs[i], ys[i]
	}
	return pts
}
