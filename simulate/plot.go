package simulate

import (
	"context"
	"image/color"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/readsim/sonication"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DistributionPlotPath returns the path of the fragment length graph.
func DistributionPlotPath(basename string) string { return basename + "_distribution.svg" }

// CoveragePlotPath returns the path of the junction coverage graph.
func CoveragePlotPath(basename string) string { return basename + "_junction_coverage.svg" }

// fragmentBinWidth is the width, in bases, of a fragment length histogram bin.
const fragmentBinWidth = 5

// FragmentLengthPlot draws the histogram of fragment lengths, normalized to
// an area of one.  When model is non-nil its density is drawn on top.
func FragmentLengthPlot(st *Stats, model *sonication.Model) (*plot.Plot, error) {
	lengths, counts := st.FragmentLengthHistogram()
	if len(lengths) == 0 {
		return nil, errors.E(errors.Invalid, "no fragment to plot")
	}
	p := plot.New()
	p.Title.Text = "Fragment length distribution"
	p.X.Label.Text = "Fragment length"
	p.Y.Label.Text = "Density"

	pts := make(plotter.XYs, len(lengths))
	for i := range lengths {
		pts[i].X, pts[i].Y = lengths[i], counts[i]
	}
	nBins := max(1, int(lengths[len(lengths)-1]-lengths[0])/fragmentBinWidth)
	h, err := plotter.NewHistogram(pts, nBins)
	if err != nil {
		return nil, err
	}
	h.Normalize(1)
	h.FillColor = color.RGBA{R: 200, G: 200, B: 255, A: 255}
	p.Add(h)

	if model != nil {
		f := plotter.NewFunction(model.Prob)
		f.Color = color.RGBA{R: 255, G: 100, B: 100, A: 255}
		f.Width = vg.Points(2)
		f.XMin, f.XMax = float64(model.Min), float64(model.Max)
		f.Samples = max(50, model.Max-model.Min)
		p.Add(f)
		p.Legend.Add("sonication model", f)
	}
	return p, nil
}

// JunctionCoveragePlot draws how many reads cover each junction position.
// The breakpoint is marked by a vertical line.
func JunctionCoveragePlot(coverage []int64) (*plot.Plot, error) {
	if len(coverage) == 0 {
		return nil, errors.E(errors.Invalid, "no junction coverage to plot")
	}
	p := plot.New()
	p.Title.Text = "Read coverage over junctions"
	p.X.Label.Text = "Position in junction"
	p.Y.Label.Text = "Reads"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(coverage))
	var peak float64
	for i, c := range coverage {
		pts[i].X, pts[i].Y = float64(i), float64(c)
		peak = max(peak, float64(c))
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = color.RGBA{B: 200, A: 255}
	line.LineStyle.Width = vg.Points(2)
	p.Add(line)

	mid := float64(len(coverage) / 2)
	bp, err := plotter.NewLine(plotter.XYs{{X: mid, Y: 0}, {X: mid, Y: peak}})
	if err != nil {
		return nil, err
	}
	bp.Color = color.RGBA{R: 255, A: 255}
	bp.Width = vg.Points(1)
	bp.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
	p.Add(bp)
	p.Legend.Add("breakpoint", bp)
	return p, nil
}

// WriteSVG renders p as SVG.
func WriteSVG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(10*vg.Inch, 4*vg.Inch, "svg")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// SaveSVG renders p to the file at path.
func SaveSVG(ctx context.Context, path string, p *plot.Plot) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	return WriteSVG(out.Writer(ctx), p)
}
