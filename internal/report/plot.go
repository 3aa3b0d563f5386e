package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/haskel/cellbench/internal/benchmark"
	"github.com/haskel/cellbench/internal/evaluation"
)

// ErrNothingToPlot is returned when no successful record exists.
var ErrNothingToPlot = errors.New("nothing to plot")

var plotFormats = []string{"png", "svg", "pdf", "jpg", "jpeg"}

// PlotComparison draws accuracy and F1 macro per model as grouped bars.
// Failed records are left out; without any successful record no file is
// written and ErrNothingToPlot is returned.
func PlotComparison(table evaluation.Table, path string) error {
	ok := table.Successful()
	if len(ok) == 0 {
		return ErrNothingToPlot
	}
	format, err := plotFormat(path)
	if err != nil {
		return &benchmark.IOError{Op: "plot", Path: path, Err: err}
	}

	p := plot.New()
	p.Title.Text = "Model comparison"
	p.Y.Label.Text = "Score"
	p.Y.Min = 0
	p.Y.Max = 1.05
	p.Legend.Top = true

	width := vg.Points(18)
	series := []struct {
		label string
		value func(evaluation.Record) float64
	}{
		{"Accuracy", func(r evaluation.Record) float64 { return r.Accuracy }},
		{"F1 macro", func(r evaluation.Record) float64 { return r.F1Macro }},
	}
	for i, s := range series {
		values := plotter.Values(lo.Map(ok, func(r evaluation.Record, _ int) float64 { return s.value(r) }))
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return &benchmark.IOError{Op: "plot", Path: path, Err: err}
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = vg.Length(float64(i)-float64(len(series)-1)/2) * width
		p.Add(bars)
		p.Legend.Add(s.label, bars)
	}
	p.NominalX(ok.Names()...)

	w := vg.Length(max(4, 1.2*float64(len(ok)))) * vg.Inch
	return savePlot(p, w, 4*vg.Inch, format, path)
}

// PlotEfficiency draws mean accuracy and F1 macro against training size.
func PlotEfficiency(points []benchmark.EfficiencyPoint, path string) error {
	ok := lo.Filter(points, func(pt benchmark.EfficiencyPoint, _ int) bool { return pt.Error == "" })
	if len(ok) == 0 {
		return ErrNothingToPlot
	}
	format, err := plotFormat(path)
	if err != nil {
		return &benchmark.IOError{Op: "plot", Path: path, Err: err}
	}

	bySize := lo.GroupBy(ok, func(pt benchmark.EfficiencyPoint) int { return pt.Size })
	sizes := lo.Keys(bySize)
	slices.Sort(sizes)

	curve := func(metric func(benchmark.EfficiencyPoint) float64) plotter.XYs {
		xys := make(plotter.XYs, len(sizes))
		for i, size := range sizes {
			vals := lo.Map(bySize[size], func(pt benchmark.EfficiencyPoint, _ int) float64 { return metric(pt) })
			xys[i].X = float64(size)
			xys[i].Y = stat.Mean(vals, nil)
		}
		return xys
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Sample efficiency: %s", ok[0].Model)
	p.X.Label.Text = "Training cells"
	p.Y.Label.Text = "Score"
	p.Y.Min = 0
	p.Y.Max = 1.05
	p.Legend.Top = true
	p.Legend.Left = true

	err = plotutil.AddLinePoints(p,
		"Accuracy", curve(func(pt benchmark.EfficiencyPoint) float64 { return pt.Accuracy }),
		"F1 macro", curve(func(pt benchmark.EfficiencyPoint) float64 { return pt.F1Macro }),
	)
	if err != nil {
		return &benchmark.IOError{Op: "plot", Path: path, Err: err}
	}
	return savePlot(p, 6*vg.Inch, 4*vg.Inch, format, path)
}

func plotFormat(path string) (string, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !slices.Contains(plotFormats, format) {
		return "", fmt.Errorf("unsupported plot format %q (use one of %s)", format, strings.Join(plotFormats, ", "))
	}
	return format, nil
}

func savePlot(p *plot.Plot, w, h vg.Length, format, path string) error {
	wt, err := p.WriterTo(w, h, format)
	if err != nil {
		return &benchmark.IOError{Op: "plot", Path: path, Err: err}
	}
	return writeFile("plot", path, func(out io.Writer) error {
		_, err := wt.WriteTo(out)
		return err
	})
}
