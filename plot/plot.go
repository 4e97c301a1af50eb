// Package plot draws the diagnostics of a cross-validation run with
// gonum/plot: feature importance bars and prediction histograms.
package plot

import (
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/KenkenGoda/trapi/aggregate"
	"github.com/KenkenGoda/trapi/core/frame"
	"github.com/KenkenGoda/trapi/pkg/errors"
)

var (
	validColor = color.RGBA{R: 31, G: 119, B: 180, A: 77}
	testColor  = color.RGBA{R: 214, G: 39, B: 40, A: 77}
	barColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
)

// errPoints feeds plotter.NewXErrorBars.
type errPoints struct {
	plotter.XYs
	plotter.XErrors
}

// FeatureImportance plots the nPlot features with the highest mean
// importance over folds as horizontal bars, the most important on top, with
// the standard deviation across folds as error bars. imp must have the
// feature and fold columns of train.CrossValidate and the importanceType
// column ("split" or "gain").
func FeatureImportance(imp *frame.Frame, importanceType string, nPlot int) (*plot.Plot, error) {
	if importanceType != "split" && importanceType != "gain" {
		return nil, errors.NewValidationError("importance_type", "must be split or gain", importanceType)
	}
	if nPlot < 1 {
		return nil, errors.NewValidationError("n_plot", "must be positive", nPlot)
	}
	summary, err := aggregate.Aggregate(imp, []string{"feature"}, importanceType, []string{"mean", "std"}, aggregate.AsIndex())
	if err != nil {
		return nil, err
	}
	if summary.Nrow() == 0 {
		return nil, errors.NewModelError("plot.FeatureImportance", "empty data", errors.ErrEmptyData)
	}

	featureCol, _ := summary.Col("feature")
	names, _ := featureCol.Strings()
	meanCol, _ := summary.Col("mean")
	stdCol, _ := summary.Col("std")
	means, stds := meanCol.Floats(), stdCol.Floats()

	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return means[order[a]] > means[order[b]] })
	if len(order) > nPlot {
		order = order[:nPlot]
	}

	// bars are drawn bottom-up, so the most important feature goes last
	n := len(order)
	values := make(plotter.Values, n)
	labels := make([]string, n)
	points := errPoints{XYs: make(plotter.XYs, n), XErrors: make(plotter.XErrors, n)}
	for k, i := range order {
		pos := n - 1 - k
		values[pos] = means[i]
		labels[pos] = names[i]
		spread := stds[i]
		if math.IsNaN(spread) {
			spread = 0
		}
		points.XYs[pos] = plotter.XY{X: means[i], Y: float64(pos)}
		points.XErrors[pos].Low = -spread
		points.XErrors[pos].High = spread
	}

	p := plot.New()
	p.Title.Text = "Feature importance (" + importanceType + ")"
	p.X.Label.Text = importanceType

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return nil, errors.Wrap(err, "bar chart")
	}
	bars.Horizontal = true
	bars.Color = barColor
	bars.LineStyle.Width = 0

	whiskers, err := plotter.NewXErrorBars(points)
	if err != nil {
		return nil, errors.Wrap(err, "error bars")
	}
	p.Add(bars, whiskers)
	p.NominalY(labels...)
	return p, nil
}

// PredictionDistribution overlays density histograms of validation and test
// predictions. NaN predictions are ignored.
func PredictionDistribution(validPred, testPred []float64, bins int) (*plot.Plot, error) {
	if bins < 1 {
		return nil, errors.NewValidationError("bins", "must be positive", bins)
	}
	p := plot.New()
	p.Title.Text = "Prediction distribution"
	p.X.Label.Text = "prediction"
	p.Y.Label.Text = "density"
	p.Add(plotter.NewGrid())

	for _, series := range []struct {
		name   string
		values []float64
		fill   color.Color
	}{
		{"valid", validPred, validColor},
		{"test", testPred, testColor},
	} {
		vs := finite(series.values)
		if len(vs) == 0 {
			return nil, errors.NewModelError("plot.PredictionDistribution", series.name+": no finite predictions", errors.ErrEmptyData)
		}
		h, err := plotter.NewHist(vs, bins)
		if err != nil {
			return nil, errors.Wrapf(err, "%s histogram", series.name)
		}
		h.Normalize(1)
		h.FillColor = series.fill
		p.Add(h)
		p.Legend.Add(series.name, h)
	}
	p.Legend.Top = true
	return p, nil
}

func finite(values []float64) plotter.Values {
	out := make(plotter.Values, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Save renders p to path; the extension picks the format (png, svg, pdf,
// ...). Sizes are in inches.
func Save(p *plot.Plot, path string, width, height float64) error {
	if err := p.Save(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving plot to %s", path)
	}
	return nil
}
