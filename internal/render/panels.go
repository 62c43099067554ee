package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/born-ml/mlpviz/internal/trainer"
)

// Class colours, blue for 0 and red for 1.
var (
	classColors = [2]color.Color{
		color.RGBA{R: 30, G: 60, B: 230, A: 255},
		color.RGBA{R: 220, G: 30, B: 40, A: 255},
	}
	regionColors = twoTone{
		color.RGBA{R: 190, G: 200, B: 255, A: 255},
		color.RGBA{R: 255, G: 195, B: 195, A: 255},
	}
	barColor = color.RGBA{R: 70, G: 110, B: 170, A: 255}
)

// twoTone is a palette.Palette splitting [Min, Max] at the midpoint.
type twoTone []color.Color

func (t twoTone) Colors() []color.Color { return t }

// gridXYZ adapts a trainer.DecisionGrid to plotter.GridXYZ.
type gridXYZ struct {
	g *trainer.DecisionGrid
}

func (g gridXYZ) Dims() (c, r int)   { return len(g.g.Xs), len(g.g.Ys) }
func (g gridXYZ) Z(c, r int) float64 { return g.g.Z.At(r, c) }
func (g gridXYZ) X(c int) float64    { return g.g.Xs[c] }
func (g gridXYZ) Y(r int) float64    { return g.g.Ys[r] }

// hiddenPlot scatters the first two hidden units coloured by label.
// A single hidden unit is plotted against zero.
func hiddenPlot(f trainer.Frame) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Hidden Space"
	p.X.Label.Text = "h0"
	p.Y.Label.Text = "h1"

	hx, hy := projectHidden(f.Hidden)
	if err := addClassScatter(p, hx, hy, f.Labels, 0.6); err != nil {
		return nil, fmt.Errorf("hidden space: %w", err)
	}
	return p, nil
}

func projectHidden(h *mat.Dense) (xs, ys []float64) {
	rows, cols := h.Dims()
	xs = mat.Col(nil, 0, h)
	if cols > 1 {
		return xs, mat.Col(nil, 1, h)
	}
	return xs, make([]float64, rows)
}

// boundaryPlot shades input space by predicted class and overlays the data.
func boundaryPlot(f trainer.Frame) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Input Space Decision Boundary (step %d)", f.Step)
	p.X.Label.Text = "x0"
	p.Y.Label.Text = "x1"

	heat := plotter.NewHeatMap(gridXYZ{f.Grid}, regionColors)
	heat.Min = 0
	heat.Max = 1
	p.Add(heat)

	xs := mat.Col(nil, 0, f.Points)
	ys := mat.Col(nil, 1, f.Points)
	if err := addClassScatter(p, xs, ys, f.Labels, 1); err != nil {
		return nil, fmt.Errorf("decision boundary: %w", err)
	}

	p.X.Min, p.X.Max = f.Grid.Xs[0], f.Grid.Xs[len(f.Grid.Xs)-1]
	p.Y.Min, p.Y.Max = f.Grid.Ys[0], f.Grid.Ys[len(f.Grid.Ys)-1]
	return p, nil
}

// gradientPlot draws one bar per hidden unit.
func gradientPlot(f trainer.Frame) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Gradients"
	p.Y.Label.Text = "|dW1|"
	p.Y.Min = 0

	if len(f.GradMagnitudes) == 0 {
		return p, nil
	}

	bars, err := plotter.NewBarChart(plotter.Values(f.GradMagnitudes), vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("gradients: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)

	names := make([]string, len(f.GradMagnitudes))
	for i := range names {
		names[i] = fmt.Sprintf("h%d", i)
	}
	p.NominalX(names...)
	return p, nil
}

// addClassScatter adds one scatter series per class present in labels.
func addClassScatter(p *plot.Plot, xs, ys, labels []float64, radius float64) error {
	var classes [2]plotter.XYs
	for i := range xs {
		k := 0
		if labels[i] > 0.5 {
			k = 1
		}
		classes[k] = append(classes[k], plotter.XY{X: xs[i], Y: ys[i]})
	}

	for k, pts := range classes {
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		s.GlyphStyle = draw.GlyphStyle{
			Color:  classColors[k],
			Radius: vg.Points(2 * radius),
			Shape:  draw.CircleGlyph{},
		}
		p.Add(s)
	}
	return nil
}
