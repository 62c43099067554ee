package trainer

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlpviz/internal/dataset"
)

// DecisionGrid holds model predictions over a regular grid in input space.
//
// Z has one row per Ys value and one column per Xs value, so Z.At(r, c) is
// the prediction at (Xs[c], Ys[r]).
type DecisionGrid struct {
	Xs []float64
	Ys []float64
	Z  *mat.Dense
}

// gridSampler evaluates a fixed grid of points; the points never change
// between frames.
type gridSampler struct {
	xs, ys []float64
	points *mat.Dense // [size*size, 2], row r*size+c is (xs[c], ys[r])
}

func newGridSampler(b dataset.Bounds, size int) *gridSampler {
	xs := floats.Span(make([]float64, size), b.MinX, b.MaxX)
	ys := floats.Span(make([]float64, size), b.MinY, b.MaxY)

	points := mat.NewDense(size*size, 2, nil)
	for r, yv := range ys {
		for c, xv := range xs {
			points.Set(r*size+c, 0, xv)
			points.Set(r*size+c, 1, yv)
		}
	}
	return &gridSampler{xs: xs, ys: ys, points: points}
}

// predictor is the part of the network the grid needs.
type predictor interface {
	Predict(x mat.Matrix) (*mat.Dense, error)
}

// evaluate runs one forward pass over all grid points and reshapes the
// first output column to the grid.
func (g *gridSampler) evaluate(p predictor) (*DecisionGrid, error) {
	pred, err := p.Predict(g.points)
	if err != nil {
		return nil, fmt.Errorf("trainer: grid predict: %w", err)
	}
	z := mat.NewDense(len(g.ys), len(g.xs), mat.Col(nil, 0, pred))
	return &DecisionGrid{Xs: g.xs, Ys: g.ys, Z: z}, nil
}
