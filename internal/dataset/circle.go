// Package dataset generates the synthetic training data.
package dataset

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrEmptyDataset is returned when a dataset with no samples is requested.
var ErrEmptyDataset = errors.New("dataset: sample count must be > 0")

// Dataset is an immutable set of 2-D points with binary labels.
//
// X has shape [n, 2] and Y has shape [n, 1]. Callers must not modify the
// returned matrices.
type Dataset struct {
	x *mat.Dense
	y *mat.Dense
}

// Circle samples n points from a 2-D standard normal distribution.
//
// A point is labelled 1 when x0² + x1² > 1 (outside the unit circle) and 0
// otherwise. Points are drawn row-major from a source derived only from
// seed, so the same seed always yields bit-identical data.
func Circle(n int, seed uint64) (*Dataset, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrEmptyDataset, n)
	}

	normal := distuv.Normal{
		Mu:    0,
		Sigma: 1,
		Src:   rand.NewPCG(seed, seed^0x5851f42d4c957f2d),
	}

	x := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		a, b := normal.Rand(), normal.Rand()
		x.Set(i, 0, a)
		x.Set(i, 1, b)
		y.Set(i, 0, label(a, b))
	}
	return &Dataset{x: x, y: y}, nil
}

func label(a, b float64) float64 {
	if a*a+b*b > 1 {
		return 1
	}
	return 0
}

// X returns the [n, 2] feature matrix.
func (d *Dataset) X() *mat.Dense {
	return d.x
}

// Y returns the [n, 1] label matrix.
func (d *Dataset) Y() *mat.Dense {
	return d.y
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	n, _ := d.x.Dims()
	return n
}

// Labels returns a copy of the labels as a flat slice.
func (d *Dataset) Labels() []float64 {
	return mat.Col(nil, 0, d.y)
}

// Bounds is an axis-aligned box in feature space.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Bounds returns the feature range of the dataset padded by pad on every
// side.
func (d *Dataset) Bounds(pad float64) Bounds {
	xs := mat.Col(nil, 0, d.x)
	ys := mat.Col(nil, 1, d.x)
	return Bounds{
		MinX: floats.Min(xs) - pad,
		MaxX: floats.Max(xs) + pad,
		MinY: floats.Min(ys) - pad,
		MaxY: floats.Max(ys) + pad,
	}
}

// Balance returns the fraction of samples labelled 1.
func (d *Dataset) Balance() float64 {
	return floats.Sum(d.Labels()) / float64(d.Len())
}
