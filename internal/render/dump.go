package render

import (
	"errors"
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlpviz/internal/serialization"
	"github.com/born-ml/mlpviz/internal/trainer"
)

// DumpFormat identifies files written by Dump.
const DumpFormat = "mlpviz-frames/2"

// Dump records the numeric state behind every frame and writes it as a
// SafeTensors file on Close.
//
// Per-frame series are stacked along rows, so the file always holds eight
// tensors however long the run is. With n points, h hidden units, a g×g
// grid and F frames:
//   - "points" [n, 2] and "labels" [n, 1]
//   - "grid.xs" [1, g] and "grid.ys" [1, g]
//   - "hidden" [F·n, h], frame i in rows i·n to (i+1)·n
//   - "grid" [F·g, g], frame i in rows i·g to (i+1)·g
//   - "grads" [F, h], input-weight gradient magnitudes
//   - "stats" [F, 3], step, loss and accuracy
type Dump struct {
	path   string
	frames int
	closed bool

	points, labels, xs, ys *mat.Dense

	hiddenCols, gridRows, gridCols int
	hidden, grid, grads, stats     []float64
}

var _ trainer.Renderer = (*Dump)(nil)

// NewDump prepares a frame dump that will be written to path by Close.
func NewDump(path string) *Dump {
	return &Dump{path: path}
}

// Path returns the output file path.
func (d *Dump) Path() string { return d.path }

// Frames returns the number of frames recorded so far.
func (d *Dump) Frames() int { return d.frames }

// RenderFrame copies the frame's matrices into the dump.
//
// Every frame must have the shapes of the first one.
func (d *Dump) RenderFrame(f trainer.Frame) error {
	if d.closed {
		return ErrClosed
	}

	if d.frames == 0 {
		d.points = mat.DenseCopyOf(f.Points)
		d.labels = mat.NewDense(len(f.Labels), 1, append([]float64(nil), f.Labels...))
		d.xs = rowVector(f.Grid.Xs)
		d.ys = rowVector(f.Grid.Ys)
		_, d.hiddenCols = f.Hidden.Dims()
		d.gridRows, d.gridCols = f.Grid.Z.Dims()
	}

	points, _ := d.points.Dims()
	if r, c := f.Hidden.Dims(); r != points || c != d.hiddenCols {
		return fmt.Errorf("render: frame %d: hidden is %dx%d, want %dx%d", f.Index, r, c, points, d.hiddenCols)
	}
	if r, c := f.Grid.Z.Dims(); r != d.gridRows || c != d.gridCols {
		return fmt.Errorf("render: frame %d: grid is %dx%d, want %dx%d", f.Index, r, c, d.gridRows, d.gridCols)
	}
	if n := len(f.GradMagnitudes); n != 0 && n != d.hiddenCols {
		return fmt.Errorf("render: frame %d: %d gradient magnitudes, want %d", f.Index, n, d.hiddenCols)
	}

	d.hidden = appendRows(d.hidden, f.Hidden)
	d.grid = appendRows(d.grid, f.Grid.Z)
	if len(f.GradMagnitudes) == 0 {
		d.grads = append(d.grads, make([]float64, d.hiddenCols)...)
	} else {
		d.grads = append(d.grads, f.GradMagnitudes...)
	}
	d.stats = append(d.stats, float64(f.Step), f.Loss, f.Accuracy)
	d.frames++
	return nil
}

// Close writes the file. Calling Close again is a no-op.
func (d *Dump) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	if d.frames == 0 {
		return errors.New("render: no frames to dump")
	}
	points, _ := d.points.Dims()
	tensors := map[string]*mat.Dense{
		"points":  d.points,
		"labels":  d.labels,
		"grid.xs": d.xs,
		"grid.ys": d.ys,
		"hidden":  mat.NewDense(d.frames*points, d.hiddenCols, d.hidden),
		"grid":    mat.NewDense(d.frames*d.gridRows, d.gridCols, d.grid),
		"grads":   mat.NewDense(d.frames, d.hiddenCols, d.grads),
		"stats":   mat.NewDense(d.frames, 3, d.stats),
	}
	meta := map[string]string{
		"format": DumpFormat,
		"frames": strconv.Itoa(d.frames),
	}
	if err := serialization.WriteSafeTensors(d.path, tensors, meta); err != nil {
		return fmt.Errorf("render: write dump: %w", err)
	}
	d.hidden, d.grid, d.grads, d.stats = nil, nil, nil, nil
	return nil
}

// appendRows appends the elements of m to dst in row-major order.
func appendRows(dst []float64, m mat.Matrix) []float64 {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst = append(dst, m.At(i, j))
		}
	}
	return dst
}

func rowVector(v []float64) *mat.Dense {
	return mat.NewDense(1, len(v), append([]float64(nil), v...))
}

// Tee fans each frame out to several renderers in order, stopping at the
// first error.
type Tee []trainer.Renderer

// RenderFrame implements trainer.Renderer.
func (t Tee) RenderFrame(f trainer.Frame) error {
	for _, r := range t {
		if err := r.RenderFrame(f); err != nil {
			return err
		}
	}
	return nil
}
