// Package trainer drives training frame by frame and hands each frame's
// network state to a renderer.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlpviz/internal/dataset"
	"github.com/born-ml/mlpviz/internal/metrics"
	"github.com/born-ml/mlpviz/internal/nn"
)

// Defaults applied to zero RunConfig fields.
const (
	DefaultStepsPerFrame = 10
	DefaultGridSize      = 100
	DefaultGridPad       = 1.0
	DefaultLogEvery      = 10
)

// ErrFrameAccounting is returned when steps do not divide into frames.
var ErrFrameAccounting = errors.New("trainer: steps must be a positive multiple of steps per frame")

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	Steps         int     // Total gradient steps
	StepsPerFrame int     // Gradient steps between rendered frames
	GridSize      int     // Points per axis of the decision grid
	GridPad       float64 // Padding around the data range for the grid
	LogEvery      int     // Log every N frames
}

func (c RunConfig) withDefaults() RunConfig {
	if c.StepsPerFrame <= 0 {
		c.StepsPerFrame = DefaultStepsPerFrame
	}
	if c.GridSize <= 1 {
		c.GridSize = DefaultGridSize
	}
	if c.GridPad == 0 {
		c.GridPad = DefaultGridPad
	}
	if c.LogEvery <= 0 {
		c.LogEvery = DefaultLogEvery
	}
	return c
}

// Frames returns the number of frames the config produces.
func (c RunConfig) Frames() (int, error) {
	c = c.withDefaults()
	if c.Steps <= 0 || c.Steps%c.StepsPerFrame != 0 {
		return 0, fmt.Errorf("%w: steps=%d steps_per_frame=%d", ErrFrameAccounting, c.Steps, c.StepsPerFrame)
	}
	return c.Steps / c.StepsPerFrame, nil
}

// Frame is a snapshot of the network taken after a block of training steps.
type Frame struct {
	Index    int     // Zero-based frame number
	Step     int     // Gradient steps completed so far
	Loss     float64 // Squared-error loss of the frame's last training step
	Accuracy float64 // Accuracy of the frame's last forward pass

	Points *mat.Dense // Dataset features [n, 2]
	Labels []float64  // Dataset labels, aligned with Points rows
	Hidden *mat.Dense // Hidden activations of the last training forward pass [n, hidden]

	Grid           *DecisionGrid // Predictions over input space
	GradMagnitudes []float64     // L2 norm of each column of the last W1 gradient
}

// Renderer consumes frames. It is called once per frame, in order.
type Renderer interface {
	RenderFrame(f Frame) error
}

// Summary reports the outcome of a run.
type Summary struct {
	Frames        int
	Steps         int
	InitialLoss   float64
	FinalLoss     float64
	FinalAccuracy float64
}

// Run trains model on the whole dataset and renders a frame every
// StepsPerFrame steps.
//
// Every step uses the full dataset in its original order. Cancellation is
// checked between frames.
func Run(ctx context.Context, cfg RunConfig, model *nn.MLP, data *dataset.Dataset, r Renderer) (Summary, error) {
	cfg = cfg.withDefaults()
	frames, err := cfg.Frames()
	if err != nil {
		return Summary{}, err
	}
	if cfg.GridPad < 0 {
		return Summary{}, fmt.Errorf("trainer: grid pad must not be negative (got %g)", cfg.GridPad)
	}

	x, y := data.X(), data.Y()
	labels := data.Labels()

	initial, err := evaluate(model, x, y)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{InitialLoss: initial.loss}

	grid := newGridSampler(data.Bounds(cfg.GridPad), cfg.GridSize)
	var window metrics.Window

	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		start := time.Now()
		frame, err := trainFrame(model, x, y, cfg.StepsPerFrame)
		if err != nil {
			return summary, fmt.Errorf("trainer: frame %d: %w", i, err)
		}
		frame.Index = i
		frame.Step = (i + 1) * cfg.StepsPerFrame
		frame.Points = x
		frame.Labels = labels

		frame.Grid, err = grid.evaluate(model)
		if err != nil {
			return summary, err
		}
		window.Record(cfg.StepsPerFrame, time.Since(start), frame.Loss, frame.Accuracy)

		if err := r.RenderFrame(frame); err != nil {
			return summary, fmt.Errorf("trainer: render frame %d: %w", i, err)
		}
		summary.Frames++
		summary.Steps = frame.Step

		if (i+1)%cfg.LogEvery == 0 || i == frames-1 {
			snap := window.Snapshot()
			log.Printf("frame=%d/%d step=%d loss=%.4f acc=%.3f best_loss=%.4f steps_per_sec=%.1f frame_ms=%.2f",
				i+1, frames, frame.Step,
				snap.LastLoss,
				snap.LastAccuracy,
				snap.BestLoss,
				snap.StepsPerSec,
				snap.AvgFrameMS,
			)
		}
	}

	final, err := evaluate(model, x, y)
	if err != nil {
		return summary, err
	}
	summary.FinalLoss = final.loss
	summary.FinalAccuracy = final.accuracy
	return summary, nil
}

// trainFrame runs steps forward/backward passes and captures the state of
// the last one.
func trainFrame(model *nn.MLP, x, y *mat.Dense, steps int) (Frame, error) {
	var (
		cache *nn.Cache
		loss  float64
		err   error
	)
	for s := 0; s < steps; s++ {
		cache, loss, err = model.Train(x, y)
		if err != nil {
			return Frame{}, err
		}
	}

	acc, err := nn.Accuracy(cache.Output(), y)
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Loss:           loss,
		Accuracy:       acc,
		Hidden:         cache.Hidden(),
		GradMagnitudes: model.LastGradients().ColumnNorms(),
	}, nil
}

type evaluation struct {
	loss     float64
	accuracy float64
}

func evaluate(model *nn.MLP, x, y *mat.Dense) (evaluation, error) {
	pred, err := model.Predict(x)
	if err != nil {
		return evaluation{}, err
	}
	loss, err := nn.MSELoss(pred, y)
	if err != nil {
		return evaluation{}, err
	}
	acc, err := nn.Accuracy(pred, y)
	if err != nil {
		return evaluation{}, err
	}
	return evaluation{loss: loss, accuracy: acc}, nil
}
