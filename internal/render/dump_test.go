package render

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlpviz/internal/dataset"
	"github.com/born-ml/mlpviz/internal/nn"
	"github.com/born-ml/mlpviz/internal/serialization"
	"github.com/born-ml/mlpviz/internal/trainer"
)

func TestDumpRecordsEveryFrame(t *testing.T) {
	data, err := dataset.Circle(40, 1)
	require.NoError(t, err)
	model, err := nn.NewMLP(nn.Config{InputDim: 2, HiddenDim: 3, OutputDim: 1, LR: 0.1, Activation: nn.ReLU})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "frames.safetensors")
	dump := NewDump(path)
	_, err = trainer.Run(context.Background(), trainer.RunConfig{Steps: 20, GridSize: 8}, model, data, dump)
	require.NoError(t, err)
	assert.Equal(t, 2, dump.Frames())
	require.NoError(t, dump.Close())

	tensors, meta, err := serialization.ReadSafeTensors(path)
	require.NoError(t, err)
	assert.Equal(t, DumpFormat, meta["format"])
	assert.Equal(t, "2", meta["frames"])
	assert.Len(t, tensors, 8)

	assert.True(t, mat.Equal(data.X(), tensors["points"]))
	assert.True(t, mat.Equal(data.Y(), tensors["labels"]))

	shapes := map[string][2]int{
		"grid.xs": {1, 8},
		"grid.ys": {1, 8},
		"hidden":  {2 * 40, 3},
		"grid":    {2 * 8, 8},
		"grads":   {2, 3},
		"stats":   {2, 3},
	}
	for name, want := range shapes {
		r, c := tensors[name].Dims()
		assert.Equal(t, want, [2]int{r, c}, name)
	}
	assert.Equal(t, 10.0, tensors["stats"].At(0, 0))
	assert.Equal(t, 20.0, tensors["stats"].At(1, 0))

	// Predictions are probabilities.
	assert.Greater(t, mat.Min(tensors["grid"]), 0.0)
	assert.Less(t, mat.Max(tensors["grid"]), 1.0)
}

func TestDumpLongRunRoundTrip(t *testing.T) {
	data, err := dataset.Circle(10, 2)
	require.NoError(t, err)
	model, err := nn.NewMLP(nn.Config{InputDim: 2, HiddenDim: 2, OutputDim: 1, LR: 0.1, Activation: nn.Tanh})
	require.NoError(t, err)

	// More frames than a file may hold tensors.
	frames := serialization.MaxTensorCount/4 + 50
	path := filepath.Join(t.TempDir(), "long.safetensors")
	dump := NewDump(path)
	_, err = trainer.Run(context.Background(), trainer.RunConfig{Steps: frames, StepsPerFrame: 1, GridSize: 4}, model, data, dump)
	require.NoError(t, err)
	require.NoError(t, dump.Close())

	tensors, meta, err := serialization.ReadSafeTensors(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(frames), meta["frames"])
	assert.Len(t, tensors, 8)

	r, _ := tensors["hidden"].Dims()
	assert.Equal(t, frames*10, r)
	assert.Equal(t, float64(frames), tensors["stats"].At(frames-1, 0))
}

func TestDumpCopiesFrameData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.safetensors")
	dump := NewDump(path)
	f := testFrame(2)
	want := mat.DenseCopyOf(f.Hidden)
	require.NoError(t, dump.RenderFrame(f))

	f.Hidden.Set(0, 0, 99)
	f.Grid.Z.Set(0, 0, 99)
	f.GradMagnitudes[0] = 99

	require.NoError(t, dump.Close())
	require.NoError(t, dump.Close())
	require.ErrorIs(t, dump.RenderFrame(f), ErrClosed)

	tensors, _, err := serialization.ReadSafeTensors(path)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want, tensors["hidden"]))
	assert.NotEqual(t, 99.0, tensors["grid"].At(0, 0))
	assert.NotEqual(t, 99.0, tensors["grads"].At(0, 0))
}

func TestDumpRejectsShapeChange(t *testing.T) {
	dump := NewDump(filepath.Join(t.TempDir(), "frames.safetensors"))
	require.NoError(t, dump.RenderFrame(testFrame(2)))
	require.Error(t, dump.RenderFrame(testFrame(3)))
	assert.Equal(t, 1, dump.Frames())
}

func TestDumpWithoutFrames(t *testing.T) {
	dump := NewDump(filepath.Join(t.TempDir(), "frames.safetensors"))
	require.Error(t, dump.Close())
}

type countingRenderer struct {
	calls int
	err   error
}

func (c *countingRenderer) RenderFrame(trainer.Frame) error {
	c.calls++
	return c.err
}

func TestTeeStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	a := &countingRenderer{}
	b := &countingRenderer{err: boom}
	c := &countingRenderer{}

	require.ErrorIs(t, Tee{a, b, c}.RenderFrame(testFrame(1)), boom)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, 0, c.calls)

	require.NoError(t, Tee{a, c}.RenderFrame(testFrame(1)))
	assert.Equal(t, 2, a.calls)
	assert.Equal(t, 1, c.calls)
}
