package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLinearForward(t *testing.T) {
	layer := NewLinear("1", 2, 3, NewSource(1))
	assert.Equal(t, 2, layer.InFeatures())
	assert.Equal(t, 3, layer.OutFeatures())

	// Overwrite parameters with known values.
	layer.Weight().Value().Copy(mat.NewDense(2, 3, []float64{
		1, 0, -1,
		2, 1, 0,
	}))
	layer.Bias().Value().Copy(mat.NewDense(1, 3, []float64{0.5, -0.5, 1}))

	x := mat.NewDense(2, 2, []float64{
		1, 1,
		-1, 2,
	})
	out := layer.Forward(x)

	want := mat.NewDense(2, 3, []float64{
		3.5, 0.5, 0,
		3.5, 1.5, 2,
	})
	assert.True(t, mat.EqualApprox(want, out, 1e-12), "got %v", mat.Formatted(out))
}

func TestLinearParameters(t *testing.T) {
	layer := NewLinear("2", 4, 1, NewSource(3))
	params := layer.Parameters()
	require.Len(t, params, 2)

	assert.Equal(t, "W2", params[0].Name())
	assert.Equal(t, "b2", params[1].Name())
	assert.Same(t, layer.Weight(), params[0])
	assert.Same(t, layer.Bias(), params[1])

	r, c := params[0].Shape()
	assert.Equal(t, [2]int{4, 1}, [2]int{r, c})
	r, c = params[1].Shape()
	assert.Equal(t, [2]int{1, 1}, [2]int{r, c})
	assert.Equal(t, 0.0, mat.Sum(layer.Bias().Value()))
}

func TestLinearForwardPanicsOnWrongFeatures(t *testing.T) {
	layer := NewLinear("1", 2, 3, NewSource(1))
	assert.Panics(t, func() { layer.Forward(mat.NewDense(1, 5, nil)) })
}
