package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMSELoss(t *testing.T) {
	pred := mat.NewDense(4, 1, []float64{0.9, 0.2, 0.5, 1.0})
	target := mat.NewDense(4, 1, []float64{1, 0, 1, 1})

	// (0.01 + 0.04 + 0.25 + 0) / 4
	loss, err := MSELoss(pred, target)
	require.NoError(t, err)
	assert.InDelta(t, 0.075, loss, 1e-12)

	loss, err = MSELoss(target, target)
	require.NoError(t, err)
	assert.Equal(t, 0.0, loss)
}

func TestBinaryCrossEntropy(t *testing.T) {
	pred := mat.NewDense(2, 1, []float64{0.8, 0.25})
	target := mat.NewDense(2, 1, []float64{1, 0})

	want := -(math.Log(0.8) + math.Log(0.75)) / 2
	loss, err := BinaryCrossEntropy(pred, target)
	require.NoError(t, err)
	assert.InDelta(t, want, loss, 1e-12)

	// Saturated predictions stay finite.
	loss, err = BinaryCrossEntropy(mat.NewDense(1, 1, []float64{0}), mat.NewDense(1, 1, []float64{1}))
	require.NoError(t, err)
	assert.False(t, math.IsInf(loss, 0))
}

func TestAccuracy(t *testing.T) {
	pred := mat.NewDense(4, 1, []float64{0.9, 0.4, 0.6, 0.1})
	target := mat.NewDense(4, 1, []float64{1, 0, 0, 0})

	acc, err := Accuracy(pred, target)
	require.NoError(t, err)
	assert.Equal(t, 0.75, acc)
}

func TestLossShapeMismatch(t *testing.T) {
	a := mat.NewDense(3, 1, nil)
	b := mat.NewDense(2, 1, nil)

	_, err := MSELoss(a, b)
	require.ErrorIs(t, err, ErrShapeMismatch)
	_, err = BinaryCrossEntropy(a, b)
	require.ErrorIs(t, err, ErrShapeMismatch)
	_, err = Accuracy(a, b)
	require.ErrorIs(t, err, ErrShapeMismatch)
}
