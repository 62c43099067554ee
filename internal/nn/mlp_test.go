package nn

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

var allActivations = []Activation{Tanh, ReLU, Sigmoid}

func newTestMLP(t *testing.T, act Activation, lr float64) *MLP {
	t.Helper()
	m, err := NewMLP(Config{
		InputDim:   2,
		HiddenDim:  3,
		OutputDim:  1,
		LR:         lr,
		Activation: act,
		Seed:       7,
	})
	require.NoError(t, err)
	return m
}

// circleBatch returns n normal points labelled 1 outside the unit circle.
func circleBatch(n int, seed uint64) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	x := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		a, b := rng.NormFloat64(), rng.NormFloat64()
		x.Set(i, 0, a)
		x.Set(i, 1, b)
		if a*a+b*b > 1 {
			y.Set(i, 0, 1)
		}
	}
	return x, y
}

func TestNewMLPShapes(t *testing.T) {
	m := newTestMLP(t, Tanh, 0.1)
	want := map[string][2]int{"W1": {2, 3}, "b1": {1, 3}, "W2": {3, 1}, "b2": {1, 1}}

	params := m.Parameters()
	require.Len(t, params, 4)
	for _, p := range params {
		r, c := p.Shape()
		assert.Equal(t, want[p.Name()], [2]int{r, c}, p.Name())
		assert.Nil(t, p.Grad())
	}

	// Biases start at zero, weights do not.
	assert.Equal(t, 0.0, mat.Sum(m.fc1.Bias().Value()))
	assert.Equal(t, 0.0, mat.Sum(m.fc2.Bias().Value()))
	assert.NotEqual(t, 0.0, mat.Norm(m.fc1.Weight().Value(), 2))
}

func TestNewMLPSeedDeterminism(t *testing.T) {
	a := newTestMLP(t, Tanh, 0.1)
	b := newTestMLP(t, Tanh, 0.1)
	assert.True(t, mat.Equal(a.fc1.Weight().Value(), b.fc1.Weight().Value()))
	assert.True(t, mat.Equal(a.fc2.Weight().Value(), b.fc2.Weight().Value()))

	c, err := NewMLP(Config{InputDim: 2, HiddenDim: 3, OutputDim: 1, LR: 0.1, Activation: Tanh, Seed: 8})
	require.NoError(t, err)
	assert.False(t, mat.Equal(a.fc1.Weight().Value(), c.fc1.Weight().Value()))
}

func TestNewMLPInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		err  error
	}{
		{"unknown activation", Config{InputDim: 2, HiddenDim: 3, OutputDim: 1, LR: 0.1, Activation: Activation(99)}, ErrUnknownActivation},
		{"zero activation", Config{InputDim: 2, HiddenDim: 3, OutputDim: 1, LR: 0.1}, ErrUnknownActivation},
		{"zero hidden", Config{InputDim: 2, HiddenDim: 0, OutputDim: 1, LR: 0.1, Activation: Tanh}, ErrInvalidConfig},
		{"negative lr", Config{InputDim: 2, HiddenDim: 3, OutputDim: 1, LR: -1, Activation: Tanh}, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMLP(tt.cfg)
			require.ErrorIs(t, err, tt.err)
			assert.Nil(t, m)
		})
	}
}

func TestForwardOutputInOpenUnitInterval(t *testing.T) {
	x := mat.NewDense(6, 2, []float64{
		0, 0,
		1, -1,
		-3.5, 2.25,
		10, 10,
		-100, 50,
		1e-8, -1e-8,
	})

	for _, act := range allActivations {
		t.Run(act.String(), func(t *testing.T) {
			m := newTestMLP(t, act, 0.1)
			cache, err := m.Forward(x)
			require.NoError(t, err)

			out := cache.Output()
			r, c := out.Dims()
			assert.Equal(t, 6, r)
			assert.Equal(t, 1, c)
			for i := 0; i < r; i++ {
				v := out.At(i, 0)
				assert.Greater(t, v, 0.0)
				assert.Less(t, v, 1.0)
			}

			hr, hc := cache.Hidden().Dims()
			assert.Equal(t, 6, hr)
			assert.Equal(t, 3, hc)
			assert.True(t, mat.Equal(x, cache.Input()))
		})
	}
}

func TestForwardShapeMismatch(t *testing.T) {
	m := newTestMLP(t, Tanh, 0.1)
	_, err := m.Forward(mat.NewDense(4, 3, nil))
	require.ErrorIs(t, err, ErrShapeMismatch)
}

// TestBackwardDecreasesLoss is the gradient descent sanity check.
func TestBackwardDecreasesLoss(t *testing.T) {
	x, y := circleBatch(100, 3)

	for _, act := range allActivations {
		t.Run(act.String(), func(t *testing.T) {
			m := newTestMLP(t, act, 0.01)

			cache, err := m.Forward(x)
			require.NoError(t, err)
			before, err := MSELoss(cache.Output(), y)
			require.NoError(t, err)

			_, err = m.Backward(cache, y)
			require.NoError(t, err)

			pred, err := m.Predict(x)
			require.NoError(t, err)
			after, err := MSELoss(pred, y)
			require.NoError(t, err)

			assert.Less(t, after, before)
		})
	}
}

// TestBackwardMatchesFiniteDifference checks every analytic gradient
// against central differences of the cross-entropy objective.
func TestBackwardMatchesFiniteDifference(t *testing.T) {
	x, y := circleBatch(20, 11)

	for _, act := range allActivations {
		t.Run(act.String(), func(t *testing.T) {
			m := newTestMLP(t, act, 0.1)
			cache, err := m.Forward(x)
			require.NoError(t, err)
			grads, err := m.gradients(cache, y)
			require.NoError(t, err)
			byName := grads.ByName()

			for _, p := range m.Parameters() {
				raw := p.Value().RawMatrix().Data
				orig := append([]float64(nil), raw...)

				objective := func(v []float64) float64 {
					copy(raw, v)
					pred, err := m.Predict(x)
					require.NoError(t, err)
					loss, err := BinaryCrossEntropy(pred, y)
					require.NoError(t, err)
					return loss
				}
				numeric := fd.Gradient(nil, objective, orig, &fd.Settings{
					Formula: fd.Central,
					Step:    1e-6,
				})
				copy(raw, orig)

				analytic := byName[p.Name()].RawMatrix().Data
				assert.InDeltaSlice(t, numeric, analytic, 1e-6, p.Name())
			}
		})
	}
}

func TestBackwardStoresGradients(t *testing.T) {
	x, y := circleBatch(30, 5)
	m := newTestMLP(t, Tanh, 0.1)
	assert.Nil(t, m.LastGradients().ColumnNorms())

	cache, err := m.Forward(x)
	require.NoError(t, err)
	grads, err := m.Backward(cache, y)
	require.NoError(t, err)

	assert.Same(t, grads.W1, m.LastGradients().W1)
	assert.Same(t, grads.W1, m.fc1.Weight().Grad())
	assert.Same(t, grads.B2, m.fc2.Bias().Grad())

	norms := grads.ColumnNorms()
	require.Len(t, norms, 3)
	for j, n := range norms {
		assert.InDelta(t, mat.Norm(grads.W1.ColView(j), 2), n, 1e-12)
	}
}

func TestBackwardRejectsStaleCache(t *testing.T) {
	x, y := circleBatch(10, 1)
	m := newTestMLP(t, Tanh, 0.1)

	cache, err := m.Forward(x)
	require.NoError(t, err)
	_, err = m.Backward(cache, y)
	require.NoError(t, err)

	// Same cache after an update.
	w1 := mat.DenseCopyOf(m.fc1.Weight().Value())
	_, err = m.Backward(cache, y)
	require.ErrorIs(t, err, ErrStaleCache)
	assert.True(t, mat.Equal(w1, m.fc1.Weight().Value()), "rejected backward must not update parameters")

	// Cache from another network.
	other := newTestMLP(t, Tanh, 0.1)
	foreign, err := other.Forward(x)
	require.NoError(t, err)
	_, err = m.Backward(foreign, y)
	require.ErrorIs(t, err, ErrStaleCache)

	_, err = m.Backward(nil, y)
	require.ErrorIs(t, err, ErrStaleCache)
}

func TestBackwardTargetShapeMismatch(t *testing.T) {
	x, _ := circleBatch(10, 1)
	m := newTestMLP(t, Tanh, 0.1)
	cache, err := m.Forward(x)
	require.NoError(t, err)

	_, err = m.Backward(cache, mat.NewDense(9, 1, nil))
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestParameterShapesStableAcrossSteps(t *testing.T) {
	x, y := circleBatch(50, 2)
	for _, act := range allActivations {
		m := newTestMLP(t, act, 0.1)
		var shapes [][2]int
		for _, p := range m.Parameters() {
			r, c := p.Shape()
			shapes = append(shapes, [2]int{r, c})
		}

		for step := 0; step < 50; step++ {
			_, _, err := m.Train(x, y)
			require.NoError(t, err)
		}

		for i, p := range m.Parameters() {
			r, c := p.Shape()
			assert.Equal(t, shapes[i], [2]int{r, c}, "%v %s", act, p.Name())
			gr, gc := p.Grad().Dims()
			assert.Equal(t, shapes[i], [2]int{gr, gc}, "%v grad %s", act, p.Name())
		}
	}
}

func TestTrainTenStepsReducesLoss(t *testing.T) {
	x, y := circleBatch(100, 0)
	m := newTestMLP(t, Tanh, 0.1)

	pred, err := m.Predict(x)
	require.NoError(t, err)
	initial, err := MSELoss(pred, y)
	require.NoError(t, err)

	for step := 0; step < 10; step++ {
		_, _, err := m.Train(x, y)
		require.NoError(t, err)
	}

	pred, err = m.Predict(x)
	require.NoError(t, err)
	final, err := MSELoss(pred, y)
	require.NoError(t, err)

	assert.Less(t, final, initial)
	r, _ := pred.Dims()
	for i := 0; i < r; i++ {
		v := pred.At(i, 0)
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		assert.Greater(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}
