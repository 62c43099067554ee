package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlpviz/internal/optim"
)

// Config describes a two-layer network.
type Config struct {
	InputDim   int        // Number of input features
	HiddenDim  int        // Number of hidden units
	OutputDim  int        // Number of outputs (sigmoid units)
	LR         float64    // Gradient descent learning rate
	Activation Activation // Hidden-layer nonlinearity
	Seed       uint64     // Seed for weight initialization
}

// Validate reports whether the config describes a buildable network.
func (c Config) Validate() error {
	if c.InputDim <= 0 || c.HiddenDim <= 0 || c.OutputDim <= 0 {
		return fmt.Errorf("%w: dims must be > 0 (got %d, %d, %d)",
			ErrInvalidConfig, c.InputDim, c.HiddenDim, c.OutputDim)
	}
	if c.LR <= 0 {
		return fmt.Errorf("%w: learning rate must be > 0 (got %g)", ErrInvalidConfig, c.LR)
	}
	if _, _, err := c.Activation.Funcs(); err != nil {
		return err
	}
	return nil
}

// MLP is a two-layer feed-forward network trained with gradient descent.
//
// Architecture:
//   - Hidden: Z1 = X·W1 + b1, A1 = act(Z1)
//   - Output: Z2 = A1·W2 + b2, A2 = sigmoid(Z2)
//
// The hidden activation is fixed at construction. The output layer always
// uses sigmoid, so outputs are class-1 probabilities.
//
// Forward returns a Cache that must be handed to Backward. A cache is only
// accepted by the network that produced it and only until the next
// parameter update, so gradients are never computed from stale values.
//
// Example:
//
//	m, err := nn.NewMLP(nn.Config{InputDim: 2, HiddenDim: 3, OutputDim: 1, LR: 0.1, Activation: nn.Tanh})
//	cache, err := m.Forward(x)
//	grads, err := m.Backward(cache, y)
type MLP struct {
	cfg Config

	fc1 *Linear // input → hidden
	fc2 *Linear // hidden → output

	act      func(float64) float64
	actDeriv func(float64) float64
	sgd      *optim.SGD

	// version counts parameter updates; caches record it.
	version uint64
	last    Gradients
}

// NewMLP creates a network with N(0, 0.1²) weights and zero biases.
//
// Weights are drawn from a source seeded with cfg.Seed, independent of
// any other randomness in the program.
func NewMLP(cfg Config) (*MLP, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	act, deriv, err := cfg.Activation.Funcs()
	if err != nil {
		return nil, err
	}
	sgd, err := optim.NewSGD(optim.SGDConfig{LR: cfg.LR})
	if err != nil {
		return nil, err
	}

	src := NewSource(cfg.Seed)
	return &MLP{
		cfg:      cfg,
		fc1:      NewLinear("1", cfg.InputDim, cfg.HiddenDim, src),
		fc2:      NewLinear("2", cfg.HiddenDim, cfg.OutputDim, src),
		act:      act,
		actDeriv: deriv,
		sgd:      sgd,
	}, nil
}

// Forward computes the network output for a batch of row vectors.
//
// Input shape: [m, input]. The returned cache holds every intermediate;
// Cache.Output has shape [m, output] with values in (0, 1).
func (m *MLP) Forward(x mat.Matrix) (*Cache, error) {
	if _, cols := x.Dims(); cols != m.cfg.InputDim {
		return nil, fmt.Errorf("MLP.Forward: %w: input has %d features, want %d",
			ErrShapeMismatch, cols, m.cfg.InputDim)
	}

	input := mat.DenseCopyOf(x)
	z1 := m.fc1.Forward(input)
	a1 := applyElem(m.act, z1)
	z2 := m.fc2.Forward(a1)
	a2 := applyElem(SigmoidFunc, z2)

	return &Cache{
		x:       input,
		z1:      z1,
		a1:      a1,
		z2:      z2,
		a2:      a2,
		owner:   m,
		version: m.version,
	}, nil
}

// Backward backpropagates from a forward cache and applies one
// gradient descent update in place.
//
// Targets y must have the same shape as the cache output. The gradients are:
//
//	dZ2 = A2 - y
//	dW2 = A1ᵀ·dZ2 / m,  db2 = colsum(dZ2) / m
//	dZ1 = (dZ2·W2ᵀ) ⊙ act'(Z1)
//	dW1 = Xᵀ·dZ1 / m,   db1 = colsum(dZ1) / m
//
// The returned gradients are also kept as LastGradients and on each
// Parameter. The cache cannot be reused after this call.
func (m *MLP) Backward(c *Cache, y mat.Matrix) (Gradients, error) {
	grads, err := m.gradients(c, y)
	if err != nil {
		return Gradients{}, err
	}

	m.fc1.Weight().SetGrad(grads.W1)
	m.fc1.Bias().SetGrad(grads.B1)
	m.fc2.Weight().SetGrad(grads.W2)
	m.fc2.Bias().SetGrad(grads.B2)

	params := m.Parameters()
	updatable := make([]optim.Param, len(params))
	for i, p := range params {
		updatable[i] = p
	}
	if err := m.sgd.Step(updatable); err != nil {
		return Gradients{}, fmt.Errorf("MLP.Backward: %w", err)
	}

	m.version++
	m.last = grads
	return grads, nil
}

// Train runs one forward and backward pass on the batch.
//
// It returns the forward cache (readable, but no longer valid for
// Backward) and the mean squared error measured before the update.
func (m *MLP) Train(x, y mat.Matrix) (*Cache, float64, error) {
	cache, err := m.Forward(x)
	if err != nil {
		return nil, 0, err
	}
	loss, err := MSELoss(cache.Output(), y)
	if err != nil {
		return nil, 0, fmt.Errorf("MLP.Train: %w", err)
	}
	if _, err := m.Backward(cache, y); err != nil {
		return nil, 0, err
	}
	return cache, loss, nil
}

// Predict returns the output probabilities for x without keeping a cache.
func (m *MLP) Predict(x mat.Matrix) (*mat.Dense, error) {
	cache, err := m.Forward(x)
	if err != nil {
		return nil, err
	}
	return cache.Output(), nil
}

func (m *MLP) gradients(c *Cache, y mat.Matrix) (Gradients, error) {
	if c == nil || c.owner != m {
		return Gradients{}, fmt.Errorf("MLP.Backward: %w: cache was not produced by this network", ErrStaleCache)
	}
	if c.version != m.version {
		return Gradients{}, fmt.Errorf("MLP.Backward: %w: parameters updated since forward", ErrStaleCache)
	}
	if err := sameShape(c.a2, y); err != nil {
		return Gradients{}, fmt.Errorf("MLP.Backward: targets: %w", err)
	}

	rows, _ := c.x.Dims()
	inv := 1 / float64(rows)

	// Output layer.
	var dz2 mat.Dense
	dz2.Sub(c.a2, y)

	var dw2 mat.Dense
	dw2.Mul(c.a1.T(), &dz2)
	dw2.Scale(inv, &dw2)

	// Hidden layer, using W2 before the update.
	var da1 mat.Dense
	da1.Mul(&dz2, m.fc2.Weight().Value().T())
	dz1 := applyElem(m.actDeriv, c.z1)
	dz1.MulElem(&da1, dz1)

	var dw1 mat.Dense
	dw1.Mul(c.x.T(), dz1)
	dw1.Scale(inv, &dw1)

	return Gradients{
		W1: &dw1,
		B1: columnMean(dz1),
		W2: &dw2,
		B2: columnMean(&dz2),
	}, nil
}

// Parameters returns the trainable parameters in the order W1, b1, W2, b2.
func (m *MLP) Parameters() []*Parameter {
	params := make([]*Parameter, 0, 4)
	params = append(params, m.fc1.Parameters()...)
	params = append(params, m.fc2.Parameters()...)
	return params
}

// LastGradients returns the gradients of the most recent Backward call.
//
// All fields are nil before the first call.
func (m *MLP) LastGradients() Gradients {
	return m.last
}

// Config returns the configuration the network was built with.
func (m *MLP) Config() Config {
	return m.cfg
}

// Activation returns the hidden-layer activation.
func (m *MLP) Activation() Activation {
	return m.cfg.Activation
}

// Cache holds the intermediates of one forward pass.
//
// All matrices are owned by the cache; callers must not modify them.
type Cache struct {
	x  *mat.Dense // [m, input]
	z1 *mat.Dense // [m, hidden]
	a1 *mat.Dense // [m, hidden]
	z2 *mat.Dense // [m, output]
	a2 *mat.Dense // [m, output]

	owner   *MLP
	version uint64
}

// Input returns the batch the cache was computed from.
func (c *Cache) Input() *mat.Dense { return c.x }

// HiddenPre returns the hidden pre-activation Z1.
func (c *Cache) HiddenPre() *mat.Dense { return c.z1 }

// Hidden returns the hidden activation A1.
func (c *Cache) Hidden() *mat.Dense { return c.a1 }

// OutputPre returns the output pre-activation Z2.
func (c *Cache) OutputPre() *mat.Dense { return c.z2 }

// Output returns the output activation A2.
func (c *Cache) Output() *mat.Dense { return c.a2 }

// Gradients holds the loss gradient for each parameter.
type Gradients struct {
	W1 *mat.Dense // [input, hidden]
	B1 *mat.Dense // [1, hidden]
	W2 *mat.Dense // [hidden, output]
	B2 *mat.Dense // [1, output]
}

// ByName returns the gradients keyed by parameter name.
func (g Gradients) ByName() map[string]*mat.Dense {
	return map[string]*mat.Dense{
		"W1": g.W1,
		"b1": g.B1,
		"W2": g.W2,
		"b2": g.B2,
	}
}

// ColumnNorms returns the L2 norm of each column of the input-weight
// gradient, one value per hidden unit. It returns nil before any
// backward pass.
func (g Gradients) ColumnNorms() []float64 {
	if g.W1 == nil {
		return nil
	}
	_, cols := g.W1.Dims()
	norms := make([]float64, cols)
	for j := range norms {
		norms[j] = floats.Norm(mat.Col(nil, j, g.W1), 2)
	}
	return norms
}

// columnMean returns a 1 x cols matrix of per-column means.
func columnMean(m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(1, cols, nil)
	for j := 0; j < cols; j++ {
		out.Set(0, j, floats.Sum(mat.Col(nil, j, m))/float64(rows))
	}
	return out
}
