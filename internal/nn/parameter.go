package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Parameter represents a trainable parameter of the network.
//
// It pairs a value matrix with the gradient computed by the most recent
// backward pass. The value is updated in place, so its shape never changes.
//
// Example:
//
//	w1 := nn.NewParameter("W1", nn.Zeros(2, 3))
//	w1.Value().At(0, 0)
//	w1.Grad() // nil until the first backward pass
type Parameter struct {
	name  string     // Parameter name (e.g., "W1", "b2")
	value *mat.Dense // The parameter values
	grad  *mat.Dense // Gradient from the last backward pass
}

// NewParameter creates a new trainable parameter.
func NewParameter(name string, value *mat.Dense) *Parameter {
	return &Parameter{
		name:  name,
		value: value,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter matrix.
func (p *Parameter) Value() *mat.Dense {
	return p.value
}

// Grad returns the gradient matrix.
//
// Returns nil if no backward pass has run yet.
func (p *Parameter) Grad() *mat.Dense {
	return p.grad
}

// SetGrad sets the gradient matrix.
func (p *Parameter) SetGrad(grad *mat.Dense) {
	p.grad = grad
}

// ZeroGrad clears the gradient.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}

// Shape returns the (rows, cols) dimensions of the parameter.
func (p *Parameter) Shape() (int, int) {
	return p.value.Dims()
}
