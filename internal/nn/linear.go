package nn

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x·W + b
// where:
//   - x is the input with shape [batch_size, in_features]
//   - W is the weight matrix with shape [in_features, out_features]
//   - b is the bias row with shape [1, out_features], broadcast over rows
//   - y is the output with shape [batch_size, out_features]
//
// Weights are drawn from N(0, 0.1²). Biases are initialized to zeros.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [in_features, out_features]
	bias        *Parameter // [1, out_features]
}

// NewLinear creates a new Linear layer.
//
// Parameters:
//   - suffix: Appended to the parameter names, e.g. "1" gives "W1" and "b1"
//   - inFeatures: Number of input features
//   - outFeatures: Number of output features
//   - src: Random source for the weights
func NewLinear(suffix string, inFeatures, outFeatures int, src rand.Source) *Linear {
	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("W"+suffix, Randn(inFeatures, outFeatures, weightScale, src)),
		bias:        NewParameter("b"+suffix, Zeros(1, outFeatures)),
	}
}

// Forward computes x·W + b.
//
// Panics if x does not have InFeatures columns.
func (l *Linear) Forward(x mat.Matrix) *mat.Dense {
	if _, cols := x.Dims(); cols != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, cols))
	}

	var out mat.Dense
	out.Mul(x, l.weight.Value())

	bias := l.bias.Value().RawRowView(0)
	out.Apply(func(_, j int, v float64) float64 { return v + bias[j] }, &out)
	return &out
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
