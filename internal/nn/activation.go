package nn

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlpviz/internal/parallel"
)

// Activation selects the hidden-layer nonlinearity of an MLP.
//
// The set is closed: Tanh, ReLU and Sigmoid. Use ParseActivation to turn a
// user-supplied name into an Activation.
type Activation int

// Supported activations.
const (
	Tanh Activation = iota + 1
	ReLU
	Sigmoid
)

// String returns the canonical lowercase name of the activation.
func (a Activation) String() string {
	switch a {
	case Tanh:
		return "tanh"
	case ReLU:
		return "relu"
	case Sigmoid:
		return "sigmoid"
	default:
		return fmt.Sprintf("Activation(%d)", int(a))
	}
}

// ParseActivation resolves an activation by name.
//
// Accepted names are "tanh", "relu" and "sigmoid" (case-insensitive).
// Any other name returns an error wrapping ErrUnknownActivation.
func ParseActivation(name string) (Activation, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tanh":
		return Tanh, nil
	case "relu":
		return ReLU, nil
	case "sigmoid":
		return Sigmoid, nil
	}
	return 0, fmt.Errorf("%w: %q (want tanh, relu or sigmoid)", ErrUnknownActivation, name)
}

// Funcs returns the elementwise function and its derivative.
//
// Both take the pre-activation value. For Sigmoid the derivative is
// computed from the activation output s = sigmoid(x) as s*(1-s).
func (a Activation) Funcs() (fn, deriv func(float64) float64, err error) {
	switch a {
	case Tanh:
		return TanhFunc, TanhDerivative, nil
	case ReLU:
		return ReLUFunc, ReLUDerivative, nil
	case Sigmoid:
		return SigmoidFunc, SigmoidDerivative, nil
	}
	return nil, nil, fmt.Errorf("%w: %v", ErrUnknownActivation, a)
}

// TanhFunc computes tanh(x).
func TanhFunc(x float64) float64 {
	return math.Tanh(x)
}

// TanhDerivative computes 1 - tanh(x)^2.
func TanhDerivative(x float64) float64 {
	t := math.Tanh(x)
	return 1 - t*t
}

// ReLUFunc computes max(0, x).
func ReLUFunc(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// ReLUDerivative is 1 for x > 0 and 0 otherwise (including x == 0).
func ReLUDerivative(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// SigmoidFunc computes 1 / (1 + exp(-x)).
func SigmoidFunc(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// SigmoidDerivative computes s*(1-s) where s = sigmoid(x).
func SigmoidDerivative(x float64) float64 {
	s := SigmoidFunc(x)
	return s * (1 - s)
}

// rowWorkers splits elementwise maps over large matrices, such as the
// decision-boundary grid, across goroutines.
var rowWorkers = parallel.DefaultConfig()

// applyElem returns a new matrix holding f applied to every element of m.
//
// f must be safe for concurrent use.
func applyElem(f func(float64) float64, m mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(m)
	rows, _ := out.Dims()
	parallel.For(rows, func(i int) {
		row := out.RawRowView(i)
		for j, v := range row {
			row[j] = f(v)
		}
	}, rowWorkers)
	return out
}
