package optim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SGD implements plain gradient descent.
//
// Update rule:
//
//	param = param - lr * gradient
//
// Example:
//
//	sgd, err := optim.NewSGD(optim.SGDConfig{LR: 0.1})
//	...
//	sgd.Step(params)
type SGD struct {
	lr float64
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR float64 // Learning rate, must be > 0
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) (*SGD, error) {
	if config.LR <= 0 {
		return nil, fmt.Errorf("%w: learning rate must be > 0 (got %g)", ErrInvalidLR, config.LR)
	}
	return &SGD{lr: config.LR}, nil
}

// Step applies one in-place gradient descent update to every parameter.
//
// Parameters with no gradient are skipped. A gradient whose shape differs
// from its parameter returns an error and leaves the remaining parameters
// untouched.
func (s *SGD) Step(params []Param) error {
	for _, param := range params {
		grad := param.Grad()
		if grad == nil {
			continue
		}

		value := param.Value()
		vr, vc := value.Dims()
		gr, gc := grad.Dims()
		if vr != gr || vc != gc {
			return fmt.Errorf("sgd: gradient %dx%d does not match parameter %dx%d", gr, gc, vr, vc)
		}

		// value -= lr * grad
		var scaled mat.Dense
		scaled.Scale(s.lr, grad)
		value.Sub(value, &scaled)
	}
	return nil
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}
