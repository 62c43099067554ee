// Package optim implements the parameter update used by the network.
//
// Only plain gradient descent is provided:
//
//	param = param - lr * gradient
//
// Example usage:
//
//	sgd, err := optim.NewSGD(optim.SGDConfig{LR: 0.1})
//	if err != nil {
//	    return err
//	}
//
//	// after gradients have been stored on the parameters
//	if err := sgd.Step(params); err != nil {
//	    return err
//	}
package optim

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// ErrInvalidLR is returned for a non-positive learning rate.
var ErrInvalidLR = errors.New("invalid learning rate")

// Param is a trainable value together with its latest gradient.
//
// Value is updated in place by Step.
type Param interface {
	Value() *mat.Dense
	Grad() *mat.Dense
}
