// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand/v2"

	"github.com/born-ml/mlpviz/internal/nn"
)

// Activation selects the hidden-layer nonlinearity.
type Activation = nn.Activation

// Supported activations.
const (
	Tanh    = nn.Tanh
	ReLU    = nn.ReLU
	Sigmoid = nn.Sigmoid
)

// ParseActivation resolves "tanh", "relu" or "sigmoid".
func ParseActivation(name string) (Activation, error) {
	return nn.ParseActivation(name)
}

// Config describes a two-layer network.
type Config = nn.Config

// MLP is a two-layer feed-forward network trained with gradient descent.
type MLP = nn.MLP

// NewMLP creates a network with seeded N(0, 0.1²) weights and zero biases.
//
// Example:
//
//	m, err := nn.NewMLP(nn.Config{
//	    InputDim: 2, HiddenDim: 3, OutputDim: 1,
//	    LR: 0.1, Activation: nn.Tanh,
//	})
func NewMLP(cfg Config) (*MLP, error) {
	return nn.NewMLP(cfg)
}

// Cache holds the intermediates of one forward pass.
type Cache = nn.Cache

// Gradients holds the loss gradient for each parameter.
type Gradients = nn.Gradients

// Parameter is a named trainable matrix with its latest gradient.
type Parameter = nn.Parameter

// Losses

// MSELoss computes mean squared error.
var MSELoss = nn.MSELoss

// BinaryCrossEntropy computes mean binary cross-entropy.
var BinaryCrossEntropy = nn.BinaryCrossEntropy

// Accuracy returns the fraction of predictions on the correct side of 0.5.
var Accuracy = nn.Accuracy

// Errors

// ErrUnknownActivation is returned for an unsupported activation name.
var ErrUnknownActivation = nn.ErrUnknownActivation

// ErrStaleCache is returned when Backward receives a cache that no longer
// matches the network's parameters.
var ErrStaleCache = nn.ErrStaleCache

// ErrShapeMismatch is returned for inputs or targets of the wrong shape.
var ErrShapeMismatch = nn.ErrShapeMismatch

// ErrInvalidConfig is returned by NewMLP for unusable dimensions or
// learning rate.
var ErrInvalidConfig = nn.ErrInvalidConfig

// Layers

// Linear is a fully connected layer y = x·W + b.
type Linear = nn.Linear

// NewLinear creates a Linear layer with parameters named "W"+suffix and
// "b"+suffix, drawing weights from src.
func NewLinear(suffix string, inFeatures, outFeatures int, src rand.Source) *Linear {
	return nn.NewLinear(suffix, inFeatures, outFeatures, src)
}

// NewSource returns the deterministic random source used for weight
// initialization.
func NewSource(seed uint64) rand.Source {
	return nn.NewSource(seed)
}
