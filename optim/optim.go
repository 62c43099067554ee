// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/mlpviz/internal/optim"
)

// Param is a trainable value together with its latest gradient.
type Param = optim.Param

// SGD represents plain gradient descent.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	opt, err := optim.NewSGD(optim.SGDConfig{LR: 0.1})
func NewSGD(config SGDConfig) (*SGD, error) {
	return optim.NewSGD(config)
}

// ErrInvalidLR is returned for a non-positive learning rate.
var ErrInvalidLR = optim.ErrInvalidLR
