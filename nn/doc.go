// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the two-layer network behind mlpviz.
//
// # Overview
//
// This package contains:
//   - MLP: input → hidden (tanh, ReLU or sigmoid) → sigmoid output
//   - Activations: Tanh, ReLU, Sigmoid and ParseActivation
//   - Losses: MSELoss, BinaryCrossEntropy, Accuracy
//   - Linear: the fully connected layer the MLP is built from
//
// # Basic Usage
//
//	m, err := nn.NewMLP(nn.Config{
//	    InputDim:   2,
//	    HiddenDim:  3,
//	    OutputDim:  1,
//	    LR:         0.1,
//	    Activation: nn.Tanh,
//	})
//	if err != nil {
//	    return err
//	}
//
//	cache, err := m.Forward(x)      // x: [m, 2]
//	grads, err := m.Backward(cache, y) // y: [m, 1], updates parameters
//
// # Forward Cache
//
// Forward returns a Cache instead of storing intermediates on the network.
// Backward only accepts a cache produced by the same network since the last
// parameter update and returns ErrStaleCache otherwise:
//
//	cache, _ := m.Forward(x)
//	m.Backward(cache, y) // ok
//	m.Backward(cache, y) // ErrStaleCache
//
// # Gradients
//
// The gradients of the last Backward call stay available for inspection:
//
//	norms := m.LastGradients().ColumnNorms() // one value per hidden unit
package nn
