// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the update rule used to train mlpviz networks.
//
// # Overview
//
// SGD applies plain gradient descent, param = param - lr * gradient, to
// every parameter that carries a gradient. nn.MLP owns one and steps it at
// the end of each Backward; the constructor here is for driving parameters
// directly.
//
// # Basic Usage
//
//	opt, err := optim.NewSGD(optim.SGDConfig{LR: 0.1})
//	if err != nil {
//	    return err
//	}
//
//	params := make([]optim.Param, 0)
//	for _, p := range layer.Parameters() {
//	    params = append(params, p)
//	}
//
//	// after gradients have been stored on the parameters
//	if err := opt.Step(params); err != nil {
//	    return err
//	}
package optim
