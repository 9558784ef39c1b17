// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensors for the Retinex loss library.
//
// # Overview
//
// Tensors hold float32 or float64 data in row-major (N, C, H, W) layout and
// are parameterized by the backend that computes on them:
//   - Generic type-safe tensors (Tensor[T, B])
//   - NumPy-style broadcasting for element-wise ops
//   - Detach for stop-gradient values
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/retinex/backend/cpu"
//	    "github.com/born-ml/retinex/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    illum := tensor.Full[float32](tensor.Shape{1, 1, 8, 8}, 0.5, backend)
//	    refl := tensor.Ones[float32](tensor.Shape{1, 3, 8, 8}, backend)
//
//	    recon := illum.Mul(refl) // (1, 1, 8, 8) broadcast over channels
//	    fmt.Println(recon.Mean().Item())
//	}
//
// # Operations
//
// Every operation allocates its result and leaves its inputs untouched.
// Wrap the backend with autodiff.New to record operations for gradients.
package tensor
