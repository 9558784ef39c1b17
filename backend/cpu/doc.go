// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements the CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Float32 and Float64 support
//   - NumPy-compatible broadcasting
//   - Element-wise and reduction kernels split across goroutines
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
//	    img := tensor.Ones[float32](tensor.Shape{1, 3, 64, 64}, backend)
//	    maxRGB := img.MaxDim(1, true)
//	}
//
// For gradients, wrap the backend with autodiff.New.
package cpu
