// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/retinex/internal/tensor"

// Backend defines the interface that compute backends implement.
//
// Implementations:
//   - backend/cpu: pure Go, parallel element-wise kernels
//
// Decorator backends for additional functionality:
//   - autodiff: automatic differentiation (wraps any backend)
type Backend interface {
	// Element-wise binary operations with broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Element-wise unary operations.
	Abs(x *RawTensor) *RawTensor                  // |x|.
	ClampMin(x *RawTensor, lo float64) *RawTensor // max(x, lo).

	// Slicing and reductions.
	Narrow(x *RawTensor, dim, start, length int) *RawTensor // x[..., start:start+length, ...].
	Mean(x *RawTensor) *RawTensor                           // Mean of all elements (scalar result).
	MaxDim(x *RawTensor, dim int, keepDim bool) *RawTensor  // Maximum along dimension.

	// Shape operations.
	Unsqueeze(x *RawTensor, dim int) *RawTensor // Insert a size-1 dimension.

	// Metadata.
	Name() string
	Device() Device
}

// Compile-time check that internal Backend implements public Backend.
var _ Backend = tensor.Backend(nil)
