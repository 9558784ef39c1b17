// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/retinex/internal/tensor"
)

// RawTensor is the low-level tensor representation: a byte buffer plus
// shape, dtype and device.
//
// Gradients are keyed by *RawTensor, so two RawTensors sharing a buffer
// (see Tensor.Detach) are distinct for differentiation.
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
//	data := raw.AsFloat32() // zero-copy view
//	clone := raw.Clone()    // deep copy
type RawTensor = tensor.RawTensor
