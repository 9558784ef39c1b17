// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package retinex provides the losses used to train a Retinex-style
// decomposition of images into illumination and reflectance maps.
//
// Example:
//
//	import (
//	    "github.com/born-ml/retinex/autodiff"
//	    "github.com/born-ml/retinex/backend/cpu"
//	    "github.com/born-ml/retinex/retinex"
//	)
//
//	func step(l1, r1, im1, x1 *tensor.Tensor[float32, *autodiff.Backend[*cpu.Backend]]) error {
//	    backend := l1.Backend()
//	    backend.Tape().Clear()
//	    backend.Tape().StartRecording()
//
//	    loss, err := retinex.DecompositionLoss(l1, r1, im1, x1, retinex.WithEpsilon(1e-4))
//	    if err != nil {
//	        return err
//	    }
//	    grads := autodiff.Backward(loss, backend)
//	    _ = autodiff.Grad(grads, l1)
//	    return nil
//	}
package retinex

import (
	"github.com/born-ml/retinex/internal/retinex"
	"github.com/born-ml/retinex/internal/tensor"
)

// Validation errors, comparable with errors.Is.
var (
	ErrNotImage      = retinex.ErrNotImage
	ErrTooSmall      = retinex.ErrTooSmall
	ErrShapeMismatch = retinex.ErrShapeMismatch
	ErrNonFinite     = retinex.ErrNonFinite
)

// Option configures DecompositionLoss and DecompositionTerms.
type Option = retinex.Option

// Terms holds every component of the decomposition loss.
type Terms[T tensor.DType, B tensor.Backend] = retinex.Terms[T, B]

// WithEpsilon clamps the detached illumination divisor of the ratio term to
// at least eps.
func WithEpsilon(eps float64) Option {
	return retinex.WithEpsilon(eps)
}

// Gradient returns the stride-2 absolute differences of img along H and W.
func Gradient[T tensor.DType, B tensor.Backend](img *tensor.Tensor[T, B]) (h, w *tensor.Tensor[T, B], err error) {
	return retinex.Gradient(img)
}

// MSE computes mean((a - b)²). Shapes must match.
func MSE[T tensor.DType, B tensor.Backend](a, b *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	return retinex.MSE(a, b)
}

// TVLoss computes the total-variation smoothness loss of an illumination map.
func TVLoss[T tensor.DType, B tensor.Backend](illumination *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	return retinex.TVLoss(illumination)
}

// ConsistencyLoss compares two reflectance maps with MSE.
func ConsistencyLoss[T tensor.DType, B tensor.Backend](r1, r2 *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	return retinex.ConsistencyLoss(r1, r2)
}

// ReconstructionLoss compares an input image with its reconstruction using MSE.
func ReconstructionLoss[T tensor.DType, B tensor.Backend](im1, x1 *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	return retinex.ReconstructionLoss(im1, x1)
}

// DecompositionLoss computes the total reflectance/illumination loss.
func DecompositionLoss[T tensor.DType, B tensor.Backend](l1, r1, im1, x1 *tensor.Tensor[T, B], opts ...Option) (*tensor.Tensor[T, B], error) {
	return retinex.DecompositionLoss(l1, r1, im1, x1, opts...)
}

// DecompositionTerms computes every component of the decomposition loss.
func DecompositionTerms[T tensor.DType, B tensor.Backend](l1, r1, im1, x1 *tensor.Tensor[T, B], opts ...Option) (*Terms[T, B], error) {
	return retinex.DecompositionTerms(l1, r1, im1, x1, opts...)
}
