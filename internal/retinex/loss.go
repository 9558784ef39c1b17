package retinex

import (
	"fmt"

	"github.com/born-ml/retinex/internal/tensor"
)

// MSE computes the mean squared error between a and b.
// Shapes must match exactly, no broadcasting is applied.
//
//	MSE(a, b) = mean((a - b)²)
func MSE[T tensor.DType, B tensor.Backend](a, b *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	if !a.Shape().Equal(b.Shape()) {
		return nil, fmt.Errorf("mse: %v vs %v: %w", a.Shape(), b.Shape(), ErrShapeMismatch)
	}
	diff := a.Sub(b)
	return diff.Mul(diff).Mean(), nil
}

// TVLoss computes the total-variation smoothness loss of an illumination map:
// mean(h) + mean(w) where h and w come from Gradient.
//
// A constant map has zero loss.
func TVLoss[T tensor.DType, B tensor.Backend](illumination *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	h, w, err := Gradient(illumination)
	if err != nil {
		return nil, fmt.Errorf("tv loss: %w", err)
	}
	return h.Mean().Add(w.Mean()), nil
}

// ConsistencyLoss compares two reflectance maps with MSE.
// Reflectance is illumination invariant, so two exposures of the same scene
// should decompose to the same map.
func ConsistencyLoss[T tensor.DType, B tensor.Backend](r1, r2 *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	loss, err := MSE(r1, r2)
	if err != nil {
		return nil, fmt.Errorf("consistency loss: %w", err)
	}
	return loss, nil
}

// ReconstructionLoss compares an input image with its reconstruction using MSE.
func ReconstructionLoss[T tensor.DType, B tensor.Backend](im1, x1 *tensor.Tensor[T, B]) (*tensor.Tensor[T, B], error) {
	loss, err := MSE(im1, x1)
	if err != nil {
		return nil, fmt.Errorf("reconstruction loss: %w", err)
	}
	return loss, nil
}
