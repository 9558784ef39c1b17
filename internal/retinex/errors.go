package retinex

import "errors"

// Validation errors. Functions wrap them with context, so compare with errors.Is.
var (
	// ErrNotImage is returned when a tensor is not 4-D (N, C, H, W).
	ErrNotImage = errors.New("retinex: tensor is not a 4-D (N, C, H, W) image batch")

	// ErrTooSmall is returned when H or W is below 3, where the stride-2
	// gradient would be empty.
	ErrTooSmall = errors.New("retinex: image smaller than 3x3")

	// ErrShapeMismatch is returned when input shapes are not compatible.
	ErrShapeMismatch = errors.New("retinex: shape mismatch")

	// ErrNonFinite is returned when a loss evaluates to NaN or Inf.
	ErrNonFinite = errors.New("retinex: loss is not finite")
)
