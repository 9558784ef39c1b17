package retinex

import (
	"fmt"
	"math"

	"github.com/born-ml/retinex/internal/tensor"
)

// Option configures DecompositionLoss and DecompositionTerms.
type Option func(*options)

type options struct {
	epsilon float64
}

// WithEpsilon clamps the detached illumination to at least eps before it is
// used as a divisor in the ratio term. eps <= 0 disables the clamp.
//
// Only the divisor is clamped: L1 itself, and every other term that uses it,
// sees the unclamped values.
func WithEpsilon(eps float64) Option {
	return func(o *options) {
		o.epsilon = eps
	}
}

// Terms holds every component of the decomposition loss as scalar tensors.
// All terms have weight 1, so Total is their sum.
type Terms[T tensor.DType, B tensor.Backend] struct {
	// Reconstruction is MSE(L1 * R1, X1).
	Reconstruction *tensor.Tensor[T, B]
	// Ratio is MSE(R1, X1 / detach(L1)). No gradient reaches L1 through it.
	Ratio *tensor.Tensor[T, B]
	// MaxChannel is MSE(L1, max_c(im1)).
	MaxChannel *tensor.Tensor[T, B]
	// Smoothness is TVLoss(L1).
	Smoothness *tensor.Tensor[T, B]
	// EdgeH and EdgeW are MSE between the stride-2 gradients of R1 and X1.
	EdgeH *tensor.Tensor[T, B]
	EdgeW *tensor.Tensor[T, B]

	Total *tensor.Tensor[T, B]
}

// Values returns the terms as float64, keyed by name.
func (t *Terms[T, B]) Values() map[string]float64 {
	return map[string]float64{
		"reconstruction": float64(t.Reconstruction.Item()),
		"ratio":          float64(t.Ratio.Item()),
		"max_channel":    float64(t.MaxChannel.Item()),
		"smoothness":     float64(t.Smoothness.Item()),
		"edge_h":         float64(t.EdgeH.Item()),
		"edge_w":         float64(t.EdgeW.Item()),
		"total":          float64(t.Total.Item()),
	}
}

// DecompositionLoss is the total of DecompositionTerms.
//
//	l1  illumination  (N, 1, H, W)
//	r1  reflectance   (N, 3, H, W)
//	im1 input image   (N, 3, H, W)
//	x1  target image  (N, 3, H, W)
//
// When the total is NaN or Inf the tensor is returned together with an
// error wrapping ErrNonFinite.
func DecompositionLoss[T tensor.DType, B tensor.Backend](
	l1, r1, im1, x1 *tensor.Tensor[T, B],
	opts ...Option,
) (*tensor.Tensor[T, B], error) {
	terms, err := DecompositionTerms(l1, r1, im1, x1, opts...)
	if terms == nil {
		return nil, err
	}
	return terms.Total, err
}

// DecompositionTerms computes the reflectance/illumination decomposition loss:
//
//	loss1 = MSE(L1 * R1, X1) + MSE(R1, X1 / detach(L1))
//	loss2 = MSE(L1, max_c(im1)) + TVLoss(L1)
//	total = loss1 + loss2 + MSE(grad_h(R1), grad_h(X1)) + MSE(grad_w(R1), grad_w(X1))
//
// L1 is broadcast across the 3 channels.
func DecompositionTerms[T tensor.DType, B tensor.Backend](
	l1, r1, im1, x1 *tensor.Tensor[T, B],
	opts ...Option,
) (*Terms[T, B], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := checkDecomposition(l1.Shape(), r1.Shape(), im1.Shape(), x1.Shape()); err != nil {
		return nil, err
	}

	maxRGB := im1.MaxDim(1, false).Unsqueeze(1)

	rh, rw, err := Gradient(r1)
	if err != nil {
		return nil, fmt.Errorf("decomposition loss: reflectance: %w", err)
	}
	xh, xw, err := Gradient(x1)
	if err != nil {
		return nil, fmt.Errorf("decomposition loss: target: %w", err)
	}

	terms := &Terms[T, B]{}
	if terms.EdgeH, err = MSE(rh, xh); err != nil {
		return nil, fmt.Errorf("decomposition loss: edge h: %w", err)
	}
	if terms.EdgeW, err = MSE(rw, xw); err != nil {
		return nil, fmt.Errorf("decomposition loss: edge w: %w", err)
	}
	if terms.Smoothness, err = TVLoss(l1); err != nil {
		return nil, fmt.Errorf("decomposition loss: %w", err)
	}

	if terms.Reconstruction, err = MSE(l1.Mul(r1), x1); err != nil {
		return nil, fmt.Errorf("decomposition loss: reconstruction: %w", err)
	}

	divisor := l1.Detach()
	if o.epsilon > 0 {
		divisor = divisor.ClampMin(T(o.epsilon))
	}
	if terms.Ratio, err = MSE(r1, x1.Div(divisor)); err != nil {
		return nil, fmt.Errorf("decomposition loss: ratio: %w", err)
	}

	if terms.MaxChannel, err = MSE(l1, maxRGB); err != nil {
		return nil, fmt.Errorf("decomposition loss: max channel: %w", err)
	}

	loss1 := terms.Reconstruction.Add(terms.Ratio)
	loss2 := terms.MaxChannel.Add(terms.Smoothness)
	terms.Total = loss1.Add(loss2).Add(terms.EdgeH).Add(terms.EdgeW)

	if v := float64(terms.Total.Item()); math.IsNaN(v) || math.IsInf(v, 0) {
		return terms, fmt.Errorf("decomposition loss: total is %v: %w", v, ErrNonFinite)
	}
	return terms, nil
}

func checkDecomposition(l1, r1, im1, x1 tensor.Shape) error {
	for _, s := range []struct {
		name  string
		shape tensor.Shape
	}{{"illumination", l1}, {"reflectance", r1}, {"input", im1}, {"target", x1}} {
		if len(s.shape) != 4 {
			return fmt.Errorf("decomposition loss: %s shape %v: %w", s.name, s.shape, ErrNotImage)
		}
	}

	n, h, w := r1[0], r1[2], r1[3]
	want := tensor.Shape{n, 3, h, w}
	if !r1.Equal(want) {
		return fmt.Errorf("decomposition loss: reflectance shape %v, want 3 channels: %w", r1, ErrShapeMismatch)
	}
	if !im1.Equal(want) {
		return fmt.Errorf("decomposition loss: input shape %v, want %v: %w", im1, want, ErrShapeMismatch)
	}
	if !x1.Equal(want) {
		return fmt.Errorf("decomposition loss: target shape %v, want %v: %w", x1, want, ErrShapeMismatch)
	}
	if !l1.Equal(tensor.Shape{n, 1, h, w}) {
		return fmt.Errorf("decomposition loss: illumination shape %v, want %v: %w", l1, tensor.Shape{n, 1, h, w}, ErrShapeMismatch)
	}
	if h < 3 || w < 3 {
		return fmt.Errorf("decomposition loss: got %dx%d: %w", h, w, ErrTooSmall)
	}
	return nil
}
