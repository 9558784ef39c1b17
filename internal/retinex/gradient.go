package retinex

import (
	"fmt"

	"github.com/born-ml/retinex/internal/tensor"
)

// Gradient computes stride-2 absolute finite differences of a batch of images.
//
//	h = |img[:, :, 2:, :] - img[:, :, :H-2, :]|   shape (N, C, H-2, W)
//	w = |img[:, :, :, 2:] - img[:, :, :, :W-2]|   shape (N, C, H, W-2)
//
// The difference at row i compares rows i+2 and i, so adjacent pixels are
// never compared directly. Both results stay on the tape.
func Gradient[T tensor.DType, B tensor.Backend](img *tensor.Tensor[T, B]) (h, w *tensor.Tensor[T, B], err error) {
	if err := checkImage("gradient", img.Shape()); err != nil {
		return nil, nil, err
	}

	shape := img.Shape()
	height, width := shape[2], shape[3]

	h = img.Narrow(2, 2, height-2).Sub(img.Narrow(2, 0, height-2)).Abs()
	w = img.Narrow(3, 2, width-2).Sub(img.Narrow(3, 0, width-2)).Abs()
	return h, w, nil
}

func checkImage(op string, shape tensor.Shape) error {
	if len(shape) != 4 {
		return fmt.Errorf("%s: got shape %v: %w", op, shape, ErrNotImage)
	}
	if shape[2] < 3 || shape[3] < 3 {
		return fmt.Errorf("%s: got %dx%d: %w", op, shape[2], shape[3], ErrTooSmall)
	}
	return nil
}
