package imaging

import "errors"

var (
	// ErrSizeMismatch is returned when images that must be the same size are not.
	ErrSizeMismatch = errors.New("imaging: image sizes differ")

	// ErrUnsupportedTensor is returned when a tensor cannot be rendered as an
	// image of the requested kind.
	ErrUnsupportedTensor = errors.New("imaging: unsupported tensor shape")

	// ErrEmptyImage is returned for images with zero width or height.
	ErrEmptyImage = errors.New("imaging: empty image")
)
