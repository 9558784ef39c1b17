// Package imaging converts between raster images and (N, C, H, W) tensors and
// builds side-by-side comparison images for inspecting a decomposition.
package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/born-ml/retinex/internal/tensor"
)

// ConvertOption configures the color handling of tensor conversions.
type ConvertOption func(*convertOptions)

type convertOptions struct {
	linear bool
}

// WithLinearRGB makes conversions use linear light: sRGB pixels are
// linearized when read into a tensor, and tensor values are gamma-encoded
// back to sRGB when rendered.
func WithLinearRGB() ConvertOption {
	return func(o *convertOptions) {
		o.linear = true
	}
}

func collect(opts []ConvertOption) convertOptions {
	var o convertOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// RGBToTensor converts img to a (1, 3, H, W) tensor with values in [0, 1].
// Alpha is removed (colors are un-premultiplied); fully transparent pixels
// become black.
func RGBToTensor[T tensor.DType, B tensor.Backend](img image.Image, b B, opts ...ConvertOption) (*tensor.Tensor[T, B], error) {
	o := collect(opts)
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, ErrEmptyImage
	}

	t := tensor.Zeros[T, B](tensor.Shape{1, 3, h, w}, b)
	data := t.Data()
	plane := h * w
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c, ok := colorful.MakeColor(img.At(bounds.Min.X+x, bounds.Min.Y+y))
			if !ok {
				continue
			}
			r, g, bl := c.R, c.G, c.B
			if o.linear {
				r, g, bl = c.LinearRgb()
			}
			i := y*w + x
			data[i] = T(r)
			data[plane+i] = T(g)
			data[2*plane+i] = T(bl)
		}
	}
	return t, nil
}

// GrayToTensor converts img to a (1, 1, H, W) tensor of luminance in [0, 1].
func GrayToTensor[T tensor.DType, B tensor.Backend](img image.Image, b B) (*tensor.Tensor[T, B], error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, ErrEmptyImage
	}

	t := tensor.Zeros[T, B](tensor.Shape{1, 1, h, w}, b)
	data := t.Data()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			data[y*w+x] = T(g.Y) / 255
		}
	}
	return t, nil
}

// TensorToRGB renders batch item n of a (N, 3, H, W) tensor. Values are
// clamped to [0, 1] and scaled to 0..255.
func TensorToRGB[T tensor.DType, B tensor.Backend](t *tensor.Tensor[T, B], n int, opts ...ConvertOption) (*image.RGBA, error) {
	o := collect(opts)
	h, w, err := plane(t.Shape(), 3, n)
	if err != nil {
		return nil, fmt.Errorf("to rgb: %w", err)
	}

	data := t.Data()
	size := h * w
	base := n * 3 * size
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := base + y*w + x
			c := colorful.Color{
				R: unit(float64(data[i])),
				G: unit(float64(data[i+size])),
				B: unit(float64(data[i+2*size])),
			}
			if o.linear {
				c = colorful.LinearRgb(c.R, c.G, c.B).Clamped()
			}
			img.SetRGBA(x, y, color.RGBA{R: to8(c.R), G: to8(c.G), B: to8(c.B), A: 255})
		}
	}
	return img, nil
}

// TensorToGray renders batch item n of a (N, 1, H, W) tensor such as an
// illumination map. Values are clamped to [0, 1] and scaled to 0..255.
func TensorToGray[T tensor.DType, B tensor.Backend](t *tensor.Tensor[T, B], n int) (*image.Gray, error) {
	h, w, err := plane(t.Shape(), 1, n)
	if err != nil {
		return nil, fmt.Errorf("to gray: %w", err)
	}

	data := t.Data()
	base := n * h * w
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: to8(unit(float64(data[base+y*w+x])))})
		}
	}
	return img, nil
}

// plane checks that shape is (N, channels, H, W) with n < N and returns H, W.
func plane(shape tensor.Shape, channels, n int) (h, w int, err error) {
	if len(shape) != 4 || shape[1] != channels {
		return 0, 0, fmt.Errorf("got %v, want (N, %d, H, W): %w", shape, channels, ErrUnsupportedTensor)
	}
	if n < 0 || n >= shape[0] {
		return 0, 0, fmt.Errorf("batch index %d out of range [0, %d): %w", n, shape[0], ErrUnsupportedTensor)
	}
	return shape[2], shape[3], nil
}

// unit clamps v to [0, 1]. NaN maps to 0.
func unit(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	return math.Min(v, 1)
}

func to8(v float64) uint8 {
	return uint8(v*255 + 0.5)
}
