package imaging

import (
	"fmt"
	"image"
	"image/color"
)

// JoinRGBHorizontal places a and b side by side in a new opaque RGBA image
// of size (2W, H). a fills x in [0, W) and b fills [W, 2W). Alpha is dropped:
// each pixel keeps its straight (non-premultiplied) color. The inputs are not
// modified.
//
// Both images must have the same size, otherwise ErrSizeMismatch is returned.
func JoinRGBHorizontal(a, b image.Image) (*image.RGBA, error) {
	size, err := joinSize(a, b)
	if err != nil {
		return nil, fmt.Errorf("join rgb: %w", err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, 2*size.X, size.Y))
	paste(a, b, size, func(x, y int, c color.RGBA) {
		dst.SetRGBA(x, y, c)
	})
	return dst, nil
}

// JoinLHorizontal is JoinRGBHorizontal for single-channel output. The
// straight color of each pixel is converted to luminance (ITU-R 601 weights).
func JoinLHorizontal(a, b image.Image) (*image.Gray, error) {
	size, err := joinSize(a, b)
	if err != nil {
		return nil, fmt.Errorf("join l: %w", err)
	}
	dst := image.NewGray(image.Rect(0, 0, 2*size.X, size.Y))
	paste(a, b, size, func(x, y int, c color.RGBA) {
		dst.SetGray(x, y, color.GrayModel.Convert(c).(color.Gray))
	})
	return dst, nil
}

func joinSize(a, b image.Image) (image.Point, error) {
	sa, sb := a.Bounds().Size(), b.Bounds().Size()
	if sa != sb {
		return image.Point{}, fmt.Errorf("%v vs %v: %w", sa, sb, ErrSizeMismatch)
	}
	if sa.X == 0 || sa.Y == 0 {
		return image.Point{}, ErrEmptyImage
	}
	return sa, nil
}

// paste calls set for every pixel of a at x in [0, W) and of b at [W, 2W),
// with alpha removed.
func paste(a, b image.Image, size image.Point, set func(x, y int, c color.RGBA)) {
	for i, src := range []image.Image{a, b} {
		origin := src.Bounds().Min
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				set(i*size.X+x, y, opaque(src.At(origin.X+x, origin.Y+y)))
			}
		}
	}
}

// opaque un-premultiplies c and sets alpha to 255.
func opaque(c color.Color) color.RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.RGBA{R: n.R, G: n.G, B: n.B, A: 255}
}
