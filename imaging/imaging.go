// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package imaging converts images to and from tensors and joins images side
// by side for visual comparison of decompositions.
//
// Example:
//
//	left, _ := imaging.LoadPNG("input.png")
//	right, _ := imaging.LoadPNG("reconstruction.png")
//	joined, err := imaging.JoinRGBHorizontal(left, right)
//	if err != nil {
//	    return err
//	}
//	return imaging.SavePNG("compare.png", joined)
package imaging

import (
	"image"

	"github.com/born-ml/retinex/internal/imaging"
	"github.com/born-ml/retinex/internal/tensor"
)

// Errors, comparable with errors.Is.
var (
	ErrSizeMismatch      = imaging.ErrSizeMismatch
	ErrUnsupportedTensor = imaging.ErrUnsupportedTensor
	ErrEmptyImage        = imaging.ErrEmptyImage
)

// ConvertOption configures color handling of conversions.
type ConvertOption = imaging.ConvertOption

// WithLinearRGB converts between sRGB pixels and linear-light tensor values.
func WithLinearRGB() ConvertOption {
	return imaging.WithLinearRGB()
}

// JoinRGBHorizontal places a and b side by side in a (2W, H) RGBA image.
// Sizes must match, otherwise ErrSizeMismatch is returned.
func JoinRGBHorizontal(a, b image.Image) (*image.RGBA, error) {
	return imaging.JoinRGBHorizontal(a, b)
}

// JoinLHorizontal places a and b side by side in a (2W, H) grayscale image.
func JoinLHorizontal(a, b image.Image) (*image.Gray, error) {
	return imaging.JoinLHorizontal(a, b)
}

// RGBToTensor converts img to a (1, 3, H, W) tensor in [0, 1].
func RGBToTensor[T tensor.DType, B tensor.Backend](img image.Image, b B, opts ...ConvertOption) (*tensor.Tensor[T, B], error) {
	return imaging.RGBToTensor[T](img, b, opts...)
}

// GrayToTensor converts img to a (1, 1, H, W) luminance tensor in [0, 1].
func GrayToTensor[T tensor.DType, B tensor.Backend](img image.Image, b B) (*tensor.Tensor[T, B], error) {
	return imaging.GrayToTensor[T](img, b)
}

// TensorToRGB renders batch item n of a (N, 3, H, W) tensor.
func TensorToRGB[T tensor.DType, B tensor.Backend](t *tensor.Tensor[T, B], n int, opts ...ConvertOption) (*image.RGBA, error) {
	return imaging.TensorToRGB(t, n, opts...)
}

// TensorToGray renders batch item n of a (N, 1, H, W) tensor.
func TensorToGray[T tensor.DType, B tensor.Backend](t *tensor.Tensor[T, B], n int) (*image.Gray, error) {
	return imaging.TensorToGray(t, n)
}

// LoadPNG decodes the PNG file at path.
func LoadPNG(path string) (image.Image, error) {
	return imaging.LoadPNG(path)
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	return imaging.SavePNG(path, img)
}
