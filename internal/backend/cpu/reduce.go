package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/retinex/internal/parallel"
	"github.com/born-ml/retinex/internal/tensor"
)

// Mean returns the mean of all elements of x as a scalar (shape []).
// Float32 input is accumulated in float64.
func (cpu *CPUBackend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustNewRaw(tensor.Shape{}, x.DType(), cpu.device)
	n := float64(x.NumElements())

	switch x.DType() {
	case tensor.Float32:
		var sum float64
		for _, v := range x.AsFloat32() {
			sum += float64(v)
		}
		result.AsFloat32()[0] = float32(sum / n)
	case tensor.Float64:
		result.AsFloat64()[0] = floats.Sum(x.AsFloat64()) / n
	default:
		panic(fmt.Sprintf("mean: unsupported dtype %s", x.DType()))
	}

	return result
}

// MaxDim returns the maximum of x along dim. A NaN anywhere along dim
// makes the result NaN.
//
// Parameters:
//   - dim: dimension to reduce (supports negative indexing: -1 = last dim)
//   - keepDim: if true, keep the reduced dimension with size 1; if false, remove it
//
// Example:
//
//	img := tensor.Arange[float32](0, tensor.Shape{2, 3, 8, 8}, backend)
//	m := backend.MaxDim(img.Raw(), 1, true) // shape: [2, 1, 8, 8]
func (cpu *CPUBackend) MaxDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeDim(dim, len(shape), "maxdim")

	result := tensor.MustNewRaw(ReducedShape(shape, dim, keepDim), x.DType(), cpu.device)
	outer, size, inner := SplitAt(shape, dim)

	switch x.DType() {
	case tensor.Float32:
		maxDimKernel(result.AsFloat32(), x.AsFloat32(), outer, size, inner, cpu.par)
	case tensor.Float64:
		maxDimKernel(result.AsFloat64(), x.AsFloat64(), outer, size, inner, cpu.par)
	default:
		panic(fmt.Sprintf("maxdim: unsupported dtype %s", x.DType()))
	}

	return result
}

func maxDimKernel[T tensor.DType](dst, src []T, outer, size, inner int, cfg parallel.Config) {
	parallel.ForRange(outer*inner, func(lo, hi int) {
		for idx := lo; idx < hi; idx++ {
			o, i := idx/inner, idx%inner
			base := o*size*inner + i
			best := src[base]
			for k := 1; k < size && best == best; k++ {
				if v := src[base+k*inner]; v > best || v != v {
					best = v
				}
			}
			dst[idx] = best
		}
	}, cfg)
}

// ReducedShape returns shape with dim reduced to 1 (keepDim) or removed.
func ReducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	if keepDim {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != dim {
			out = append(out, d)
		}
	}
	return out
}

// SplitAt views shape as (outer, shape[dim], inner).
func SplitAt(shape tensor.Shape, dim int) (outer, size, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[dim], inner
}

func normalizeDim(dim, ndim int, op string) int {
	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("%s: dimension %d out of range for %dD tensor", op, dim, ndim))
	}
	return dim
}
