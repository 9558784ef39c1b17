package cpu

import (
	"fmt"

	"github.com/born-ml/retinex/internal/parallel"
	"github.com/born-ml/retinex/internal/tensor"
)

// Narrow copies x[..., start:start+length, ...] along dim into a new tensor.
//
// Example:
//
//	// img[:, :, 2:, :] for a [N, C, H, W] tensor
//	rows := backend.Narrow(img, 2, 2, h-2)
func (cpu *CPUBackend) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := x.Shape()
	dim = normalizeDim(dim, len(shape), "narrow")
	if start < 0 || length <= 0 || start+length > shape[dim] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for dimension %d (size %d)",
			start, start+length, dim, shape[dim]))
	}

	outShape := shape.Clone()
	outShape[dim] = length
	result := tensor.MustNewRaw(outShape, x.DType(), cpu.device)

	outer, size, inner := SplitAt(shape, dim)
	elem := x.DType().Size()
	block := length * inner * elem
	src, dst := x.Data(), result.Data()

	parallel.For(outer, func(o int) {
		from := (o*size + start) * inner * elem
		copy(dst[o*block:(o+1)*block], src[from:from+block])
	}, cpu.par)

	return result
}

// Unsqueeze inserts a dimension of size 1 at dim (negative dims count from
// the end of the result).
func (cpu *CPUBackend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape) + 1
	if dim < 0 {
		dim += ndim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("unsqueeze: dimension %d out of range for %dD result", dim, ndim))
	}

	newShape := make(tensor.Shape, 0, ndim)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, shape[dim:]...)

	result, err := x.Clone().Reshaped(newShape)
	if err != nil {
		panic(fmt.Sprintf("unsqueeze: %v", err))
	}
	return result
}
