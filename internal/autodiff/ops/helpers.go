package ops

import (
	"fmt"

	"github.com/born-ml/retinex/internal/tensor"
)

// reduceBroadcast sums grad down to targetShape, undoing forward broadcasting.
//
// Example:
//
//	Forward:  L[N,1,H,W] * R[N,3,H,W] -> out[N,3,H,W]
//	Backward: grad_out[N,3,H,W] -> grad_L[N,1,H,W] (summed over channels)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape) *tensor.RawTensor {
	// Clone even when shapes match so each input owns its gradient buffer.
	if grad.Shape().Equal(targetShape) {
		return grad.Clone()
	}

	result := tensor.MustNewRaw(targetShape, grad.DType(), grad.Device())
	switch grad.DType() {
	case tensor.Float32:
		sumInto(result.AsFloat32(), grad.AsFloat32(), grad.Shape(), targetShape)
	case tensor.Float64:
		sumInto(result.AsFloat64(), grad.AsFloat64(), grad.Shape(), targetShape)
	default:
		panic(fmt.Sprintf("reduceBroadcast: unsupported dtype %s", grad.DType()))
	}
	return result
}

func sumInto[T tensor.DType](dst, src []T, srcShape, dstShape tensor.Shape) {
	srcStrides := srcShape.ComputeStrides()
	dstStrides := tensor.BroadcastStrides(dstShape, srcShape)
	for i, v := range src {
		dst[tensor.FlatIndex(i, srcStrides, dstStrides)] += v
	}
}

// negate returns -grad.
func negate(grad *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustNewRaw(grad.Shape(), grad.DType(), grad.Device())
	switch grad.DType() {
	case tensor.Float32:
		negInto(result.AsFloat32(), grad.AsFloat32())
	case tensor.Float64:
		negInto(result.AsFloat64(), grad.AsFloat64())
	default:
		panic(fmt.Sprintf("negate: unsupported dtype %s", grad.DType()))
	}
	return result
}

func negInto[T tensor.DType](dst, src []T) {
	for i, v := range src {
		dst[i] = -v
	}
}

func fill[T tensor.DType](dst []T, v T) {
	for i := range dst {
		dst[i] = v
	}
}
