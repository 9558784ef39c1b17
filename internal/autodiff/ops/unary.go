package ops

import (
	"fmt"

	"github.com/born-ml/retinex/internal/tensor"
)

// AbsOp represents output = |x|.
//
// Backward: grad_x = outputGrad * sign(x), with sign(0) = 0.
type AbsOp struct{ base }

// NewAbsOp creates a new AbsOp.
func NewAbsOp(x, output *tensor.RawTensor) *AbsOp {
	return &AbsOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Backward computes the input gradient for |x|.
func (op *AbsOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	grad := tensor.MustNewRaw(x.Shape(), x.DType(), x.Device())

	switch x.DType() {
	case tensor.Float32:
		absGrad(grad.AsFloat32(), outputGrad.AsFloat32(), x.AsFloat32())
	case tensor.Float64:
		absGrad(grad.AsFloat64(), outputGrad.AsFloat64(), x.AsFloat64())
	default:
		panic(fmt.Sprintf("abs backward: unsupported dtype %s", x.DType()))
	}

	return []*tensor.RawTensor{grad}
}

func absGrad[T tensor.DType](dst, g, x []T) {
	for i, v := range x {
		switch {
		case v > 0:
			dst[i] = g[i]
		case v < 0:
			dst[i] = -g[i]
		}
	}
}

// ClampMinOp represents output = max(x, lo).
//
// Backward: grad_x = outputGrad where x >= lo, else 0.
type ClampMinOp struct {
	base
	lo float64
}

// NewClampMinOp creates a new ClampMinOp.
func NewClampMinOp(x, output *tensor.RawTensor, lo float64) *ClampMinOp {
	return &ClampMinOp{base: base{inputs: []*tensor.RawTensor{x}, output: output}, lo: lo}
}

// Backward computes the input gradient for the clamp.
func (op *ClampMinOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	grad := tensor.MustNewRaw(x.Shape(), x.DType(), x.Device())

	switch x.DType() {
	case tensor.Float32:
		clampGrad(grad.AsFloat32(), outputGrad.AsFloat32(), x.AsFloat32(), float32(op.lo))
	case tensor.Float64:
		clampGrad(grad.AsFloat64(), outputGrad.AsFloat64(), x.AsFloat64(), op.lo)
	default:
		panic(fmt.Sprintf("clampmin backward: unsupported dtype %s", x.DType()))
	}

	return []*tensor.RawTensor{grad}
}

func clampGrad[T tensor.DType](dst, g, x []T, lo T) {
	for i, v := range x {
		if v >= lo {
			dst[i] = g[i]
		}
	}
}
