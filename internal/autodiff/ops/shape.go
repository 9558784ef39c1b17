package ops

import (
	"fmt"

	"github.com/born-ml/retinex/internal/tensor"
)

// NarrowOp represents output = x[..., start:start+length, ...] along dim.
//
// Backward: grad_x is zero everywhere except the narrowed range, which
// receives outputGrad.
type NarrowOp struct {
	base
	dim   int
	start int
}

// NewNarrowOp creates a new NarrowOp. dim must already be normalized.
func NewNarrowOp(x, output *tensor.RawTensor, dim, start int) *NarrowOp {
	return &NarrowOp{
		base:  base{inputs: []*tensor.RawTensor{x}, output: output},
		dim:   dim,
		start: start,
	}
}

// Backward scatters outputGrad back into the input's shape.
func (op *NarrowOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	shape := x.Shape()
	grad := tensor.MustNewRaw(shape, x.DType(), x.Device())

	outer, inner := 1, 1
	for i := 0; i < op.dim; i++ {
		outer *= shape[i]
	}
	for i := op.dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	size := shape[op.dim]
	length := outputGrad.Shape()[op.dim]

	elem := x.DType().Size()
	block := length * inner * elem
	src, dst := outputGrad.Data(), grad.Data()
	for o := 0; o < outer; o++ {
		to := (o*size + op.start) * inner * elem
		copy(dst[to:to+block], src[o*block:(o+1)*block])
	}

	return []*tensor.RawTensor{grad}
}

// UnsqueezeOp represents output = x with a size-1 dimension inserted.
//
// Backward: grad_x = outputGrad with the size-1 dimension dropped.
type UnsqueezeOp struct{ base }

// NewUnsqueezeOp creates a new UnsqueezeOp.
func NewUnsqueezeOp(x, output *tensor.RawTensor) *UnsqueezeOp {
	return &UnsqueezeOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Backward reshapes the gradient back to the input shape.
func (op *UnsqueezeOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad, err := outputGrad.Clone().Reshaped(op.inputs[0].Shape())
	if err != nil {
		panic(fmt.Sprintf("unsqueeze backward: %v", err))
	}
	return []*tensor.RawTensor{grad}
}
