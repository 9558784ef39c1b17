package ops

import (
	"fmt"

	"github.com/born-ml/retinex/internal/tensor"
)

// MeanOp represents output = mean(x) over all elements (scalar output).
//
// Backward: grad_x[i] = outputGrad / numel(x).
type MeanOp struct{ base }

// NewMeanOp creates a new MeanOp.
func NewMeanOp(x, output *tensor.RawTensor) *MeanOp {
	return &MeanOp{base{inputs: []*tensor.RawTensor{x}, output: output}}
}

// Backward spreads the scalar gradient evenly across the input.
func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0]
	grad := tensor.MustNewRaw(x.Shape(), x.DType(), x.Device())
	n := x.NumElements()

	switch x.DType() {
	case tensor.Float32:
		fill(grad.AsFloat32(), outputGrad.AsFloat32()[0]/float32(n))
	case tensor.Float64:
		fill(grad.AsFloat64(), outputGrad.AsFloat64()[0]/float64(n))
	default:
		panic(fmt.Sprintf("mean backward: unsupported dtype %s", x.DType()))
	}

	return []*tensor.RawTensor{grad}
}

// MaxDimOp represents output = max(x, dim).
//
// Backward: each output gradient goes to the first input position along dim
// that holds the maximum, or the first NaN when the maximum is NaN. Ties do
// not split the gradient.
type MaxDimOp struct {
	base
	dim int
}

// NewMaxDimOp creates a new MaxDimOp. dim must already be normalized.
func NewMaxDimOp(x, output *tensor.RawTensor, dim int) *MaxDimOp {
	return &MaxDimOp{base: base{inputs: []*tensor.RawTensor{x}, output: output}, dim: dim}
}

// Backward routes the gradient to the argmax positions.
func (op *MaxDimOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
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

	switch x.DType() {
	case tensor.Float32:
		maxDimGrad(grad.AsFloat32(), outputGrad.AsFloat32(), x.AsFloat32(), op.output.AsFloat32(), outer, size, inner)
	case tensor.Float64:
		maxDimGrad(grad.AsFloat64(), outputGrad.AsFloat64(), x.AsFloat64(), op.output.AsFloat64(), outer, size, inner)
	default:
		panic(fmt.Sprintf("maxdim backward: unsupported dtype %s", x.DType()))
	}

	return []*tensor.RawTensor{grad}
}

func maxDimGrad[T tensor.DType](dst, g, x, maxVals []T, outer, size, inner int) {
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			idx := o*inner + i
			first := o*size*inner + i
			m := maxVals[idx]
			for k := 0; k < size; k++ {
				if v := x[first+k*inner]; v == m || (m != m && v != v) {
					dst[first+k*inner] = g[idx]
					break
				}
			}
		}
	}
}
