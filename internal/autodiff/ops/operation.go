// Package ops defines the differentiable operations recorded by the gradient tape.
//
// Each operation keeps its inputs and output from the forward pass and
// computes input gradients in Backward:
//   - AddOp, SubOp, MulOp, DivOp: element-wise arithmetic with broadcasting
//   - AbsOp: d|x|/dx = sign(x)
//   - ClampMinOp: gradient passes where x >= lo
//   - NarrowOp: gradient scattered back into the sliced range
//   - MeanOp: gradient spread evenly over all elements
//   - MaxDimOp: gradient routed to the first maximum along dim
//   - UnsqueezeOp: gradient reshaped back to the input shape
package ops

import "github.com/born-ml/retinex/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns one gradient per input, in the order of Inputs().
	// A nil entry means no gradient flows to that input.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// base holds the bookkeeping shared by every op.
type base struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

// Inputs returns the input tensors.
func (b *base) Inputs() []*tensor.RawTensor {
	return b.inputs
}

// Output returns the output tensor.
func (b *base) Output() *tensor.RawTensor {
	return b.output
}
