package tensor

// Backend defines the operations a compute backend must provide.
// Backends handle the actual computation for tensor operations; the autodiff
// backend decorates another Backend and records every call on its tape.
//
// All operations return newly allocated tensors and never modify their inputs.
// Programmer errors (incompatible shapes, out-of-range dims) panic.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Element-wise unary operations.
	Abs(x *RawTensor) *RawTensor
	ClampMin(x *RawTensor, lo float64) *RawTensor // max(x, lo)

	// Narrow returns x[..., start:start+length, ...] along dim (copied).
	Narrow(x *RawTensor, dim, start, length int) *RawTensor

	// Reductions.
	Mean(x *RawTensor) *RawTensor                          // mean of all elements, scalar result
	MaxDim(x *RawTensor, dim int, keepDim bool) *RawTensor // maximum along dimension

	// Unsqueeze inserts a size-1 dimension at dim (negative dims count from
	// the end of the result). The data is copied.
	Unsqueeze(x *RawTensor, dim int) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
