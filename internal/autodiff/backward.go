package autodiff

import (
	"fmt"

	"github.com/born-ml/retinex/internal/tensor"
)

// BackwardCapable is an interface for backends that support backward pass.
// AutodiffBackend implements this interface.
type BackwardCapable interface {
	tensor.Backend
	// GetTape returns the gradient tape for backward computation.
	GetTape() *GradientTape
}

// GetTape returns the gradient tape (implements BackwardCapable interface).
func (b *AutodiffBackend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward computes gradients of t (seeded with ones) using the backend's tape.
//
// Returns a map from RawTensor to its gradient. Look up a leaf with
// grads[x.Raw()], or use Grad.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	loss, _ := retinex.DecompositionLoss(l, r, im, x)
//	grads := autodiff.Backward(loss, backend)
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()

	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}

	outputGrad, err := tensor.NewRaw(t.Shape(), t.DType(), backend.Device())
	if err != nil {
		panic(fmt.Sprintf("backward: failed to create output gradient: %v", err))
	}
	ones := tensor.Values[T](outputGrad)
	for i := range ones {
		ones[i] = 1
	}

	return tape.Backward(t.Raw(), outputGrad, backend)
}

// Grad returns the gradient of x from grads as a tensor, or nil if no gradient
// reached x.
func Grad[T tensor.DType, B tensor.Backend](grads map[*tensor.RawTensor]*tensor.RawTensor, x *tensor.Tensor[T, B]) *tensor.Tensor[T, B] {
	g, ok := grads[x.Raw()]
	if !ok {
		return nil
	}
	return tensor.New[T, B](g, x.Backend())
}
