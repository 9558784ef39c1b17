// Package interop converts between gorgonia.org/tensor dense tensors and the
// tensors used by the loss library, so decomposition networks built on
// gorgonia can feed their outputs to the losses and read gradients back.
package interop

import (
	"errors"
	"fmt"

	gtensor "gorgonia.org/tensor"

	"github.com/born-ml/retinex/internal/tensor"
)

// ErrDtype is returned when a dense tensor's element type does not match T.
var ErrDtype = errors.New("interop: dtype mismatch")

// FromDense copies d into a new tensor on backend b.
// d must hold float32 or float64 elements matching T. Views are materialized
// first; scalars become shape [].
func FromDense[T tensor.DType, B tensor.Backend](d *gtensor.Dense, b B) (*tensor.Tensor[T, B], error) {
	want := denseDtype[T]()
	if d.Dtype() != want {
		return nil, fmt.Errorf("from dense: got %v, want %v: %w", d.Dtype(), want, ErrDtype)
	}
	if d.IsView() {
		m, ok := d.Materialize().(*gtensor.Dense)
		if !ok {
			return nil, fmt.Errorf("from dense: cannot materialize view of shape %v", d.Shape())
		}
		d = m
	}

	var shape tensor.Shape
	if !d.IsScalar() {
		shape = tensor.Shape(d.Shape().Clone())
	}

	var data []T
	switch v := d.Data().(type) {
	case []T:
		data = v
	case T:
		data = []T{v}
	default:
		return nil, fmt.Errorf("from dense: unexpected backing %T: %w", v, ErrDtype)
	}
	if len(data) < shape.NumElements() {
		return nil, fmt.Errorf("from dense: backing has %d elements, shape %v needs %d",
			len(data), shape, shape.NumElements())
	}
	return tensor.FromSlice(data[:shape.NumElements()], shape, b)
}

// ToDense copies t into a new gorgonia dense tensor.
func ToDense[T tensor.DType, B tensor.Backend](t *tensor.Tensor[T, B]) *gtensor.Dense {
	data := make([]T, t.NumElements())
	copy(data, t.Data())

	if len(t.Shape()) == 0 {
		return gtensor.New(gtensor.FromScalar(data[0]))
	}
	return gtensor.New(gtensor.WithShape(t.Shape().Clone()...), gtensor.WithBacking(data))
}

// Gradients converts the gradient of each tensor in xs to a dense tensor.
// Entries for tensors that received no gradient are nil.
func Gradients[T tensor.DType, B tensor.Backend](
	grads map[*tensor.RawTensor]*tensor.RawTensor,
	xs ...*tensor.Tensor[T, B],
) []*gtensor.Dense {
	out := make([]*gtensor.Dense, len(xs))
	for i, x := range xs {
		g, ok := grads[x.Raw()]
		if !ok {
			continue
		}
		out[i] = ToDense(tensor.New[T, B](g, x.Backend()))
	}
	return out
}

func denseDtype[T tensor.DType]() gtensor.Dtype {
	if tensor.DataTypeOf[T]() == tensor.Float64 {
		return gtensor.Float64
	}
	return gtensor.Float32
}
