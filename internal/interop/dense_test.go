package interop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gtensor "gorgonia.org/tensor"

	"github.com/born-ml/retinex/internal/autodiff"
	"github.com/born-ml/retinex/internal/backend/cpu"
	"github.com/born-ml/retinex/internal/interop"
	"github.com/born-ml/retinex/internal/retinex"
	"github.com/born-ml/retinex/internal/tensor"
)

func TestFromDense(t *testing.T) {
	backing := []float32{1, 2, 3, 4, 5, 6}
	d := gtensor.New(gtensor.WithShape(1, 1, 2, 3), gtensor.WithBacking(backing))

	x, err := interop.FromDense[float32](d, cpu.New())
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 1, 2, 3}, x.Shape())
	assert.Equal(t, backing, x.Data())

	x.Data()[0] = 100
	assert.Equal(t, float32(1), backing[0], "FromDense must copy")
}

func TestFromDense_DtypeMismatch(t *testing.T) {
	d := gtensor.New(gtensor.WithShape(2), gtensor.WithBacking([]float64{1, 2}))

	_, err := interop.FromDense[float32](d, cpu.New())
	assert.ErrorIs(t, err, interop.ErrDtype)
}

func TestFromDense_Scalar(t *testing.T) {
	d := gtensor.New(gtensor.FromScalar(2.5))

	x, err := interop.FromDense[float64](d, cpu.New())
	require.NoError(t, err)
	assert.Empty(t, x.Shape())
	assert.Equal(t, 2.5, x.Item())
}

func TestToDense_RoundTrip(t *testing.T) {
	backend := cpu.New()
	x := tensor.Arange[float64](0, tensor.Shape{2, 3, 2, 2}, backend)

	d := interop.ToDense(x)
	assert.Equal(t, gtensor.Float64, d.Dtype())
	assert.Equal(t, []int{2, 3, 2, 2}, []int(d.Shape()))

	v, err := d.At(1, 2, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, x.At(1, 2, 1, 0), v)

	back, err := interop.FromDense[float64](d, backend)
	require.NoError(t, err)
	assert.Equal(t, x.Data(), back.Data())
}

func TestToDense_Scalar(t *testing.T) {
	backend := cpu.New()
	x := tensor.Arange[float32](1, tensor.Shape{4}, backend).Mean()

	d := interop.ToDense(x)
	assert.True(t, d.IsScalar())
	assert.Equal(t, float32(2.5), d.Data())
}

func TestGradients(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	l := gtensor.New(gtensor.WithShape(1, 1, 3, 3), gtensor.WithBacking([]float32{
		0.1, 0.5, 0.2,
		0.9, 0.3, 0.7,
		0.4, 0.8, 0.6,
	}))
	l1, err := interop.FromDense[float32](l, backend)
	require.NoError(t, err)
	unused := tensor.Zeros[float32](tensor.Shape{1}, backend)

	loss, err := retinex.TVLoss(l1)
	require.NoError(t, err)

	grads := interop.Gradients(autodiff.Backward(loss, backend), l1, unused)
	require.Len(t, grads, 2)
	require.NotNil(t, grads[0])
	assert.Nil(t, grads[1])
	assert.Equal(t, []int{1, 1, 3, 3}, []int(grads[0].Shape()))
}
