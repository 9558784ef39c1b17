package retinex_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/retinex/internal/autodiff"
	"github.com/born-ml/retinex/internal/backend/cpu"
	"github.com/born-ml/retinex/internal/parallel"
	"github.com/born-ml/retinex/internal/retinex"
	"github.com/born-ml/retinex/internal/tensor"
)

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func randomSlice(rng *rand.Rand, n int, lo, hi float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*rng.Float64()
	}
	return out
}

func fromSlice(t *testing.T, data []float64, shape tensor.Shape, b Backend) *tensor.Tensor[float64, Backend] {
	t.Helper()
	x, err := tensor.FromSlice(data, shape, b)
	require.NoError(t, err)
	return x
}

func TestGradient_Arange4x4(t *testing.T) {
	backend := autodiff.New(cpu.New())
	img := tensor.Arange[float32](0, tensor.Shape{1, 1, 4, 4}, backend)

	h, w, err := retinex.Gradient(img)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{1, 1, 2, 4}, h.Shape())
	assert.Equal(t, tensor.Shape{1, 1, 4, 2}, w.Shape())
	// Rows are 4 apart, so two rows apart is 8. Columns two apart differ by 2.
	assert.Equal(t, []float32{8, 8, 8, 8, 8, 8, 8, 8}, h.Data())
	assert.Equal(t, []float32{2, 2, 2, 2, 2, 2, 2, 2}, w.Data())
}

func TestGradient_ShapesAndNonNegative(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	backend := autodiff.New(cpu.New())

	for _, shape := range []tensor.Shape{{1, 1, 3, 3}, {2, 3, 5, 7}, {1, 2, 9, 4}} {
		img := fromSlice(t, randomSlice(rng, shape.NumElements(), -1, 1), shape, backend)
		h, w, err := retinex.Gradient(img)
		require.NoError(t, err)

		assert.Equal(t, tensor.Shape{shape[0], shape[1], shape[2] - 2, shape[3]}, h.Shape())
		assert.Equal(t, tensor.Shape{shape[0], shape[1], shape[2], shape[3] - 2}, w.Shape())
		for _, v := range h.Data() {
			assert.GreaterOrEqual(t, v, 0.0)
		}
		for _, v := range w.Data() {
			assert.GreaterOrEqual(t, v, 0.0)
		}
	}
}

func TestGradient_Errors(t *testing.T) {
	backend := autodiff.New(cpu.New())

	_, _, err := retinex.Gradient(tensor.Zeros[float32](tensor.Shape{3, 3}, backend))
	assert.ErrorIs(t, err, retinex.ErrNotImage)

	_, _, err = retinex.Gradient(tensor.Zeros[float32](tensor.Shape{1, 1, 2, 5}, backend))
	assert.ErrorIs(t, err, retinex.ErrTooSmall)

	_, _, err = retinex.Gradient(tensor.Zeros[float32](tensor.Shape{1, 1, 5, 2}, backend))
	assert.ErrorIs(t, err, retinex.ErrTooSmall)
}

func TestTVLoss(t *testing.T) {
	backend := autodiff.New(cpu.New())

	t.Run("ones 3x3", func(t *testing.T) {
		loss, err := retinex.TVLoss(tensor.Ones[float32](tensor.Shape{1, 1, 3, 3}, backend))
		require.NoError(t, err)
		assert.Equal(t, float32(0), loss.Item())
	})

	t.Run("constant", func(t *testing.T) {
		loss, err := retinex.TVLoss(tensor.Full[float64](tensor.Shape{2, 1, 6, 5}, 0.37, backend))
		require.NoError(t, err)
		assert.Equal(t, 0.0, loss.Item())
	})

	t.Run("arange", func(t *testing.T) {
		loss, err := retinex.TVLoss(tensor.Arange[float32](0, tensor.Shape{1, 1, 4, 4}, backend))
		require.NoError(t, err)
		assert.InDelta(t, 10.0, float64(loss.Item()), 1e-6)
	})

	t.Run("single differing pair", func(t *testing.T) {
		l := tensor.Zeros[float64](tensor.Shape{1, 1, 3, 3}, backend)
		l.Set(1, 0, 0, 2, 1)
		loss, err := retinex.TVLoss(l)
		require.NoError(t, err)
		assert.Greater(t, loss.Item(), 0.0)
	})

	t.Run("too small", func(t *testing.T) {
		_, err := retinex.TVLoss(tensor.Ones[float32](tensor.Shape{1, 1, 2, 2}, backend))
		assert.ErrorIs(t, err, retinex.ErrTooSmall)
	})
}

func TestConsistencyLoss(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	backend := autodiff.New(cpu.New())
	shape := tensor.Shape{2, 3, 4, 4}

	a := fromSlice(t, randomSlice(rng, shape.NumElements(), 0, 1), shape, backend)
	b := fromSlice(t, randomSlice(rng, shape.NumElements(), 0, 1), shape, backend)

	self, err := retinex.ConsistencyLoss(a, a)
	require.NoError(t, err)
	assert.Equal(t, 0.0, self.Item())

	ab, err := retinex.ConsistencyLoss(a, b)
	require.NoError(t, err)
	ba, err := retinex.ConsistencyLoss(b, a)
	require.NoError(t, err)
	assert.Equal(t, ab.Item(), ba.Item())
	assert.Greater(t, ab.Item(), 0.0)

	_, err = retinex.ConsistencyLoss(a, tensor.Zeros[float64](tensor.Shape{2, 3, 4, 5}, backend))
	assert.ErrorIs(t, err, retinex.ErrShapeMismatch)
}

func TestReconstructionLoss(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x := tensor.Arange[float32](0, tensor.Shape{1, 3, 2, 2}, backend)

	loss, err := retinex.ReconstructionLoss(x, x)
	require.NoError(t, err)
	assert.Equal(t, float32(0), loss.Item())

	// Every element off by 2.
	shifted := x.Add(tensor.Full[float32](tensor.Shape{1}, 2, backend))
	loss, err = retinex.ReconstructionLoss(x, shifted)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, float64(loss.Item()), 1e-6)
}

// perfectDecomposition returns inputs for which every term is zero: a unit
// illumination map, an input whose max channel is 1 everywhere and a target
// equal to the reflectance.
func perfectDecomposition(t *testing.T, b Backend) (l1, r1, im1, x1 *tensor.Tensor[float64, Backend]) {
	t.Helper()
	rng := rand.New(rand.NewPCG(5, 6))
	n, h, w := 2, 5, 4

	l1 = tensor.Ones[float64](tensor.Shape{n, 1, h, w}, b)
	r1 = fromSlice(t, randomSlice(rng, n*3*h*w, 0.1, 0.9), tensor.Shape{n, 3, h, w}, b)
	x1 = r1.Clone()

	imData := randomSlice(rng, n*3*h*w, 0, 0.9)
	im1 = fromSlice(t, imData, tensor.Shape{n, 3, h, w}, b)
	for i := 0; i < n; i++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				im1.Set(1, i, (y+x)%3, y, x)
			}
		}
	}
	return l1, r1, im1, x1
}

func TestDecompositionLoss_PerfectIsZero(t *testing.T) {
	backend := autodiff.New(cpu.New())
	l1, r1, im1, x1 := perfectDecomposition(t, backend)

	terms, err := retinex.DecompositionTerms(l1, r1, im1, x1)
	require.NoError(t, err)
	for name, v := range terms.Values() {
		assert.InDelta(t, 0.0, v, 1e-12, name)
	}

	loss, err := retinex.DecompositionLoss(l1, r1, im1, x1)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, loss.Item(), 1e-12)
}

func TestDecompositionTerms_SumToTotal(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	backend := autodiff.New(cpu.New())
	n, h, w := 1, 4, 6

	l1 := fromSlice(t, randomSlice(rng, n*h*w, 0.2, 1), tensor.Shape{n, 1, h, w}, backend)
	r1 := fromSlice(t, randomSlice(rng, n*3*h*w, 0, 1), tensor.Shape{n, 3, h, w}, backend)
	im1 := fromSlice(t, randomSlice(rng, n*3*h*w, 0, 1), tensor.Shape{n, 3, h, w}, backend)
	x1 := fromSlice(t, randomSlice(rng, n*3*h*w, 0, 1), tensor.Shape{n, 3, h, w}, backend)

	terms, err := retinex.DecompositionTerms(l1, r1, im1, x1)
	require.NoError(t, err)

	v := terms.Values()
	sum := v["reconstruction"] + v["ratio"] + v["max_channel"] + v["smoothness"] + v["edge_h"] + v["edge_w"]
	assert.InDelta(t, sum, v["total"], 1e-12)
	assert.Greater(t, v["total"], 0.0)
}

func TestDecompositionTerms_MaxChannel(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	n, h, w := 2, 3, 4
	plane := h * w

	lData := randomSlice(rng, n*plane, 0.2, 1)
	imData := randomSlice(rng, n*3*plane, 0, 1)
	l1 := fromSlice(t, lData, tensor.Shape{n, 1, h, w}, backend)
	im1 := fromSlice(t, imData, tensor.Shape{n, 3, h, w}, backend)
	r1 := fromSlice(t, randomSlice(rng, n*3*plane, 0, 1), tensor.Shape{n, 3, h, w}, backend)
	x1 := fromSlice(t, randomSlice(rng, n*3*plane, 0, 1), tensor.Shape{n, 3, h, w}, backend)

	var want float64
	diffs := make([]float64, n*plane)
	for b := 0; b < n; b++ {
		for i := 0; i < plane; i++ {
			m := imData[b*3*plane+i]
			for c := 1; c < 3; c++ {
				m = math.Max(m, imData[(b*3+c)*plane+i])
			}
			diffs[b*plane+i] = lData[b*plane+i] - m
			want += diffs[b*plane+i] * diffs[b*plane+i]
		}
	}
	want /= float64(n * plane)

	terms, err := retinex.DecompositionTerms(l1, r1, im1, x1)
	require.NoError(t, err)
	assert.InDelta(t, want, terms.MaxChannel.Item(), 1e-12)

	// d/dL1 mean((L1 - max)^2) = 2 (L1 - max) / numel.
	grads := autodiff.Backward(terms.MaxChannel, backend)
	g := autodiff.Grad(grads, l1)
	require.NotNil(t, g)
	require.Equal(t, l1.Shape(), g.Shape())
	for i, d := range diffs {
		assert.InDelta(t, 2*d/float64(n*plane), g.Data()[i], 1e-12)
	}
}

func TestDecompositionLoss_ShapeErrors(t *testing.T) {
	backend := autodiff.New(cpu.New())
	img := tensor.Zeros[float32](tensor.Shape{1, 3, 4, 4}, backend)
	illum := tensor.Ones[float32](tensor.Shape{1, 1, 4, 4}, backend)

	tests := []struct {
		name            string
		l1, r1, im1, x1 *tensor.Tensor[float32, Backend]
		want            error
	}{
		{"illumination has 3 channels", img, img, img, img, retinex.ErrShapeMismatch},
		{"reflectance has 1 channel", illum, illum, img, img, retinex.ErrShapeMismatch},
		{"target size differs", illum, img, img, tensor.Zeros[float32](tensor.Shape{1, 3, 4, 5}, backend), retinex.ErrShapeMismatch},
		{"batch differs", illum, img, tensor.Zeros[float32](tensor.Shape{2, 3, 4, 4}, backend), img, retinex.ErrShapeMismatch},
		{"not 4-D", illum, img, img, tensor.Zeros[float32](tensor.Shape{3, 4, 4}, backend), retinex.ErrNotImage},
		{
			"too small",
			tensor.Ones[float32](tensor.Shape{1, 1, 2, 4}, backend),
			tensor.Zeros[float32](tensor.Shape{1, 3, 2, 4}, backend),
			tensor.Zeros[float32](tensor.Shape{1, 3, 2, 4}, backend),
			tensor.Zeros[float32](tensor.Shape{1, 3, 2, 4}, backend),
			retinex.ErrTooSmall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loss, err := retinex.DecompositionLoss(tt.l1, tt.r1, tt.im1, tt.x1)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, loss)
		})
	}
}

func TestDecompositionLoss_ZeroIllumination(t *testing.T) {
	backend := autodiff.New(cpu.New())
	l1 := tensor.Ones[float64](tensor.Shape{1, 1, 3, 3}, backend)
	l1.Set(0, 0, 0, 1, 1)
	r1 := tensor.Full[float64](tensor.Shape{1, 3, 3, 3}, 0.5, backend)
	im1 := tensor.Ones[float64](tensor.Shape{1, 3, 3, 3}, backend)
	x1 := tensor.Full[float64](tensor.Shape{1, 3, 3, 3}, 0.5, backend)

	loss, err := retinex.DecompositionLoss(l1, r1, im1, x1)
	require.ErrorIs(t, err, retinex.ErrNonFinite)
	require.NotNil(t, loss, "the non-finite loss is still returned")
	assert.True(t, math.IsInf(loss.Item(), 1))

	loss, err = retinex.DecompositionLoss(l1, r1, im1, x1, retinex.WithEpsilon(1e-3))
	require.NoError(t, err)
	assert.False(t, math.IsInf(loss.Item(), 0) || math.IsNaN(loss.Item()))

	// The clamp only touches the divisor: L1 itself is unchanged.
	assert.Equal(t, 0.0, l1.At(0, 0, 1, 1))
}

func TestDecompositionTerms_RatioIsDetached(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	n, h, w := 1, 3, 4

	l1 := fromSlice(t, randomSlice(rng, n*h*w, 0.3, 1), tensor.Shape{n, 1, h, w}, backend)
	r1 := fromSlice(t, randomSlice(rng, n*3*h*w, 0, 1), tensor.Shape{n, 3, h, w}, backend)
	im1 := fromSlice(t, randomSlice(rng, n*3*h*w, 0, 1), tensor.Shape{n, 3, h, w}, backend)
	x1 := fromSlice(t, randomSlice(rng, n*3*h*w, 0, 1), tensor.Shape{n, 3, h, w}, backend)

	terms, err := retinex.DecompositionTerms(l1, r1, im1, x1, retinex.WithEpsilon(1e-4))
	require.NoError(t, err)

	grads := autodiff.Backward(terms.Ratio, backend)
	assert.Nil(t, autodiff.Grad(grads, l1), "ratio term must not reach illumination")
	assert.NotNil(t, autodiff.Grad(grads, r1))
	assert.NotNil(t, autodiff.Grad(grads, x1))
}

// decompositionInputs builds the fixed inputs for the gradient checks.
func decompositionInputs() (shape tensor.Shape, l, r, im, x []float64) {
	rng := rand.New(rand.NewPCG(11, 12))
	n, h, w := 1, 4, 5
	return tensor.Shape{n, 3, h, w},
		randomSlice(rng, n*h*w, 0.3, 1),
		randomSlice(rng, n*3*h*w, 0, 1),
		randomSlice(rng, n*3*h*w, 0, 1),
		randomSlice(rng, n*3*h*w, 0, 1)
}

func TestDecompositionLoss_ReflectanceGradient(t *testing.T) {
	shape, l, r, im, x := decompositionInputs()
	lShape := tensor.Shape{shape[0], 1, shape[2], shape[3]}

	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	l1 := fromSlice(t, l, lShape, backend)
	r1 := fromSlice(t, r, shape, backend)
	loss, err := retinex.DecompositionLoss(l1, r1, fromSlice(t, im, shape, backend), fromSlice(t, x, shape, backend))
	require.NoError(t, err)
	got := autodiff.Grad(autodiff.Backward(loss, backend), r1)
	require.NotNil(t, got)

	eval := func(rv []float64) float64 {
		b := autodiff.New(cpu.New())
		loss, err := retinex.DecompositionLoss(
			fromSlice(t, l, lShape, b), fromSlice(t, rv, shape, b),
			fromSlice(t, im, shape, b), fromSlice(t, x, shape, b))
		require.NoError(t, err)
		return loss.Item()
	}
	want := fd.Gradient(nil, eval, r, &fd.Settings{Formula: fd.Central, Step: 1e-6})
	assert.InDeltaSlice(t, want, got.Data(), 1e-5)
}

func TestDecompositionLoss_IlluminationGradient(t *testing.T) {
	shape, l, r, im, x := decompositionInputs()
	lShape := tensor.Shape{shape[0], 1, shape[2], shape[3]}

	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	l1 := fromSlice(t, l, lShape, backend)
	loss, err := retinex.DecompositionLoss(l1, fromSlice(t, r, shape, backend),
		fromSlice(t, im, shape, backend), fromSlice(t, x, shape, backend))
	require.NoError(t, err)
	got := autodiff.Grad(autodiff.Backward(loss, backend), l1)
	require.NotNil(t, got)

	// Numerically the ratio term does depend on L1, so it is excluded: the
	// tape gradient must match the gradient of the remaining terms.
	eval := func(lv []float64) float64 {
		b := autodiff.New(cpu.New())
		terms, err := retinex.DecompositionTerms(
			fromSlice(t, lv, lShape, b), fromSlice(t, r, shape, b),
			fromSlice(t, im, shape, b), fromSlice(t, x, shape, b))
		require.NoError(t, err)
		return terms.Total.Item() - terms.Ratio.Item()
	}
	want := fd.Gradient(nil, eval, l, &fd.Settings{Formula: fd.Central, Step: 1e-6})
	assert.InDeltaSlice(t, want, got.Data(), 1e-5)
}

func TestTVLoss_Gradient(t *testing.T) {
	rng := rand.New(rand.NewPCG(13, 14))
	shape := tensor.Shape{1, 1, 5, 4}
	l := randomSlice(rng, shape.NumElements(), 0, 1)

	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	l1 := fromSlice(t, l, shape, backend)
	loss, err := retinex.TVLoss(l1)
	require.NoError(t, err)
	got := autodiff.Grad(autodiff.Backward(loss, backend), l1)
	require.NotNil(t, got)

	eval := func(lv []float64) float64 {
		loss, err := retinex.TVLoss(fromSlice(t, lv, shape, autodiff.New(cpu.New())))
		require.NoError(t, err)
		return loss.Item()
	}
	want := fd.Gradient(nil, eval, l, &fd.Settings{Formula: fd.Central, Step: 1e-6})
	assert.InDeltaSlice(t, want, got.Data(), 1e-5)
}

func TestMSE_Float32Parallel(t *testing.T) {
	rng := rand.New(rand.NewPCG(15, 16))
	shape := tensor.Shape{2, 3, 64, 64}
	data := randomSlice(rng, shape.NumElements(), 0, 1)
	a32 := make([]float32, len(data))
	for i, v := range data {
		a32[i] = float32(v)
	}

	seq := cpu.NewWithConfig(parallel.Sequential())
	par := cpu.NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 256})
	a, err := tensor.FromSlice(a32, shape, seq)
	require.NoError(t, err)
	b := tensor.Zeros[float32](shape, seq)
	want, err := retinex.MSE(a, b)
	require.NoError(t, err)

	pa, err := tensor.FromSlice(a32, shape, par)
	require.NoError(t, err)
	got, err := retinex.MSE(pa, tensor.Zeros[float32](shape, par))
	require.NoError(t, err)

	assert.InDelta(t, float64(want.Item()), float64(got.Item()), 1e-6)
	assert.InDelta(t, 1.0/3, float64(got.Item()), 0.02)
}
