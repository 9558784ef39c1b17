package cpu

import (
	"github.com/born-ml/retinex/internal/parallel"
	"github.com/born-ml/retinex/internal/tensor"
)

type binaryKind int

const (
	opAdd binaryKind = iota
	opSub
	opMul
	opDiv
)

func binaryFunc[T tensor.DType](kind binaryKind) func(x, y T) T {
	switch kind {
	case opAdd:
		return func(x, y T) T { return x + y }
	case opSub:
		return func(x, y T) T { return x - y }
	case opMul:
		return func(x, y T) T { return x * y }
	case opDiv:
		return func(x, y T) T { return x / y }
	default:
		panic("unknown binary op")
	}
}

// binaryKernel computes dst = f(a, b). When needsBroadcast is false the three
// slices share one layout and are walked in lockstep.
func binaryKernel[T tensor.DType](
	dst, a, b []T,
	aShape, bShape, outShape tensor.Shape,
	needsBroadcast bool,
	f func(x, y T) T,
	cfg parallel.Config,
) {
	if !needsBroadcast {
		parallel.ForRange(len(dst), func(lo, hi int) {
			for i := lo; i < hi; i++ {
				dst[i] = f(a[i], b[i])
			}
		}, cfg)
		return
	}

	outStrides := outShape.ComputeStrides()
	aStrides := tensor.BroadcastStrides(aShape, outShape)
	bStrides := tensor.BroadcastStrides(bShape, outShape)

	parallel.ForRange(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = f(a[tensor.FlatIndex(i, outStrides, aStrides)], b[tensor.FlatIndex(i, outStrides, bStrides)])
		}
	}, cfg)
}

func unaryKernel[T tensor.DType](dst, x []T, f func(v T) T, cfg parallel.Config) {
	parallel.ForRange(len(dst), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			dst[i] = f(x[i])
		}
	}, cfg)
}

func absOf[T tensor.DType](v T) T {
	if v < 0 {
		return -v
	}
	return v
}

func clampMinOf[T tensor.DType](lo T) func(v T) T {
	return func(v T) T {
		if v < lo {
			return lo
		}
		return v
	}
}
