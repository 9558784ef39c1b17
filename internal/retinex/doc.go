// Package retinex implements the training losses of a Retinex-style image
// decomposition model, where an input image is explained as an illumination
// map (N, 1, H, W) times a reflectance map (N, 3, H, W).
//
// Every loss is a scalar tensor built from differentiable tensor ops. Run the
// losses on an autodiff backend with recording enabled, then call
// autodiff.Backward on the result to obtain gradients:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	loss, err := retinex.DecompositionLoss(l1, r1, im1, x1, retinex.WithEpsilon(1e-4))
//	if err != nil {
//		return err
//	}
//	grads := autodiff.Backward(loss, backend)
//
// Losses take tensors in (N, C, H, W) layout and validate shapes up front,
// returning ErrNotImage, ErrTooSmall or ErrShapeMismatch instead of panicking
// in the backend.
package retinex
