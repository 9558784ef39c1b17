package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"log"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/retinex/internal/autodiff"
	"github.com/born-ml/retinex/internal/backend/cpu"
	"github.com/born-ml/retinex/internal/config"
	"github.com/born-ml/retinex/internal/imaging"
	"github.com/born-ml/retinex/internal/interop"
	"github.com/born-ml/retinex/internal/retinex"
	"github.com/born-ml/retinex/internal/tensor"
)

type lossInputs struct {
	illum, reflect, input, target, reflect2 image.Image
}

type lossRun struct {
	cfg    *config.Config
	grads  bool
	inputs lossInputs
}

func runLoss(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("loss", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (defaults are used when empty)")
	illum := fs.String("illum", "", "Illumination map PNG (read as grayscale)")
	reflect := fs.String("reflect", "", "Reflectance map PNG")
	input := fs.String("input", "", "Input image PNG")
	target := fs.String("target", "", "Target image PNG")
	reflect2 := fs.String("reflect2", "", "Second reflectance map PNG for the consistency loss")
	dtype := fs.String("dtype", "", "Override dtype: float32 or float64")
	epsilon := fs.Float64("epsilon", 0, "Override clamp for the illumination divisor (0 disables it)")
	workers := fs.Int("workers", 0, "Override number of CPU workers")
	sequential := fs.Bool("sequential", false, "Disable parallel kernels")
	linear := fs.Bool("linear", false, "Convert sRGB images to linear light")
	grads := fs.Bool("grads", false, "Also report gradient norms of the total loss")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *illum == "" || *reflect == "" || *input == "" || *target == "" {
		return errors.New("-illum, -reflect, -input and -target are required")
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}
	overrides := config.Overrides{
		DType:      *dtype,
		LinearRGB:  *linear,
		Workers:    *workers,
		Sequential: *sequential,
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "epsilon" {
			overrides.Epsilon = epsilon
		}
	})
	cfg.ApplyOverrides(overrides)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	run := lossRun{cfg: cfg, grads: *grads}
	paths := []struct {
		path string
		dst  *image.Image
	}{
		{*illum, &run.inputs.illum},
		{*reflect, &run.inputs.reflect},
		{*input, &run.inputs.input},
		{*target, &run.inputs.target},
		{*reflect2, &run.inputs.reflect2},
	}
	for _, p := range paths {
		if p.path == "" {
			continue
		}
		img, err := imaging.LoadPNG(p.path)
		if err != nil {
			return err
		}
		*p.dst = img
	}

	log.Printf("dtype=%s epsilon=%g linear=%t workers=%d parallel=%t",
		cfg.DType, cfg.Epsilon, cfg.LinearRGB, cfg.ParallelConfig().NumWorkers, cfg.ParallelConfig().Enabled)

	if cfg.DataType() == tensor.Float64 {
		return evaluate[float64](run, stdout)
	}
	return evaluate[float32](run, stdout)
}

type backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func evaluate[T tensor.DType](run lossRun, w io.Writer) error {
	b := autodiff.New(cpu.NewWithConfig(run.cfg.ParallelConfig()))
	if run.grads {
		b.Tape().StartRecording()
	}

	var convert []imaging.ConvertOption
	if run.cfg.LinearRGB {
		convert = append(convert, imaging.WithLinearRGB())
	}

	l1, err := imaging.GrayToTensor[T](run.inputs.illum, b)
	if err != nil {
		return fmt.Errorf("illumination: %w", err)
	}
	r1, err := imaging.RGBToTensor[T](run.inputs.reflect, b, convert...)
	if err != nil {
		return fmt.Errorf("reflectance: %w", err)
	}
	im1, err := imaging.RGBToTensor[T](run.inputs.input, b, convert...)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	x1, err := imaging.RGBToTensor[T](run.inputs.target, b, convert...)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}

	terms, termsErr := retinex.DecompositionTerms(l1, r1, im1, x1, retinex.WithEpsilon(run.cfg.Epsilon))
	if terms == nil {
		return termsErr
	}
	values := terms.Values()
	for _, name := range []string{"reconstruction", "ratio", "max_channel", "smoothness", "edge_h", "edge_w", "total"} {
		fmt.Fprintf(w, "%s=%.6g\n", name, values[name])
	}

	p, err := retinex.ReconstructionLoss(im1, x1)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "p_loss=%.6g\n", float64(p.Item()))

	if run.inputs.reflect2 != nil {
		r2, err := imaging.RGBToTensor[T](run.inputs.reflect2, b, convert...)
		if err != nil {
			return fmt.Errorf("second reflectance: %w", err)
		}
		c, err := retinex.ConsistencyLoss(r1, r2)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "c_loss=%.6g\n", float64(c.Item()))
	}

	if run.grads && termsErr == nil {
		reportGradients(w, autodiff.Backward(terms.Total, b), l1, r1)
	}
	return termsErr
}

func reportGradients[T tensor.DType](w io.Writer, grads map[*tensor.RawTensor]*tensor.RawTensor, l1, r1 *tensor.Tensor[T, backend]) {
	dense := interop.Gradients(grads, l1, r1)
	for i, name := range []string{"illumination", "reflectance"} {
		d := dense[i]
		if d == nil {
			fmt.Fprintf(w, "grad_%s=none\n", name)
			continue
		}
		fmt.Fprintf(w, "grad_%s shape=%v l2=%.6g\n", name, d.Shape(), floats.Norm(asFloat64(d.Data()), 2))
	}
}

func asFloat64(data any) []float64 {
	switch v := data.(type) {
	case []float64:
		return v
	case []float32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out
	default:
		return nil
	}
}
