// Package config loads the YAML run configuration of the retinex CLI.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/retinex/internal/parallel"
	"github.com/born-ml/retinex/internal/tensor"
)

// Config captures the knobs for evaluating losses.
type Config struct {
	DType     string   `yaml:"dtype"`
	Epsilon   float64  `yaml:"epsilon"`
	LinearRGB bool     `yaml:"linear_rgb"`
	Parallel  Parallel `yaml:"parallel"`
}

// Parallel configures the CPU backend's worker fan-out.
type Parallel struct {
	Enabled  bool `yaml:"enabled"`
	Workers  int  `yaml:"workers"`
	MinChunk int  `yaml:"min_chunk"`
}

// Overrides captures CLI supplied values. Epsilon is a pointer so an
// explicit zero can disable a clamp set in the file.
type Overrides struct {
	DType      string
	Epsilon    *float64
	LinearRGB  bool
	Workers    int
	Sequential bool
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	p := parallel.DefaultConfig()
	return &Config{
		DType: "float32",
		Parallel: Parallel{
			Enabled:  p.Enabled,
			Workers:  p.NumWorkers,
			MinChunk: p.MinChunkSize,
		},
	}
}

// Load reads and validates a Config from YAML. Keys missing from the file
// keep their Default values; unknown keys are an error.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Decode reads a Config from r on top of Default. It does not validate.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override and any non-nil Epsilon.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DType != "" {
		c.DType = o.DType
	}
	if o.Epsilon != nil {
		c.Epsilon = *o.Epsilon
	}
	if o.LinearRGB {
		c.LinearRGB = true
	}
	if o.Workers > 0 {
		c.Parallel.Workers = o.Workers
		c.Parallel.Enabled = o.Workers > 1
	}
	if o.Sequential {
		c.Parallel.Enabled = false
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, ok := tensor.ParseDataType(c.DType); !ok {
		return fmt.Errorf("dtype must be float32 or float64 (got %q)", c.DType)
	}
	if c.Epsilon < 0 {
		return fmt.Errorf("epsilon must be >= 0 (got %g)", c.Epsilon)
	}
	if c.Parallel.Workers < 0 {
		return fmt.Errorf("parallel.workers must be >= 0 (got %d)", c.Parallel.Workers)
	}
	if c.Parallel.MinChunk < 0 {
		return fmt.Errorf("parallel.min_chunk must be >= 0 (got %d)", c.Parallel.MinChunk)
	}
	return nil
}

// DataType returns the parsed dtype. Call Validate first.
func (c *Config) DataType() tensor.DataType {
	dt, _ := tensor.ParseDataType(c.DType)
	return dt
}

// ParallelConfig converts the parallel section for the CPU backend.
// Zero workers or chunk size fall back to parallel defaults.
func (c *Config) ParallelConfig() parallel.Config {
	return parallel.Config{
		Enabled:      c.Parallel.Enabled,
		NumWorkers:   c.Parallel.Workers,
		MinChunkSize: c.Parallel.MinChunk,
	}.Normalize()
}
