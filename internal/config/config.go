// Package config loads and validates run configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/mlpviz/internal/nn"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	Activation    string  `yaml:"activation"`
	LR            float64 `yaml:"lr"`
	Steps         int     `yaml:"steps"`
	StepsPerFrame int     `yaml:"steps_per_frame"`
	HiddenDim     int     `yaml:"hidden_dim"`
	Samples       int     `yaml:"samples"`
	DataSeed      uint64  `yaml:"data_seed"`
	ModelSeed     uint64  `yaml:"model_seed"`
	GridSize      int     `yaml:"grid_size"`
	GridPad       float64 `yaml:"grid_pad"`
	FPS           int     `yaml:"fps"`
	WidthInches   float64 `yaml:"width_inches"`
	HeightInches  float64 `yaml:"height_inches"`
	OutputDir     string  `yaml:"output_dir"`
	OutputFile    string  `yaml:"output_file"`
	DumpFile      string  `yaml:"dump_file"`
	LogEvery      int     `yaml:"log_every"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	Activation string
	LR         float64
	Steps      int
	HiddenDim  int
	Samples    int
	DataSeed   *uint64 // nil keeps the current seed
	ModelSeed  *uint64 // nil keeps the current seed
	FPS        int
	OutputDir  string
	OutputFile string
	DumpFile   string
	LogEvery   int
}

// Default returns the configuration of the reference run: tanh, lr 0.1,
// 1000 steps rendered every 10 steps into results/visualize.gif.
func Default() *Config {
	return &Config{
		Activation:    "tanh",
		LR:            0.1,
		Steps:         1000,
		StepsPerFrame: 10,
		HiddenDim:     3,
		Samples:       100,
		GridSize:      100,
		GridPad:       1.0,
		FPS:           10,
		WidthInches:   12,
		HeightInches:  4,
		OutputDir:     "results",
		OutputFile:    "visualize.gif",
		LogEvery:      10,
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parse(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override. Seeds apply when
// non-nil, so a seed can be overridden to zero.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Activation != "" {
		c.Activation = o.Activation
	}
	if o.LR > 0 {
		c.LR = o.LR
	}
	if o.Steps > 0 {
		c.Steps = o.Steps
	}
	if o.HiddenDim > 0 {
		c.HiddenDim = o.HiddenDim
	}
	if o.Samples > 0 {
		c.Samples = o.Samples
	}
	if o.DataSeed != nil {
		c.DataSeed = *o.DataSeed
	}
	if o.ModelSeed != nil {
		c.ModelSeed = *o.ModelSeed
	}
	if o.FPS > 0 {
		c.FPS = o.FPS
	}
	if o.OutputDir != "" {
		c.OutputDir = o.OutputDir
	}
	if o.OutputFile != "" {
		c.OutputFile = o.OutputFile
	}
	if o.DumpFile != "" {
		c.DumpFile = o.DumpFile
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
}

// Validate verifies the config is runnable.
//
// The activation name is checked here so an unsupported name fails before
// any data is generated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if _, err := nn.ParseActivation(c.Activation); err != nil {
		return err
	}
	if c.LR <= 0 {
		return fmt.Errorf("lr must be > 0 (got %g)", c.LR)
	}
	if c.StepsPerFrame <= 0 {
		return fmt.Errorf("steps_per_frame must be > 0 (got %d)", c.StepsPerFrame)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be > 0 (got %d)", c.Steps)
	}
	if c.Steps%c.StepsPerFrame != 0 {
		return fmt.Errorf("steps (%d) must be a multiple of steps_per_frame (%d)", c.Steps, c.StepsPerFrame)
	}
	if c.HiddenDim <= 0 {
		return fmt.Errorf("hidden_dim must be > 0 (got %d)", c.HiddenDim)
	}
	if c.Samples <= 0 {
		return fmt.Errorf("samples must be > 0 (got %d)", c.Samples)
	}
	if c.GridSize < 2 {
		return fmt.Errorf("grid_size must be >= 2 (got %d)", c.GridSize)
	}
	if c.GridPad <= 0 {
		return fmt.Errorf("grid_pad must be > 0 (got %g)", c.GridPad)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be > 0 (got %d)", c.FPS)
	}
	if c.OutputFile == "" {
		return errors.New("output_file must be set")
	}
	if c.DumpFile != "" && c.DumpFile == c.OutputFile {
		return fmt.Errorf("dump_file must differ from output_file (both %q)", c.OutputFile)
	}
	if c.LogEvery <= 0 {
		return fmt.Errorf("log_every must be > 0 (got %d)", c.LogEvery)
	}
	return nil
}

// ActivationKind returns the parsed activation.
func (c *Config) ActivationKind() (nn.Activation, error) {
	return nn.ParseActivation(c.Activation)
}

// OutputPath joins the output directory and file name.
func (c *Config) OutputPath() string {
	return filepath.Join(c.OutputDir, c.OutputFile)
}

// DumpPath returns where the raw frame data is written, or "" when the
// dump is disabled.
func (c *Config) DumpPath() string {
	if c.DumpFile == "" {
		return ""
	}
	return filepath.Join(c.OutputDir, c.DumpFile)
}
