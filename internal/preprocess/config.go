// Package preprocess implements the per-page image preprocessing pipeline:
// orientation correction, basic normalization, noise removal, morphological
// cleanup and line removal, each independently configurable.
package preprocess

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the stage configuration, loaded once from YAML and passed by
// value into the pipeline constructor. Missing sections fall back to
// documented defaults: orientation correction and basic preprocessing default
// to enabled, the remaining stages to disabled.
type Config struct {
	Orientation OrientationConfig `yaml:"orientation_correction"`
	Basic       BasicConfig       `yaml:"basic_preprocessing"`
	Noise       NoiseConfig       `yaml:"noise_removal"`
	Morph       MorphConfig       `yaml:"morphological_operations"`
	Lines       LineConfig        `yaml:"line_removal"`
	Debug       DebugConfig       `yaml:"debug"`
}

type OrientationConfig struct {
	Enabled *bool `yaml:"enabled"`
}

type BasicConfig struct {
	Enabled           *bool                   `yaml:"enabled"`
	AdaptiveThreshold AdaptiveThresholdConfig `yaml:"adaptive_threshold"`
	MedianBlur        MedianBlurConfig        `yaml:"median_blur"`
	Sharpen           SharpenConfig           `yaml:"sharpen"`
	Contrast          ContrastConfig          `yaml:"contrast_enhancement"`
}

type AdaptiveThresholdConfig struct {
	BlockSize int     `yaml:"block_size"`
	CValue    float64 `yaml:"c_value"`
}

type MedianBlurConfig struct {
	KernelSize int `yaml:"kernel_size"`
}

type SharpenConfig struct {
	Enabled *bool `yaml:"enabled"`
}

type ContrastConfig struct {
	Factor float64 `yaml:"factor"`
}

type NoiseConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Method  string `yaml:"method"` // fastNlMeansDenoising | bilateralFilter

	// fastNlMeansDenoising tunables
	H                  float64 `yaml:"h"`
	TemplateWindowSize int     `yaml:"templateWindowSize"`
	SearchWindowSize   int     `yaml:"searchWindowSize"`

	// bilateralFilter tunables
	D          int     `yaml:"d"`
	SigmaColor float64 `yaml:"sigmaColor"`
	SigmaSpace float64 `yaml:"sigmaSpace"`
}

type MorphConfig struct {
	Enabled    *bool     `yaml:"enabled"`
	Operations []MorphOp `yaml:"operations"`
}

type MorphOp struct {
	Type        string `yaml:"type"` // erode | dilate | open | close (legacy *-ion/-ing accepted)
	KernelSize  []int  `yaml:"kernel_size"`
	KernelShape string `yaml:"kernel_shape"` // ellipse | cross | rect
	Iterations  int    `yaml:"iterations"`
}

type LineConfig struct {
	Enabled         *bool   `yaml:"enabled"`
	Rho             float64 `yaml:"rho"`
	ThetaDegrees    float64 `yaml:"theta_degrees"`
	Threshold       int     `yaml:"threshold"`
	MinLineLength   int     `yaml:"min_line_length"`
	MaxLineGap      int     `yaml:"max_line_gap"`
	LineThickness   int     `yaml:"line_thickness"`
	HorizontalLines *bool   `yaml:"horizontal_lines"`
	VerticalLines   *bool   `yaml:"vertical_lines"`
	AngleTolerance  float64 `yaml:"angle_tolerance"`
}

type DebugConfig struct {
	SaveImages bool              `yaml:"save_images"`
	BaseFolder string            `yaml:"base_folder"`
	Subfolders map[string]string `yaml:"subfolders"`
}

func boolPtr(b bool) *bool { return &b }

func orDefault(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// defaults fills unset tunables with the documented defaults.
func (c *Config) defaults() {
	if c.Basic.AdaptiveThreshold.BlockSize <= 0 {
		c.Basic.AdaptiveThreshold.BlockSize = 15
	}
	if c.Basic.AdaptiveThreshold.CValue == 0 {
		c.Basic.AdaptiveThreshold.CValue = 11
	}
	if c.Basic.MedianBlur.KernelSize <= 0 {
		c.Basic.MedianBlur.KernelSize = 3
	}
	if c.Basic.Contrast.Factor == 0 {
		c.Basic.Contrast.Factor = 2.0
	}
	if c.Noise.Method == "" {
		c.Noise.Method = "fastNlMeansDenoising"
	}
	if c.Noise.H == 0 {
		c.Noise.H = 10
	}
	if c.Noise.TemplateWindowSize == 0 {
		c.Noise.TemplateWindowSize = 7
	}
	if c.Noise.SearchWindowSize == 0 {
		c.Noise.SearchWindowSize = 21
	}
	if c.Noise.D == 0 {
		c.Noise.D = 9
	}
	if c.Noise.SigmaColor == 0 {
		c.Noise.SigmaColor = 75
	}
	if c.Noise.SigmaSpace == 0 {
		c.Noise.SigmaSpace = 75
	}
	if c.Lines.Rho == 0 {
		c.Lines.Rho = 1
	}
	if c.Lines.ThetaDegrees == 0 {
		c.Lines.ThetaDegrees = 1
	}
	if c.Lines.Threshold == 0 {
		c.Lines.Threshold = 100
	}
	if c.Lines.MinLineLength == 0 {
		c.Lines.MinLineLength = 50
	}
	if c.Lines.MaxLineGap == 0 {
		c.Lines.MaxLineGap = 10
	}
	if c.Lines.LineThickness == 0 {
		c.Lines.LineThickness = 3
	}
	if c.Lines.AngleTolerance == 0 {
		c.Lines.AngleTolerance = 10
	}
	if c.Debug.BaseFolder == "" {
		c.Debug.BaseFolder = "debug_imgs"
	}
	if c.Debug.Subfolders == nil {
		c.Debug.Subfolders = map[string]string{
			"original":                 "original",
			"orientation_correction":   "orientation",
			"basic_preprocessing":      "basic",
			"noise_removal":            "denoise",
			"morphological_operations": "morph",
			"line_removal":             "lines",
		}
	}
}

// DefaultConfig returns the configuration used when no YAML file is present:
// orientation correction and basic preprocessing on, everything else off.
func DefaultConfig() Config {
	c := Config{
		Orientation: OrientationConfig{Enabled: boolPtr(true)},
		Basic:       BasicConfig{Enabled: boolPtr(true)},
		Noise:       NoiseConfig{Enabled: boolPtr(false)},
		Morph:       MorphConfig{Enabled: boolPtr(false)},
		Lines:       LineConfig{Enabled: boolPtr(false)},
	}
	c.defaults()
	return c
}

// LoadConfig reads and validates a YAML stage configuration. An empty path
// yields DefaultConfig.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read preprocess config: %w", err)
	}
	return ParseConfig(raw)
}

// ParseConfig validates raw YAML against the stage schema and decodes it.
func ParseConfig(raw []byte) (Config, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Config{}, fmt.Errorf("parse preprocess config: %w", err)
	}
	if doc == nil {
		return DefaultConfig(), nil
	}
	if err := validateStageConfig(doc); err != nil {
		return Config{}, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("decode preprocess config: %w", err)
	}
	c.defaults()
	return c, nil
}

// Stage enable accessors resolve the per-stage defaults.
func (c Config) OrientationEnabled() bool { return orDefault(c.Orientation.Enabled, true) }
func (c Config) BasicEnabled() bool       { return orDefault(c.Basic.Enabled, true) }
func (c Config) NoiseEnabled() bool       { return orDefault(c.Noise.Enabled, false) }
func (c Config) MorphEnabled() bool       { return orDefault(c.Morph.Enabled, false) }
func (c Config) LinesEnabled() bool       { return orDefault(c.Lines.Enabled, false) }
