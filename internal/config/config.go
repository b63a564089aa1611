// Package config loads the tuning constants and runtime settings of the plate
// tools from an optional .env file and the process environment.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ironsheep/plate-tools-mcp/internal/detection"
	"github.com/ironsheep/plate-tools-mcp/internal/enhance"
)

// Environment variable names.
const (
	EnvLogLevel           = "PLATE_MCP_LOG_LEVEL"
	EnvBilateralDiameter  = "PLATE_BILATERAL_DIAMETER"
	EnvBilateralSigmaClr  = "PLATE_BILATERAL_SIGMA_COLOR"
	EnvBilateralSigmaSpc  = "PLATE_BILATERAL_SIGMA_SPACE"
	EnvCannyLow           = "PLATE_CANNY_LOW"
	EnvCannyHigh          = "PLATE_CANNY_HIGH"
	EnvMaxContours        = "PLATE_MAX_CONTOURS"
	EnvApproxEpsilon      = "PLATE_APPROX_EPSILON"
	EnvMinAspect          = "PLATE_MIN_ASPECT"
	EnvMaxAspect          = "PLATE_MAX_ASPECT"
	EnvUpscaleFactor      = "PLATE_UPSCALE_FACTOR"
	EnvThresholdBlockSize = "PLATE_THRESHOLD_BLOCK_SIZE"
	EnvThresholdC         = "PLATE_THRESHOLD_C"
	EnvDenoiseH           = "PLATE_DENOISE_H"
	EnvDenoiseTemplate    = "PLATE_DENOISE_TEMPLATE_WINDOW"
	EnvDenoiseSearch      = "PLATE_DENOISE_SEARCH_WINDOW"
	EnvWorkers            = "PLATE_WORKERS"
)

// Config is the complete runtime configuration.
type Config struct {
	LogLevel  string
	Detection detection.Params
	Enhance   enhance.Params
	Workers   int
}

// Default returns the calibrated configuration.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		Detection: detection.DefaultParams(),
		Enhance:   enhance.DefaultParams(),
		Workers:   runtime.NumCPU(),
	}
}

// Load reads the given .env files (default ".env"), then the environment.
//
// Missing .env files are ignored. Variables already set in the environment
// take precedence over .env values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from defaults overridden by lookup, which has
// the signature of os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	r := reader{lookup: lookup}

	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}

	d := &cfg.Detection
	r.intVar(&d.BilateralDiameter, EnvBilateralDiameter)
	r.floatVar(&d.BilateralSigmaColor, EnvBilateralSigmaClr)
	r.floatVar(&d.BilateralSigmaSpace, EnvBilateralSigmaSpc)
	r.float32Var(&d.CannyLow, EnvCannyLow)
	r.float32Var(&d.CannyHigh, EnvCannyHigh)
	r.intVar(&d.MaxContours, EnvMaxContours)
	r.floatVar(&d.ApproxEpsilon, EnvApproxEpsilon)
	r.floatVar(&d.MinAspectRatio, EnvMinAspect)
	r.floatVar(&d.MaxAspectRatio, EnvMaxAspect)

	e := &cfg.Enhance
	r.intVar(&e.UpscaleFactor, EnvUpscaleFactor)
	r.intVar(&e.BlockSize, EnvThresholdBlockSize)
	r.float32Var(&e.C, EnvThresholdC)
	r.float32Var(&e.DenoiseH, EnvDenoiseH)
	r.intVar(&e.TemplateWindow, EnvDenoiseTemplate)
	r.intVar(&e.SearchWindow, EnvDenoiseSearch)

	r.intVar(&cfg.Workers, EnvWorkers)

	if r.err != nil {
		return nil, r.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section of the configuration.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if err := c.Detection.Validate(); err != nil {
		return fmt.Errorf("detection: %w", err)
	}
	if err := c.Enhance.Validate(); err != nil {
		return fmt.Errorf("enhance: %w", err)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// reader parses environment overrides, keeping the first error.
type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) value(key string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	v, ok := r.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (r *reader) intVar(dst *int, key string) {
	v, ok := r.value(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.err = fmt.Errorf("%s: invalid integer %q", key, v)
		return
	}
	*dst = n
}

func (r *reader) floatVar(dst *float64, key string) {
	v, ok := r.value(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.err = fmt.Errorf("%s: invalid number %q", key, v)
		return
	}
	*dst = f
}

func (r *reader) float32Var(dst *float32, key string) {
	v, ok := r.value(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		r.err = fmt.Errorf("%s: invalid number %q", key, v)
		return
	}
	*dst = float32(f)
}
