// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads presentation stage settings from YAML.
//
// Example file:
//
//	stream_offset_us: 1000000
//	hdr: false
//	log_level: debug
//	target:
//	  width: 1280
//	  height: 720
//	  orientation: 0
//	debug_preview:
//	  width: 320
//	  height: 180
//	transformations:
//	  - kind: scale_to_fit
//	    rotation_degrees: 90
//	  - kind: presentation
//	    height: 720
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/present/gpu"
	"github.com/gogpu/present/metrics"
	"github.com/gogpu/present/preview"
	"github.com/gogpu/present/stage"
	"github.com/gogpu/present/surface"
	"github.com/gogpu/present/transform"
)

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Transformation kinds.
const (
	KindScaleToFit   = "scale_to_fit"
	KindPresentation = "presentation"
)

// Config is the complete stage configuration.
type Config struct {
	StreamOffsetUs  int64            `yaml:"stream_offset_us"`
	HDR             bool             `yaml:"hdr"`
	LogLevel        string           `yaml:"log_level"`
	Target          Target           `yaml:"target"`
	DebugPreview    *Size            `yaml:"debug_preview,omitempty"`
	Transformations []Transformation `yaml:"transformations"`
}

// Target is the output target geometry. The window handle is supplied at
// run time.
type Target struct {
	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
	Orientation int `yaml:"orientation"`
}

// Size is a width and height in pixels.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Transformation describes one step of the base transformation chain.
type Transformation struct {
	Kind string `yaml:"kind"`

	// scale_to_fit
	ScaleX          float64 `yaml:"scale_x"`
	ScaleY          float64 `yaml:"scale_y"`
	RotationDegrees float64 `yaml:"rotation_degrees"`

	// presentation
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	AspectRatio float64 `yaml:"aspect_ratio"`
	Layout      string  `yaml:"layout"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Target.Width < 0 || c.Target.Height < 0 {
		return fmt.Errorf("%w: target size %dx%d", ErrInvalidConfig, c.Target.Width, c.Target.Height)
	}
	if !transform.ValidOrientation(c.Target.Orientation) {
		return fmt.Errorf("%w: target orientation %d", ErrInvalidConfig, c.Target.Orientation)
	}
	if p := c.DebugPreview; p != nil && (p.Width <= 0 || p.Height <= 0) {
		return fmt.Errorf("%w: debug preview size %dx%d", ErrInvalidConfig, p.Width, p.Height)
	}
	for i, t := range c.Transformations {
		if _, err := t.build(); err != nil {
			return fmt.Errorf("%w: transformations[%d]: %w", ErrInvalidConfig, i, err)
		}
	}
	return nil
}

// HasTarget reports whether a target size is configured.
func (c *Config) HasTarget() bool {
	return c.Target.Width > 0 && c.Target.Height > 0
}

// Descriptor returns the configured target bound to window h.
func (c *Config) Descriptor(h gpu.Handle) surface.Descriptor {
	return surface.Descriptor{
		Handle:             h,
		Width:              c.Target.Width,
		Height:             c.Target.Height,
		OrientationDegrees: c.Target.Orientation,
	}
}

// BuildTransformations returns the base transformation chain.
func (c *Config) BuildTransformations() ([]transform.MatrixTransformation, error) {
	out := make([]transform.MatrixTransformation, 0, len(c.Transformations))
	for i, t := range c.Transformations {
		mt, err := t.build()
		if err != nil {
			return nil, fmt.Errorf("%w: transformations[%d]: %w", ErrInvalidConfig, i, err)
		}
		out = append(out, mt)
	}
	return out, nil
}

func (t Transformation) build() (transform.MatrixTransformation, error) {
	switch t.Kind {
	case KindScaleToFit:
		if t.ScaleX < 0 || t.ScaleY < 0 {
			return nil, fmt.Errorf("negative scale %v x %v", t.ScaleX, t.ScaleY)
		}
		return transform.ScaleToFit{ScaleX: t.ScaleX, ScaleY: t.ScaleY, RotationDegrees: t.RotationDegrees}, nil
	case KindPresentation:
		layout := transform.LayoutScaleToFit
		if t.Layout != "" {
			l, err := transform.ParseLayout(t.Layout)
			if err != nil {
				return nil, err
			}
			layout = l
		}
		switch {
		case t.AspectRatio > 0 && t.Width == 0 && t.Height == 0:
			return transform.PresentationForAspectRatio(t.AspectRatio, layout), nil
		case t.AspectRatio == 0 && t.Width > 0 && t.Height > 0:
			return transform.PresentationForSize(t.Width, t.Height, layout), nil
		case t.AspectRatio == 0 && t.Width == 0 && t.Height > 0:
			return transform.PresentationForHeight(t.Height), nil
		}
		return nil, errors.New("presentation needs width and height, height, or aspect_ratio")
	case "":
		return nil, errors.New("missing kind")
	default:
		return nil, fmt.Errorf("unknown kind %q", t.Kind)
	}
}

// SlogLevel returns the configured log level. The default is info.
func (c *Config) SlogLevel() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: log level %q", ErrInvalidConfig, s)
}

// StageOptions returns the stage options described by the configuration.
// views is used only when a debug preview is configured; m may be nil.
func (c *Config) StageOptions(views preview.ViewProvider, m *metrics.Metrics) ([]stage.Option, error) {
	ts, err := c.BuildTransformations()
	if err != nil {
		return nil, err
	}
	opts := []stage.Option{
		stage.WithTransformations(ts...),
		stage.WithStreamOffset(c.StreamOffsetUs),
		stage.WithHDR(c.HDR),
	}
	if m != nil {
		opts = append(opts, stage.WithMetrics(m))
	}
	if c.DebugPreview != nil && views != nil {
		opts = append(opts, stage.WithDebugViewProvider(views))
	}
	return opts, nil
}
