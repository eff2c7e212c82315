// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu/gputest"
	"github.com/gogpu/present/preview"
	"github.com/gogpu/present/stage"
	"github.com/gogpu/present/transform"
)

const full = `
stream_offset_us: 1000000
hdr: true
log_level: debug
target:
  width: 1080
  height: 1920
  orientation: 90
debug_preview:
  width: 320
  height: 180
transformations:
  - kind: scale_to_fit
    scale_x: 2
  - kind: presentation
    height: 720
  - kind: presentation
    width: 640
    height: 480
    layout: stretch_to_fit
  - kind: presentation
    aspect_ratio: 1.5
    layout: scale_to_fit_with_crop
`

func TestParseFull(t *testing.T) {
	cfg, err := Parse([]byte(full))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.StreamOffsetUs != 1_000_000 || !cfg.HDR || cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("scalars = %+v", cfg)
	}
	if !cfg.HasTarget() || cfg.Target.Orientation != 90 {
		t.Errorf("target = %+v", cfg.Target)
	}
	d := cfg.Descriptor(7)
	if d.Handle != 7 || d.Width != 1080 || d.Height != 1920 || d.OrientationDegrees != 90 {
		t.Errorf("descriptor = %+v", d)
	}
	if cfg.DebugPreview == nil || cfg.DebugPreview.Width != 320 {
		t.Errorf("debug preview = %+v", cfg.DebugPreview)
	}

	ts, err := cfg.BuildTransformations()
	if err != nil {
		t.Fatalf("BuildTransformations: %v", err)
	}
	if len(ts) != 4 {
		t.Fatalf("transformations = %d, want 4", len(ts))
	}
	if s, ok := ts[0].(transform.ScaleToFit); !ok || s.ScaleX != 2 {
		t.Errorf("ts[0] = %#v", ts[0])
	}
	if p, ok := ts[2].(transform.Presentation); !ok || p.Layout() != transform.LayoutStretchToFit {
		t.Errorf("ts[2] = %#v", ts[2])
	}

	size, err := transform.ConfigureOutputSize(1920, 1080, ts)
	if err != nil {
		t.Fatalf("ConfigureOutputSize: %v", err)
	}
	// 1920x1080 -> 3840x1080 -> 2560x720 -> 640x480 -> 640x427
	if size != (present.Size{Width: 640, Height: 427}) {
		t.Errorf("output size = %+v, want 640x427", size)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if cfg.HasTarget() || cfg.SlogLevel() != slog.LevelInfo || len(cfg.Transformations) != 0 {
		t.Errorf("empty config = %+v", cfg)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		invalid bool
	}{
		{"unknown key", "frame_rate: 30\n", false},
		{"bad yaml", "target: [\n", false},
		{"log level", "log_level: loud\n", true},
		{"orientation", "target: {width: 10, height: 10, orientation: 45}\n", true},
		{"negative target", "target: {width: -1, height: 10}\n", true},
		{"preview size", "debug_preview: {width: 0, height: 10}\n", true},
		{"missing kind", "transformations: [{scale_x: 2}]\n", true},
		{"unknown kind", "transformations: [{kind: blur}]\n", true},
		{"negative scale", "transformations: [{kind: scale_to_fit, scale_x: -1}]\n", true},
		{"bad layout", "transformations: [{kind: presentation, height: 10, layout: zoom}]\n", true},
		{"empty presentation", "transformations: [{kind: presentation}]\n", true},
		{"width only", "transformations: [{kind: presentation, width: 10}]\n", true},
		{"ratio and size", "transformations: [{kind: presentation, height: 10, aspect_ratio: 1}]\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse succeeded")
			}
			if got := errors.Is(err, ErrInvalidConfig); got != tt.invalid {
				t.Errorf("errors.Is(%v, ErrInvalidConfig) = %v, want %v", err, got, tt.invalid)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "present.yaml")
	if err := os.WriteFile(path, []byte(full), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Target.Width != 1080 {
		t.Errorf("target width = %d", cfg.Target.Width)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want ErrNotExist", err)
	}
}

func TestSlogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		c := Config{LogLevel: in}
		if got := c.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestStageOptions(t *testing.T) {
	cfg, err := Parse([]byte("stream_offset_us: 500\ntarget: {width: 64, height: 48}\ntransformations: [{kind: scale_to_fit, rotation_degrees: 180}]\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	views := preview.ViewProviderFunc(func(int, int) preview.View { return nil })
	opts, err := cfg.StageOptions(views, nil)
	if err != nil {
		t.Fatalf("StageOptions: %v", err)
	}

	platform := gputest.New()
	st := stage.New(platform, nil, opts...)
	defer st.Release()
	d := cfg.Descriptor(3)
	st.SetTarget(&d)
	if !st.Submit(present.TextureFrame{Texture: 1, Width: 128, Height: 96}, 10) {
		t.Fatal("Submit declined")
	}
	times := platform.PresentationTimes(3)
	if len(times) != 1 || times[0] != 510_000 {
		t.Errorf("presentation times = %v, want [510000]", times)
	}
	// The 180 degree rotation flips both axes.
	x, y := platform.Draws()[0].Transform.TransformPoint(1, 1)
	if x > -0.999 || y > -0.999 {
		t.Errorf("(1,1) maps to (%v,%v), want (-1,-1)", x, y)
	}
}
