package main

import (
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/present/config"
)

func TestRun(t *testing.T) {
	cfg, err := config.Parse([]byte("target: {width: 64, height: 36}\ndebug_preview: {width: 32, height: 18}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	dir := t.TempDir()
	d := demo{
		frames:        4,
		inputWidth:    32,
		inputHeight:   18,
		output:        filepath.Join(dir, "out.png"),
		previewOutput: filepath.Join(dir, "preview.png"),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := run(cfg, log, d); err != nil {
		t.Fatalf("run: %v", err)
	}

	// The target switches to portrait halfway through.
	checkPNG(t, d.output, 36, 64)
	checkPNG(t, d.previewOutput, 32, 18)
}

func TestRunHALNoop(t *testing.T) {
	cfg, err := config.Parse([]byte("target: {width: 16, height: 16}\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	d := demo{
		frames:      2,
		inputWidth:  8,
		inputHeight: 8,
		output:      filepath.Join(t.TempDir(), "out.png"),
		halNoop:     true,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := run(cfg, log, d); err != nil {
		if strings.Contains(err.Error(), "not yet implemented") || strings.Contains(err.Error(), "not supported") {
			t.Skipf("Skipping: naga feature not yet implemented: %v", err)
		}
		t.Fatalf("run: %v", err)
	}
	checkPNG(t, d.output, 16, 16)
}

func TestRunInvalid(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := run(cfg, log, demo{frames: 0, inputWidth: 1, inputHeight: 1}); err == nil {
		t.Error("run with zero frames succeeded")
	}
}

func checkPNG(t *testing.T, path string, width, height int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		t.Errorf("%s is %dx%d, want %dx%d", filepath.Base(path), b.Dx(), b.Dy(), width, height)
	}
}
