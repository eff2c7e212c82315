// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package transform

import (
	"errors"
	"testing"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu/gputest"
)

func TestBuilderSequence(t *testing.T) {
	b := NewBuilder(gputest.New(), []MatrixTransformation{ScaleToFit{ScaleX: 2}})

	tests := []struct {
		name   string
		target Target
		want   int
	}{
		{"upright", Target{Width: 800, Height: 600}, 2},
		{"rotated", Target{Width: 600, Height: 800, OrientationDegrees: 90}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := b.Sequence(tt.target)
			if len(seq) != tt.want {
				t.Fatalf("len = %d, want %d", len(seq), tt.want)
			}
			last, ok := seq[len(seq)-1].(Presentation)
			if !ok {
				t.Fatalf("last step is %T, want Presentation", seq[len(seq)-1])
			}
			if last.Size() != (present.Size{Width: tt.target.Width, Height: tt.target.Height}) {
				t.Errorf("fit size = %+v", last.Size())
			}
			if last.Layout() != LayoutScaleToFit {
				t.Errorf("fit layout = %v", last.Layout())
			}
		})
	}
}

func TestBuilderBuild(t *testing.T) {
	tests := []struct {
		name   string
		target Target
	}{
		{"upright", Target{Width: 800, Height: 600}},
		{"rotated 90", Target{Width: 600, Height: 800, OrientationDegrees: 90}},
		{"rotated 180", Target{Width: 640, Height: 480, OrientationDegrees: 180}},
		{"rotated 270", Target{Width: 1080, Height: 1920, OrientationDegrees: 270}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := gputest.New()
			proc, err := NewBuilder(platform, nil).Build(1920, 1080, tt.target)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			want := present.Size{Width: tt.target.Width, Height: tt.target.Height}
			if proc.OutputSize() != want {
				t.Errorf("output = %+v, want %+v", proc.OutputSize(), want)
			}
			if got := platform.Count(gputest.OpCreateProgram); got != 1 {
				t.Errorf("programs created = %d, want 1", got)
			}
		})
	}
}

func TestBuilderInvalidOrientation(t *testing.T) {
	platform := gputest.New()
	_, err := NewBuilder(platform, nil).Build(1920, 1080, Target{Width: 800, Height: 600, OrientationDegrees: 45})
	if !errors.Is(err, present.ErrProcessingConfiguration) || !errors.Is(err, ErrInvalidOrientation) {
		t.Errorf("error = %v, want configuration error wrapping ErrInvalidOrientation", err)
	}
	if got := platform.Count(gputest.OpCreateProgram); got != 0 {
		t.Errorf("programs created = %d, want 0", got)
	}
}

func TestBuilderSizeMismatch(t *testing.T) {
	platform := gputest.New()
	b := NewBuilder(platform, nil)
	b.fit = func(_, height int) MatrixTransformation { return PresentationForHeight(height) }

	_, err := b.Build(1920, 1080, Target{Width: 800, Height: 600})
	if !errors.Is(err, present.ErrProcessingConfiguration) {
		t.Fatalf("error = %v, want ErrProcessingConfiguration", err)
	}
	if got := platform.Count(gputest.OpDeleteProgram); got != 1 {
		t.Errorf("programs deleted = %d, want 1", got)
	}
}

func TestBuilderBaseIsCopied(t *testing.T) {
	base := []MatrixTransformation{ScaleToFit{ScaleX: 2}}
	b := NewBuilder(gputest.New(), base)
	base[0] = Rotation(90)

	size, err := b.OutputSize(100, 50)
	if err != nil {
		t.Fatalf("OutputSize: %v", err)
	}
	if size != (present.Size{Width: 200, Height: 50}) {
		t.Errorf("size = %+v, want 200x50", size)
	}

	got := b.Base()
	got[0] = Rotation(90)
	if _, ok := b.Base()[0].(ScaleToFit); !ok || b.Base()[0] != (ScaleToFit{ScaleX: 2}) {
		t.Error("Base returned the internal slice")
	}
}

func TestValidOrientation(t *testing.T) {
	for _, d := range []int{0, 90, 180, 270} {
		if !ValidOrientation(d) {
			t.Errorf("ValidOrientation(%d) = false", d)
		}
	}
	for _, d := range []int{-90, 45, 360} {
		if ValidOrientation(d) {
			t.Errorf("ValidOrientation(%d) = true", d)
		}
	}
}
