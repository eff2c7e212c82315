// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package transform

import (
	"fmt"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu"
)

// Target is the geometry of the surface a chain renders into.
type Target struct {
	Width              int
	Height             int
	OrientationDegrees int
}

// ValidOrientation reports whether degrees is 0, 90, 180 or 270.
func ValidOrientation(degrees int) bool {
	switch degrees {
	case 0, 90, 180, 270:
		return true
	}
	return false
}

// Builder appends the target-fitting transformations to a base chain and
// builds processors for it.
type Builder struct {
	platform gpu.Platform
	base     []MatrixTransformation

	// fit returns the final transformation for a target size.
	fit func(width, height int) MatrixTransformation
}

// NewBuilder returns a Builder for base. The sequence is copied.
func NewBuilder(platform gpu.Platform, base []MatrixTransformation) *Builder {
	return &Builder{
		platform: platform,
		base:     append([]MatrixTransformation(nil), base...),
		fit: func(width, height int) MatrixTransformation {
			return PresentationForSize(width, height, LayoutScaleToFit)
		},
	}
}

// Base returns a copy of the base sequence.
func (b *Builder) Base() []MatrixTransformation {
	return append([]MatrixTransformation(nil), b.base...)
}

// OutputSize returns the size the base sequence produces for a width x
// height input, before any target fitting.
func (b *Builder) OutputSize(width, height int) (present.Size, error) {
	return ConfigureOutputSize(width, height, b.base)
}

// Sequence returns the full chain for t: the base sequence, a rotation if
// the target is rotated, and a final fit to the target size.
func (b *Builder) Sequence(t Target) []MatrixTransformation {
	seq := b.Base()
	if t.OrientationDegrees != 0 {
		seq = append(seq, Rotation(float64(t.OrientationDegrees)))
	}
	return append(seq, b.fit(t.Width, t.Height))
}

// Build creates a processor for t configured with a width x height input.
// The processor output must match the target size exactly; otherwise the
// processor is released and an error wrapping
// present.ErrProcessingConfiguration is returned.
func (b *Builder) Build(width, height int, t Target) (*Processor, error) {
	if !ValidOrientation(t.OrientationDegrees) {
		return nil, fmt.Errorf("%w: %w: %d", present.ErrProcessingConfiguration, ErrInvalidOrientation, t.OrientationDegrees)
	}
	p, err := NewProcessor(b.platform, b.Sequence(t))
	if err != nil {
		return nil, err
	}
	out, err := p.Configure(width, height)
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("%w: %w", present.ErrProcessingConfiguration, err)
	}
	if out.Width != t.Width || out.Height != t.Height {
		p.Release()
		return nil, fmt.Errorf("%w: output %dx%d, target %dx%d",
			present.ErrProcessingConfiguration, out.Width, out.Height, t.Width, t.Height)
	}
	present.Logger().Debug("transform: processor built",
		"input_width", width, "input_height", height,
		"output_width", out.Width, "output_height", out.Height,
		"steps", p.Len())
	return p, nil
}
