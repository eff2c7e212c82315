// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package transform

import (
	"fmt"
	"math"

	"github.com/gogpu/present"
)

// Layout controls how a Presentation maps a frame onto a different aspect
// ratio.
type Layout int

const (
	// LayoutScaleToFit letterboxes or pillarboxes the frame so it is fully
	// visible.
	LayoutScaleToFit Layout = iota

	// LayoutScaleToFitWithCrop fills the output and crops whatever falls
	// outside it.
	LayoutScaleToFitWithCrop

	// LayoutStretchToFit stretches the frame to the output aspect ratio.
	LayoutStretchToFit
)

// String returns the configuration name of the layout.
func (l Layout) String() string {
	switch l {
	case LayoutScaleToFit:
		return "scale_to_fit"
	case LayoutScaleToFitWithCrop:
		return "scale_to_fit_with_crop"
	case LayoutStretchToFit:
		return "stretch_to_fit"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// ParseLayout returns the layout with the given configuration name.
func ParseLayout(s string) (Layout, error) {
	for _, l := range []Layout{LayoutScaleToFit, LayoutScaleToFitWithCrop, LayoutStretchToFit} {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("transform: unknown layout %q", s)
}

// Presentation resizes the frame to a requested size or aspect ratio.
// Construct it with PresentationForSize, PresentationForHeight or
// PresentationForAspectRatio; the zero value leaves the frame unchanged.
type Presentation struct {
	width       int
	height      int
	aspectRatio float64
	layout      Layout
}

// PresentationForSize returns a Presentation whose output is exactly
// width x height.
func PresentationForSize(width, height int, layout Layout) Presentation {
	return Presentation{width: width, height: height, layout: layout}
}

// PresentationForHeight returns a Presentation that scales the frame to
// the given height, keeping its aspect ratio.
func PresentationForHeight(height int) Presentation {
	return Presentation{height: height, layout: LayoutScaleToFit}
}

// PresentationForAspectRatio returns a Presentation that changes the aspect
// ratio of the frame, using layout to decide how the content is fitted.
func PresentationForAspectRatio(ratio float64, layout Layout) Presentation {
	return Presentation{aspectRatio: ratio, layout: layout}
}

// Size returns the requested dimensions. Unset dimensions are zero.
func (p Presentation) Size() present.Size {
	return present.Size{Width: p.width, Height: p.height}
}

// Layout returns the layout.
func (p Presentation) Layout() Layout { return p.layout }

func (p Presentation) validate() error {
	switch {
	case p.width < 0 || p.height < 0:
		return fmt.Errorf("%w: requested %dx%d", ErrInvalidSize, p.width, p.height)
	case p.width > 0 && p.height == 0:
		return fmt.Errorf("%w: width requires a height", ErrInvalidSize)
	case p.aspectRatio < 0 || math.IsNaN(p.aspectRatio) || math.IsInf(p.aspectRatio, 0):
		return fmt.Errorf("%w: aspect ratio %v", ErrInvalidSize, p.aspectRatio)
	case p.aspectRatio > 0 && p.height > 0:
		return fmt.Errorf("%w: aspect ratio and size are exclusive", ErrInvalidSize)
	case p.layout < LayoutScaleToFit || p.layout > LayoutStretchToFit:
		return fmt.Errorf("transform: unknown layout %v", p.layout)
	}
	return nil
}

// Configure implements MatrixTransformation.
func (p Presentation) Configure(width, height int) (present.Size, MatrixFunc, error) {
	if err := checkSize(width, height); err != nil {
		return present.Size{}, nil, err
	}
	if err := p.validate(); err != nil {
		return present.Size{}, nil, err
	}

	m := present.Identity()
	outW, outH := float64(width), float64(height)

	ratio := p.aspectRatio
	if p.width > 0 && p.height > 0 {
		ratio = float64(p.width) / float64(p.height)
	}
	if ratio > 0 {
		m, outW, outH = applyAspectRatio(p.layout, ratio, outW, outH)
	}

	if p.height > 0 {
		if p.width > 0 {
			outW = float64(p.width)
		} else {
			outW = float64(p.height) * outW / outH
		}
		outH = float64(p.height)
	}

	size := present.Size{Width: int(math.Round(outW)), Height: int(math.Round(outH))}
	if err := checkSize(size.Width, size.Height); err != nil {
		return present.Size{}, nil, err
	}
	return size, Constant(m), nil
}

// applyAspectRatio returns the NDC matrix and the output size that give a
// w x h frame the requested aspect ratio.
func applyAspectRatio(layout Layout, ratio, w, h float64) (present.Matrix, float64, float64) {
	input := w / h
	wider := ratio > input
	switch layout {
	case LayoutScaleToFit:
		if wider {
			return present.Scale(input/ratio, 1), h * ratio, h
		}
		return present.Scale(1, ratio/input), w, w / ratio
	case LayoutScaleToFitWithCrop:
		if wider {
			return present.Scale(1, ratio/input), w, w / ratio
		}
		return present.Scale(input/ratio, 1), h * ratio, h
	default:
		if wider {
			return present.Identity(), h * ratio, h
		}
		return present.Identity(), w, w / ratio
	}
}

var _ MatrixTransformation = Presentation{}
