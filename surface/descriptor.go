// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"

	"github.com/gogpu/present/gpu"
	"github.com/gogpu/present/transform"
)

// ErrInvalidDescriptor is returned by Descriptor.Validate.
var ErrInvalidDescriptor = errors.New("surface: invalid descriptor")

// Descriptor identifies an output target. Descriptors are compared with ==.
type Descriptor struct {
	// Handle is the platform window the surface is created from.
	Handle gpu.Handle

	// Width and Height are the target size in pixels.
	Width  int
	Height int

	// OrientationDegrees is the counter-clockwise rotation to apply so
	// frames appear upright on the target: 0, 90, 180 or 270.
	OrientationDegrees int
}

// Validate reports whether d describes a usable target.
func (d Descriptor) Validate() error {
	switch {
	case d.Handle == 0:
		return fmt.Errorf("%w: zero handle", ErrInvalidDescriptor)
	case d.Width <= 0 || d.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidDescriptor, d.Width, d.Height)
	case !transform.ValidOrientation(d.OrientationDegrees):
		return fmt.Errorf("%w: orientation %d", ErrInvalidDescriptor, d.OrientationDegrees)
	}
	return nil
}

// Target returns the geometry the transform chain has to fit.
func (d Descriptor) Target() transform.Target {
	return transform.Target{
		Width:              d.Width,
		Height:             d.Height,
		OrientationDegrees: d.OrientationDegrees,
	}
}

// sameTarget reports whether a and b describe the same target. Two nil
// descriptors are equal; nil and non-nil are not.
func sameTarget(a, b *Descriptor) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
