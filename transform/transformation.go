// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package transform builds and runs the chain of matrix transformations
// applied to every frame before it is presented.
//
// Matrices operate in normalized device coordinates: the frame spans
// [-1, 1] on both axes. A transformation may change the output size, in
// which case the next transformation in the chain is configured with the
// new size.
package transform

import (
	"errors"
	"fmt"

	"github.com/gogpu/present"
)

// Errors returned by transformations and processors.
var (
	// ErrInvalidSize is returned when a transformation is configured with a
	// non-positive size, or is constructed with invalid dimensions.
	ErrInvalidSize = errors.New("transform: invalid size")

	// ErrInvalidOrientation is returned for an orientation that is not a
	// multiple of 90 degrees in [0, 360).
	ErrInvalidOrientation = errors.New("transform: invalid orientation")

	// ErrNotConfigured is returned when drawing with a processor that has
	// not been configured.
	ErrNotConfigured = errors.New("transform: processor not configured")

	// ErrProcessorReleased is returned when a released processor is used.
	ErrProcessorReleased = errors.New("transform: processor released")
)

// MatrixFunc returns the NDC matrix to apply to the frame with the given
// presentation timestamp.
type MatrixFunc func(presentationTimeUs int64) present.Matrix

// Constant returns a MatrixFunc that ignores the timestamp.
func Constant(m present.Matrix) MatrixFunc {
	return func(int64) present.Matrix { return m }
}

// MatrixTransformation is one step of the chain.
//
// Implementations are immutable values: Configure derives everything from
// its arguments, so the same transformation can be configured by several
// processors at once.
type MatrixTransformation interface {
	// Configure returns the output size for an input of width x height
	// pixels and the matrix function to apply.
	Configure(width, height int) (present.Size, MatrixFunc, error)
}

// ConfigureOutputSize configures every transformation in order, starting
// with width x height, and returns the final output size.
func ConfigureOutputSize(width, height int, seq []MatrixTransformation) (present.Size, error) {
	size := present.Size{Width: width, Height: height}
	if err := checkSize(width, height); err != nil {
		return size, err
	}
	for i, t := range seq {
		next, _, err := t.Configure(size.Width, size.Height)
		if err != nil {
			return size, fmt.Errorf("transform: configure step %d: %w", i, err)
		}
		size = next
	}
	return size, nil
}

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return nil
}
