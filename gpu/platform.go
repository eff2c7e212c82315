// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"

	"github.com/gogpu/present"
)

// Common errors returned by platforms.
var (
	// ErrUnknownHandle is returned when a window handle does not refer to a
	// live window.
	ErrUnknownHandle = errors.New("gpu: unknown window handle")

	// ErrSurfaceDestroyed is returned when a destroyed surface is used.
	ErrSurfaceDestroyed = errors.New("gpu: surface destroyed")

	// ErrNoDevice is returned when a device provider has no device.
	ErrNoDevice = errors.New("gpu: no device")

	// ErrNoSurface is returned when drawing without a focused surface.
	ErrNoSurface = errors.New("gpu: no focused surface")

	// ErrInvalidProgram is returned when drawing with a deleted or foreign
	// program.
	ErrInvalidProgram = errors.New("gpu: invalid program")
)

// Handle is an opaque platform window handle, such as a native window or an
// encoder input surface. The zero Handle refers to no window.
type Handle uint64

// Surface is an onscreen rendering surface derived from a window handle.
// A Surface is owned by whoever created it and must be destroyed through
// the Platform that created it.
type Surface interface {
	// Handle returns the window handle the surface was created from.
	Handle() Handle

	// ColorSpace returns the color space the surface was created with.
	ColorSpace() ColorSpace
}

// Program is a compiled transform program.
type Program interface {
	// Label returns the debug label given at creation.
	Label() string
}

// Platform is the display connection and rendering context used by the
// final stage.
type Platform interface {
	// CreateWindowSurface creates an onscreen surface for the window.
	CreateWindowSurface(h Handle, cs ColorSpace) (Surface, error)

	// DestroySurface releases a surface. Destroying a surface twice is a
	// no-op.
	DestroySurface(s Surface)

	// Focus makes s the current draw surface with a width x height viewport.
	Focus(s Surface, width, height int) error

	// Clear clears the focused surface to transparent black.
	Clear() error

	// CreateProgram compiles the WGSL transform program.
	CreateProgram(label, wgsl string) (Program, error)

	// DeleteProgram releases a program.
	DeleteProgram(p Program)

	// Draw samples texture through transform (an NDC to NDC matrix) into the
	// focused surface.
	Draw(p Program, texture present.TextureID, transform present.Matrix) error

	// SetPresentationTime sets the time, in nanoseconds, at which the next
	// swap of s should be displayed.
	SetPresentationTime(s Surface, timeNs int64) error

	// SwapBuffers presents the back buffer of s.
	SwapBuffers(s Surface) error

	// Finish blocks until all submitted GPU work has completed.
	Finish() error
}

// Drainer waits for all submitted GPU work on a device to complete.
type Drainer interface {
	Drain() error
}
