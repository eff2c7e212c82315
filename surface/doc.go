// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package surface manages the primary output surface of the presentation
// stage.
//
// A Manager owns everything derived from the output target: the onscreen
// gpu.Surface created from the target's window handle and the
// transform.Processor that fits frames to it. Callers on any goroutine
// replace the target with SetTarget; the GPU goroutine converges the
// derived resources with EnsureReady or Render.
//
// # Invalidation
//
// Targets are compared by value. Setting a target equal to the current one
// does nothing. Any other change retires the current surface: it is no
// longer used, and it is destroyed on the GPU goroutine at the next
// convergence. The next convergence then creates a new surface and
// rebuilds the processor for it, even if the new target has the same
// dimensions as the old one.
//
// # Color space
//
// Surfaces are created in gpu.ColorSpaceSDR unless the manager is created
// WithColorSpace(gpu.ColorSpaceBT2020PQ).
package surface
