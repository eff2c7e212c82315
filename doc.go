// Package present is the final presentation stage of a GPU frame
// processing pipeline.
//
// # Overview
//
// Upstream stages hand decoded or processed textures to the final stage,
// which applies a chain of matrix transformations, fits the result to an
// output surface (a display or an encoder input) and swaps buffers with an
// exact presentation timestamp. A debug preview surface may mirror the same
// render on a best-effort basis.
//
// # Quick Start
//
//	platform := gpu.NewSoftwarePlatform()
//	window := platform.NewWindow(800, 600)
//
//	s := stage.New(platform, listener,
//	    stage.WithTransformations(transform.Rotation(90)),
//	    stage.WithStreamOffset(1_000_000),
//	)
//	defer s.Release()
//	s.SetTarget(&surface.Descriptor{Handle: window, Width: 800, Height: 600})
//
//	// On the GPU goroutine, for every frame:
//	for !s.Submit(frame, ptsUs) {
//	    // not ready: keep the frame and retry later
//	}
//
// # Architecture
//
// The module is organized into:
//   - present: shared vocabulary (frames, matrices, listeners, errors, logging)
//   - gpu: the platform boundary (surfaces, programs, presentation, drain)
//   - transform: matrix transformations and the processor that draws them
//   - surface: lifecycle of the primary output surface
//   - preview: the optional debug preview mirror
//   - stage: the per-frame entry point tying everything together
//   - metrics: Prometheus instrumentation of the stage
//   - config: YAML configuration of a stage
//
// # Threading
//
// All GPU work (Submit, Release) happens on one goroutine. Targets and
// preview lifecycle events may arrive from any goroutine. The primary
// output and the preview are guarded independently, so churn on one never
// blocks the other.
package present
