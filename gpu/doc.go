// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpu is the boundary between the presentation stage and the
// graphics platform: the display connection and the rendering context
// shared with upstream pipeline stages.
//
// A [Platform] creates onscreen [Surface] values from opaque window
// [Handle] values, in either the standard or the HDR (BT.2020 PQ)
// [ColorSpace], and issues the handful of calls the final stage needs:
// focus, clear, draw through a transform [Program], set the presentation
// time and swap buffers. [Platform.Finish] drains all submitted GPU work.
//
// [SoftwarePlatform] is a CPU reference implementation backed by
// *image.RGBA windows; it is used by the demo command and by tests that
// need real pixels. Drainers connect Finish to a shared GPU device:
// [ProviderDrainer] for a gpucontext.DeviceProvider and [HALDrainer] for
// a wgpu HAL device. [WithHALDevice] also creates a HAL shader module for
// every program.
//
// Thread Safety: Platform implementations must tolerate calls from the GPU
// goroutine concurrently with window management from other goroutines.
package gpu
