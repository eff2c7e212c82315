// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package stage implements the final stage of a GPU frame pipeline: it
// draws each input texture through the transform chain onto the output
// surface and presents it at the frame's timestamp.
//
// Submit, Release and the listener callbacks run on the GPU goroutine.
// SetTarget and debug view events may arrive from any goroutine.
package stage

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu"
	"github.com/gogpu/present/metrics"
	"github.com/gogpu/present/preview"
	"github.com/gogpu/present/surface"
	"github.com/gogpu/present/transform"
)

// State is the observable state of a Stage.
type State int32

const (
	// StateUnconfigured means the last frame found no usable output target.
	StateUnconfigured State = iota

	// StateReady means the output surface and processor are built.
	StateReady

	// StatePresenting means a frame is being drawn and presented.
	StatePresenting

	// StateReleased is terminal.
	StateReleased
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnconfigured:
		return "unconfigured"
	case StateReady:
		return "ready"
	case StatePresenting:
		return "presenting"
	case StateReleased:
		return "released"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// PresentationTimeNs returns the platform presentation time for a frame
// timestamp: (presentationTimeUs + streamOffsetUs) * 1000.
func PresentationTimeNs(presentationTimeUs, streamOffsetUs int64) int64 {
	return (presentationTimeUs + streamOffsetUs) * 1000
}

// Stage is the terminal pipeline stage. It consumes textures but produces
// none, so it implements present.TextureConsumer only.
type Stage struct {
	platform   gpu.Platform
	listener   present.Listener
	offsetUs   int64
	colorSpace gpu.ColorSpace
	views      preview.ViewProvider
	metrics    *metrics.Metrics
	log        *slog.Logger
	manager    *surface.Manager

	listenerMu    sync.Mutex
	frameListener present.FrameListener

	state    atomic.Int32
	released atomic.Bool

	// Owned by the GPU goroutine.
	mirror      *preview.Mirror
	pendingView *surface.Descriptor
}

// New creates a stage presenting on platform and reporting pipeline
// events to listener. A nil listener discards events. The stage starts
// without an output target; frames are declined until SetTarget is
// called.
func New(platform gpu.Platform, listener present.Listener, opts ...Option) *Stage {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if listener == nil {
		listener = present.ListenerFuncs{}
	}

	s := &Stage{
		platform:   platform,
		listener:   listener,
		offsetUs:   o.streamOffsetUs,
		colorSpace: gpu.ColorSpaceFor(o.hdr),
		views:      o.views,
		metrics:    o.metrics,
		log:        o.logger,
	}
	s.manager = surface.NewManager(platform, transform.NewBuilder(platform, o.transformations),
		surface.WithColorSpace(s.colorSpace),
		surface.WithLogger(o.logger),
		surface.WithHooks(surface.Hooks{
			OutputSizeChanged: s.onOutputSizeChanged,
			SurfaceCreated:    s.onSurfaceCreated,
			ProcessorBuilt:    func(*transform.Processor) { s.metrics.ProcessorBuilt() },
		}),
	)
	return s
}

func (s *Stage) logger() *slog.Logger {
	if s.log != nil {
		return s.log
	}
	return present.Logger()
}

// State returns the state after the most recent call.
func (s *Stage) State() State { return State(s.state.Load()) }

// SetFrameListener implements present.TextureConsumer.
func (s *Stage) SetFrameListener(l present.FrameListener) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.frameListener = l
}

func (s *Stage) currentFrameListener() present.FrameListener {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	return s.frameListener
}

// SetTarget replaces the output target. A nil d removes it. It may be
// called from any goroutine at any time, including after Release.
func (s *Stage) SetTarget(d *surface.Descriptor) {
	s.manager.SetTarget(d)
}

// Submit draws frame onto the output target and presents it at
// presentationTimeUs plus the stream offset.
//
// Submit returns false if no output target is ready; the caller must
// offer the same frame again later. Otherwise the frame is consumed, even
// if it could not be presented: failures are reported to the listener's
// OnProcessingError and the frame is dropped.
func (s *Stage) Submit(frame present.TextureFrame, presentationTimeUs int64) bool {
	if s.released.Load() {
		s.reportError(present.ErrReleased, presentationTimeUs)
		return true
	}

	start := time.Now()
	ready, err := s.manager.Render(frame.Width, frame.Height, func(t surface.Target) error {
		s.state.Store(int32(StatePresenting))
		defer s.state.Store(int32(StateReady))
		return s.present(t, frame, presentationTimeUs)
	})
	s.bindPendingView()

	switch {
	case err != nil:
		s.reportError(err, presentationTimeUs)
	case !ready:
		s.state.Store(int32(StateUnconfigured))
		s.metrics.FrameDeclined()
		return false
	default:
		s.metrics.FramePresented(time.Since(start))
	}

	s.renderPreview(frame, presentationTimeUs)

	if l := s.currentFrameListener(); l != nil {
		l.OnFrameConsumed(frame)
	}
	return true
}

func (s *Stage) present(t surface.Target, frame present.TextureFrame, presentationTimeUs int64) error {
	d := t.Descriptor
	if err := s.platform.Focus(t.Surface, d.Width, d.Height); err != nil {
		return present.GPUError("focus", err)
	}
	if err := s.platform.Clear(); err != nil {
		return present.GPUError("clear", err)
	}
	if err := t.Processor.Draw(frame.Texture, presentationTimeUs); err != nil {
		return err
	}
	ns := PresentationTimeNs(presentationTimeUs, s.offsetUs)
	if err := s.platform.SetPresentationTime(t.Surface, ns); err != nil {
		return present.GPUError("set presentation time", err)
	}
	return present.GPUError("swap buffers", s.platform.SwapBuffers(t.Surface))
}

// renderPreview mirrors the frame into the debug preview. It runs without
// the primary lock held and never fails the frame.
func (s *Stage) renderPreview(frame present.TextureFrame, presentationTimeUs int64) {
	if s.mirror == nil {
		return
	}
	p := s.manager.Processor()
	if p == nil {
		return
	}
	err := s.mirror.MaybeRender(func() error {
		if err := s.platform.Clear(); err != nil {
			return present.GPUError("clear preview", err)
		}
		return p.Draw(frame.Texture, presentationTimeUs)
	})
	if err != nil {
		s.metrics.PreviewFailed()
		s.logger().Debug("stage: debug preview render failed", "pts_us", presentationTimeUs, "err", err)
	}
}

// bindPendingView asks the view provider for a preview view after a new
// output surface was created. A nil view keeps the current mirror.
func (s *Stage) bindPendingView() {
	d := s.pendingView
	if d == nil {
		return
	}
	s.pendingView = nil

	view := s.views.PreviewView(d.Width, d.Height)
	if view == nil {
		return
	}
	if s.mirror != nil {
		s.mirror.Close()
	}
	s.mirror = preview.New(s.platform, view,
		preview.WithColorSpace(s.colorSpace),
		preview.WithLogger(s.log),
	)
	s.logger().Debug("stage: debug preview bound", "width", d.Width, "height", d.Height)
}

func (s *Stage) onOutputSizeChanged(width, height int) {
	s.metrics.OutputSizeChanged()
	s.listener.OnOutputSizeChanged(width, height)
}

func (s *Stage) onSurfaceCreated(d surface.Descriptor) {
	s.metrics.SurfaceCreated()
	if s.views != nil {
		s.pendingView = &d
	}
}

func (s *Stage) reportError(err error, presentationTimeUs int64) {
	fpe := present.NewFrameProcessingError(err, presentationTimeUs)
	s.metrics.ProcessingError()
	s.logger().Warn("stage: frame processing failed", "pts_us", presentationTimeUs, "err", err)
	s.listener.OnProcessingError(fpe, presentationTimeUs)
}

// SignalEndOfStream implements present.TextureConsumer. It reports the
// end of the stream to the listener.
func (s *Stage) SignalEndOfStream() {
	s.listener.OnStreamEnded()
}

// Release implements present.TextureConsumer. It releases the processor
// and destroys every surface the stage created. It must be called once,
// on the GPU goroutine; later calls return present.ErrReleased.
func (s *Stage) Release() error {
	if !s.released.CompareAndSwap(false, true) {
		return present.ErrReleased
	}
	s.state.Store(int32(StateReleased))
	s.manager.Release()
	if s.mirror != nil {
		s.mirror.Close()
		s.mirror = nil
	}
	s.pendingView = nil
	return nil
}

var _ present.TextureConsumer = (*Stage)(nil)
