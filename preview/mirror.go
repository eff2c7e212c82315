// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package preview mirrors presented frames into a debug preview view.
//
// The preview is best effort. A Mirror tracks the lifecycle of a UI view
// through events delivered on the view's channel and renders into its own
// surface under its own lock, so view churn on the UI goroutine never
// blocks the primary output.
package preview

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu"
	"github.com/gogpu/present/internal/lazy"
)

// SizeUnset is reported for both dimensions after the view is destroyed.
const SizeUnset = -1

// EventKind is the kind of a view lifecycle event.
type EventKind int

const (
	// EventCreated reports that the view's window became available.
	EventCreated EventKind = iota

	// EventChanged reports a new window handle or size.
	EventChanged

	// EventDestroyed reports that the view's window is gone.
	EventDestroyed
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventChanged:
		return "changed"
	case EventDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a view lifecycle notification.
type Event struct {
	Kind   EventKind
	Handle gpu.Handle
	Width  int
	Height int
}

// View is a UI widget that can display the preview.
type View interface {
	// Handle returns the current window handle, or 0 if there is none.
	Handle() gpu.Handle

	// Size returns the current view size.
	Size() (width, height int)

	// Events returns the channel lifecycle events are delivered on. A nil
	// channel means the view never changes.
	Events() <-chan Event
}

// ViewProvider supplies preview views.
type ViewProvider interface {
	// PreviewView returns a view for an output of width x height pixels,
	// or nil if no preview should be shown.
	PreviewView(width, height int) View
}

// ViewProviderFunc adapts a function to a ViewProvider.
type ViewProviderFunc func(width, height int) View

// PreviewView implements ViewProvider.
func (f ViewProviderFunc) PreviewView(width, height int) View { return f(width, height) }

// Option configures a Mirror.
type Option func(*Mirror)

// WithColorSpace sets the color space of the preview surface.
func WithColorSpace(cs gpu.ColorSpace) Option {
	return func(m *Mirror) {
		m.colorSpace = cs
	}
}

// WithLogger sets the logger. By default the mirror logs to
// present.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(m *Mirror) {
		m.log = l
	}
}

// Mirror renders copies of the output into a preview view.
//
// Apply may be called from any goroutine. MaybeRender and Close must be
// called from the GPU goroutine.
type Mirror struct {
	platform   gpu.Platform
	colorSpace gpu.ColorSpace
	log        *slog.Logger

	mu      sync.Mutex
	handle  gpu.Handle
	width   int
	height  int
	surface lazy.Slot[gpu.Surface]
	retired []gpu.Surface
	closed  bool

	stop chan struct{}
	wg   sync.WaitGroup
}

// New binds a mirror to view and starts delivering the view's events to
// it.
func New(platform gpu.Platform, view View, opts ...Option) *Mirror {
	m := &Mirror{
		platform: platform,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.handle = view.Handle()
	m.width, m.height = view.Size()

	if events := view.Events(); events != nil {
		m.wg.Add(1)
		go m.run(events)
	}
	return m
}

func (m *Mirror) logger() *slog.Logger {
	if m.log != nil {
		return m.log
	}
	return present.Logger()
}

func (m *Mirror) run(events <-chan Event) {
	defer m.wg.Done()
	for {
		select {
		case <-m.stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.Apply(ev)
		}
	}
}

// Apply updates the mirror for ev.
func (m *Mirror) Apply(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}

	switch ev.Kind {
	case EventCreated:
	case EventChanged:
		m.width, m.height = ev.Width, ev.Height
		if m.handle == 0 || m.handle != ev.Handle {
			m.handle = ev.Handle
			m.retireLocked()
		}
	case EventDestroyed:
		m.handle = 0
		m.width, m.height = SizeUnset, SizeUnset
		m.retireLocked()
	}
	m.logger().Debug("preview: view event", "kind", ev.Kind.String(), "handle", ev.Handle,
		"width", ev.Width, "height", ev.Height)
}

func (m *Mirror) retireLocked() {
	if s, ok := m.surface.Take(); ok {
		m.retired = append(m.retired, s)
	}
}

// State returns the bound handle and view size. The handle is 0 when no
// view window is bound.
func (m *Mirror) State() (gpu.Handle, present.Size) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle, present.Size{Width: m.width, Height: m.height}
}

// HasSurface reports whether a preview surface is built.
func (m *Mirror) HasSurface() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.surface.Built()
}

// MaybeRender renders into the preview. It does nothing if no view window
// is bound. Otherwise it focuses the preview surface, creating it if
// needed, runs task, presents, and blocks until the GPU has finished so
// the view does not flicker when frames arrive faster than it displays
// them.
func (m *Mirror) MaybeRender(task func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.destroyRetiredLocked()
	if m.closed || m.handle == 0 {
		return nil
	}

	s, ok := m.surface.Get()
	if !ok {
		var err error
		s, err = m.platform.CreateWindowSurface(m.handle, m.colorSpace)
		if err != nil {
			return present.GPUError("create preview surface", err)
		}
		m.surface.Set(s)
		m.logger().Debug("preview: surface created", "handle", m.handle,
			"color_space", m.colorSpace.String())
	}

	if err := m.platform.Focus(s, m.width, m.height); err != nil {
		return present.GPUError("focus preview", err)
	}
	if err := task(); err != nil {
		return err
	}
	if err := m.platform.SwapBuffers(s); err != nil {
		return present.GPUError("swap preview", err)
	}
	return present.GPUError("finish", m.platform.Finish())
}

func (m *Mirror) destroyRetiredLocked() {
	for i, s := range m.retired {
		m.platform.DestroySurface(s)
		m.retired[i] = nil
	}
	m.retired = m.retired[:0]
}

// Close stops event delivery and destroys the preview surfaces. Closing
// twice is a no-op.
func (m *Mirror) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.stop)
	m.retireLocked()
	m.destroyRetiredLocked()
	m.mu.Unlock()

	m.wg.Wait()
}
