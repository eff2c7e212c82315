// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu"
	"github.com/gogpu/present/internal/lazy"
	"github.com/gogpu/present/transform"
)

// Hooks are called by the manager while it converges. They run on the GPU
// goroutine with the manager's lock held and must not call back into the
// Manager.
type Hooks struct {
	// OutputSizeChanged is called when the output size of the base
	// transformations, before fitting to the target, changes.
	OutputSizeChanged func(width, height int)

	// SurfaceCreated is called after a surface is created for d.
	SurfaceCreated func(d Descriptor)

	// ProcessorBuilt is called after a processor is built for the current
	// target.
	ProcessorBuilt func(p *transform.Processor)
}

// Target is the converged state handed to Render callbacks.
type Target struct {
	Surface    gpu.Surface
	Descriptor Descriptor
	Processor  *transform.Processor
}

// Option configures a Manager.
type Option func(*Manager)

// WithColorSpace sets the color space surfaces are created in.
func WithColorSpace(cs gpu.ColorSpace) Option {
	return func(m *Manager) {
		m.colorSpace = cs
	}
}

// WithHooks installs convergence hooks.
func WithHooks(h Hooks) Option {
	return func(m *Manager) {
		m.hooks = h
	}
}

// WithLogger sets the logger. By default the manager logs to
// present.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.log = l
	}
}

// Manager owns the primary output surface and the processor bound to it.
//
// SetTarget may be called from any goroutine. EnsureReady, Render and
// Release must be called from the GPU goroutine.
type Manager struct {
	platform   gpu.Platform
	builder    *transform.Builder
	colorSpace gpu.ColorSpace
	hooks      Hooks
	log        *slog.Logger

	mu        sync.Mutex
	input     present.Size
	preFit    lazy.Slot[present.Size]
	target    *Descriptor
	surface   lazy.Slot[gpu.Surface]
	processor lazy.Slot[*transform.Processor]
	retired   []gpu.Surface
	released  bool
}

// NewManager returns a manager that creates surfaces on platform and
// processors with builder. It starts without a target.
func NewManager(platform gpu.Platform, builder *transform.Builder, opts ...Option) *Manager {
	m := &Manager{
		platform: platform,
		builder:  builder,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) logger() *slog.Logger {
	if m.log != nil {
		return m.log
	}
	return present.Logger()
}

// SetTarget replaces the output target. A nil d removes it. If d differs
// from the current target the built surface is retired; it is destroyed
// and replaced at the next convergence.
func (m *Manager) SetTarget(d *Descriptor) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sameTarget(m.target, d) {
		return
	}
	if d == nil {
		m.target = nil
	} else {
		c := *d
		m.target = &c
	}
	if s, ok := m.surface.Take(); ok {
		m.retired = append(m.retired, s)
		m.logger().Debug("surface: retired", "handle", s.Handle())
	}
}

// Descriptor returns the current target, if any.
func (m *Manager) Descriptor() (Descriptor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.target == nil {
		return Descriptor{}, false
	}
	return *m.target, true
}

// OutputSize returns the last computed output size before target fitting.
func (m *Manager) OutputSize() (present.Size, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.preFit.Get()
}

// Processor returns the built processor, or nil.
func (m *Manager) Processor() *transform.Processor {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, _ := m.processor.Get()
	return p
}

// EnsureReady converges the derived resources for a width x height input
// and reports whether a frame can be presented. Calling it again with no
// change in between does nothing.
func (m *Manager) EnsureReady(width, height int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureReadyLocked(width, height)
}

// Render converges like EnsureReady and, if ready, calls fn with the lock
// still held. It returns false without calling fn if there is no target.
func (m *Manager) Render(width, height int, fn func(Target) error) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ready, err := m.ensureReadyLocked(width, height)
	if err != nil || !ready {
		return ready, err
	}
	s, _ := m.surface.Get()
	p, _ := m.processor.Get()
	return true, fn(Target{Surface: s, Descriptor: *m.target, Processor: p})
}

func (m *Manager) ensureReadyLocked(width, height int) (bool, error) {
	if m.released {
		return false, present.ErrReleased
	}
	m.destroyRetiredLocked()

	input := present.Size{Width: width, Height: height}
	inputChanged := input != m.input || !m.preFit.Built()
	if inputChanged {
		size, err := m.builder.OutputSize(width, height)
		if err != nil {
			// The input stays unaccepted, so every retry recomputes.
			m.releaseProcessorLocked()
			return false, fmt.Errorf("%w: %w", present.ErrProcessingConfiguration, err)
		}
		m.input = input
		if old, ok := m.preFit.Get(); !ok || old != size {
			m.preFit.Set(size)
			if m.hooks.OutputSizeChanged != nil {
				m.hooks.OutputSizeChanged(size.Width, size.Height)
			}
		}
	}

	if m.target == nil {
		m.releaseProcessorLocked()
		m.destroySurfaceLocked()
		return false, nil
	}
	d := *m.target

	if !m.surface.Built() {
		s, err := m.platform.CreateWindowSurface(d.Handle, m.colorSpace)
		if err != nil {
			return false, present.GPUError("create surface", err)
		}
		m.surface.Set(s)
		m.logger().Info("surface: created",
			"handle", d.Handle, "width", d.Width, "height", d.Height,
			"orientation", d.OrientationDegrees, "color_space", m.colorSpace.String())
		m.releaseProcessorLocked()
		if m.hooks.SurfaceCreated != nil {
			m.hooks.SurfaceCreated(d)
		}
	}

	if !m.processor.Built() || inputChanged {
		m.releaseProcessorLocked()
		p, err := m.builder.Build(width, height, d.Target())
		if err != nil {
			return false, err
		}
		m.processor.Set(p)
		if m.hooks.ProcessorBuilt != nil {
			m.hooks.ProcessorBuilt(p)
		}
	}
	return true, nil
}

func (m *Manager) releaseProcessorLocked() {
	if p, ok := m.processor.Take(); ok {
		p.Release()
	}
}

func (m *Manager) destroySurfaceLocked() {
	if s, ok := m.surface.Take(); ok {
		m.platform.DestroySurface(s)
	}
}

func (m *Manager) destroyRetiredLocked() {
	for i, s := range m.retired {
		m.platform.DestroySurface(s)
		m.retired[i] = nil
	}
	m.retired = m.retired[:0]
}

// Release releases the processor and destroys all surfaces. Afterwards
// EnsureReady and Render fail with present.ErrReleased. Releasing twice
// is a no-op.
func (m *Manager) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return
	}
	m.released = true
	m.releaseProcessorLocked()
	m.destroySurfaceLocked()
	m.destroyRetiredLocked()
}
