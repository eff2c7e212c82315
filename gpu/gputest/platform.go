// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gputest provides a recording gpu.Platform for tests.
//
// The fake keeps no pixels. It counts every call, records draws and
// presentation times, injects failures per operation or per window handle,
// and rejects any use of a destroyed surface or deleted program so tests
// can assert the presentation stage never touches stale resources.
package gputest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu"
)

// Operation names accepted by Count and Fail.
const (
	OpCreateSurface       = "CreateWindowSurface"
	OpDestroySurface      = "DestroySurface"
	OpFocus               = "Focus"
	OpClear               = "Clear"
	OpCreateProgram       = "CreateProgram"
	OpDeleteProgram       = "DeleteProgram"
	OpDraw                = "Draw"
	OpSetPresentationTime = "SetPresentationTime"
	OpSwapBuffers         = "SwapBuffers"
	OpFinish              = "Finish"
)

// ErrStale is returned when a destroyed surface or deleted program is used.
var ErrStale = errors.New("gputest: use of released resource")

// Surface is the fake surface.
type Surface struct {
	id        int
	handle    gpu.Handle
	cs        gpu.ColorSpace
	destroyed bool
}

// Handle implements gpu.Surface.
func (s *Surface) Handle() gpu.Handle { return s.handle }

// ColorSpace implements gpu.Surface.
func (s *Surface) ColorSpace() gpu.ColorSpace { return s.cs }

// ID returns the creation order of the surface, starting at 1.
func (s *Surface) ID() int { return s.id }

type program struct {
	label   string
	deleted bool
}

func (p *program) Label() string { return p.label }

// Draw records one draw call.
type Draw struct {
	Handle    gpu.Handle
	Texture   present.TextureID
	Transform present.Matrix
	Uniform   [16]float32
	Viewport  present.Size
}

// Platform is a recording gpu.Platform. The zero value is not usable; call
// New.
type Platform struct {
	mu         sync.Mutex
	counts     map[string]int
	failOps    map[string]error
	failHandle map[gpu.Handle]error
	surfaces   []*Surface
	current    *Surface
	viewport   present.Size
	times      map[gpu.Handle][]int64
	draws      []Draw
	finishHook func()
}

// New creates a recording platform.
func New() *Platform {
	return &Platform{
		counts:     make(map[string]int),
		failOps:    make(map[string]error),
		failHandle: make(map[gpu.Handle]error),
		times:      make(map[gpu.Handle][]int64),
	}
}

// Fail makes every later call of op return err. A nil err clears it.
func (p *Platform) Fail(op string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		delete(p.failOps, op)
		return
	}
	p.failOps[op] = err
}

// FailHandle makes every surface operation on window h return err,
// including draws and clears while a surface of h is focused. A nil err
// clears it.
func (p *Platform) FailHandle(h gpu.Handle, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err == nil {
		delete(p.failHandle, h)
		return
	}
	p.failHandle[h] = err
}

// SetFinishHook installs fn to run inside Finish, without the platform
// lock held. Tests use it to block or observe the drain.
func (p *Platform) SetFinishHook(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finishHook = fn
}

// Count returns how many times op has been called.
func (p *Platform) Count(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[op]
}

// SurfacesCreated returns how many surfaces were created for h.
func (p *Platform) SurfacesCreated(h gpu.Handle) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.surfaces {
		if s.handle == h {
			n++
		}
	}
	return n
}

// LiveSurfaces returns the surfaces of h that have not been destroyed.
func (p *Platform) LiveSurfaces(h gpu.Handle) []*Surface {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*Surface
	for _, s := range p.surfaces {
		if s.handle == h && !s.destroyed {
			out = append(out, s)
		}
	}
	return out
}

// LastSurface returns the most recently created surface, or nil.
func (p *Platform) LastSurface() *Surface {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.surfaces) == 0 {
		return nil
	}
	return p.surfaces[len(p.surfaces)-1]
}

// PresentationTimes returns the presentation times set on surfaces of h,
// in call order.
func (p *Platform) PresentationTimes(h gpu.Handle) []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int64, len(p.times[h]))
	copy(out, p.times[h])
	return out
}

// Draws returns all recorded draws.
func (p *Platform) Draws() []Draw {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Draw, len(p.draws))
	copy(out, p.draws)
	return out
}

// DrawsTo returns the draws issued while a surface of h was focused.
func (p *Platform) DrawsTo(h gpu.Handle) []Draw {
	var out []Draw
	for _, d := range p.Draws() {
		if d.Handle == h {
			out = append(out, d)
		}
	}
	return out
}

func (p *Platform) begin(op string) error {
	p.counts[op]++
	return p.failOps[op]
}

func (p *Platform) check(s gpu.Surface) (*Surface, error) {
	fs, ok := s.(*Surface)
	if !ok || fs == nil {
		return nil, gpu.ErrNoSurface
	}
	if fs.destroyed {
		return nil, fmt.Errorf("%w: surface %d", ErrStale, fs.id)
	}
	if err := p.failHandle[fs.handle]; err != nil {
		return nil, err
	}
	return fs, nil
}

// CreateWindowSurface implements gpu.Platform.
func (p *Platform) CreateWindowSurface(h gpu.Handle, cs gpu.ColorSpace) (gpu.Surface, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(OpCreateSurface); err != nil {
		return nil, err
	}
	if h == 0 {
		return nil, gpu.ErrUnknownHandle
	}
	if err := p.failHandle[h]; err != nil {
		return nil, err
	}
	s := &Surface{id: len(p.surfaces) + 1, handle: h, cs: cs}
	p.surfaces = append(p.surfaces, s)
	return s, nil
}

// DestroySurface implements gpu.Platform.
func (p *Platform) DestroySurface(s gpu.Surface) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[OpDestroySurface]++
	if fs, ok := s.(*Surface); ok && fs != nil {
		fs.destroyed = true
		if p.current == fs {
			p.current = nil
		}
	}
}

// Focus implements gpu.Platform.
func (p *Platform) Focus(s gpu.Surface, width, height int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(OpFocus); err != nil {
		return err
	}
	fs, err := p.check(s)
	if err != nil {
		return err
	}
	p.current = fs
	p.viewport = present.Size{Width: width, Height: height}
	return nil
}

// Clear implements gpu.Platform.
func (p *Platform) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(OpClear); err != nil {
		return err
	}
	_, err := p.check(p.current)
	return err
}

// CreateProgram implements gpu.Platform.
func (p *Platform) CreateProgram(label, _ string) (gpu.Program, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(OpCreateProgram); err != nil {
		return nil, err
	}
	return &program{label: label}, nil
}

// DeleteProgram implements gpu.Platform.
func (p *Platform) DeleteProgram(prog gpu.Program) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[OpDeleteProgram]++
	if fp, ok := prog.(*program); ok {
		fp.deleted = true
	}
}

// Draw implements gpu.Platform.
func (p *Platform) Draw(prog gpu.Program, texture present.TextureID, transform present.Matrix) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(OpDraw); err != nil {
		return err
	}
	fp, ok := prog.(*program)
	if !ok || fp.deleted {
		return fmt.Errorf("%w: program", ErrStale)
	}
	fs, err := p.check(p.current)
	if err != nil {
		return err
	}
	p.draws = append(p.draws, Draw{
		Handle:    fs.handle,
		Texture:   texture,
		Transform: transform,
		Uniform:   gpu.TransformUniform(transform),
		Viewport:  p.viewport,
	})
	return nil
}

// SetPresentationTime implements gpu.Platform.
func (p *Platform) SetPresentationTime(s gpu.Surface, timeNs int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(OpSetPresentationTime); err != nil {
		return err
	}
	fs, err := p.check(s)
	if err != nil {
		return err
	}
	p.times[fs.handle] = append(p.times[fs.handle], timeNs)
	return nil
}

// SwapBuffers implements gpu.Platform.
func (p *Platform) SwapBuffers(s gpu.Surface) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(OpSwapBuffers); err != nil {
		return err
	}
	_, err := p.check(s)
	return err
}

// Finish implements gpu.Platform.
func (p *Platform) Finish() error {
	p.mu.Lock()
	err := p.begin(OpFinish)
	hook := p.finishHook
	p.mu.Unlock()
	if hook != nil {
		hook()
	}
	return err
}

var _ gpu.Platform = (*Platform)(nil)
