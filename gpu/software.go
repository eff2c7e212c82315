// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/present"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// SoftwarePlatform is a CPU Platform. Windows are double-buffered
// *image.RGBA images; textures are registered images sampled with bilinear
// filtering through the affine transform of each draw.
//
// Example:
//
//	p := gpu.NewSoftwarePlatform()
//	win := p.NewWindow(800, 600)
//	tex := p.UploadTexture(img)
//	// ... hand win and tex to the presentation stage ...
//	png.Encode(f, p.Window(win).Snapshot())
type SoftwarePlatform struct {
	mu          sync.Mutex
	windows     map[Handle]*Window
	textures    map[present.TextureID]image.Image
	nextHandle  Handle
	nextTexture present.TextureID
	current     *SoftwareSurface
	viewport    image.Rectangle
	format      gputypes.TextureFormat
	drainer     Drainer
	hal         halDevice
	validate    bool
	finishes    int
}

// halDevice is the part of hal.Device the software platform shares.
type halDevice interface {
	shaderDevice
	idleWaiter
	DestroyShaderModule(module hal.ShaderModule)
}

// SoftwareOption configures a SoftwarePlatform.
type SoftwareOption func(*SoftwarePlatform)

// WithDrainer makes Finish wait on d in addition to the CPU work, which is
// always complete by the time Finish is called.
func WithDrainer(d Drainer) SoftwareOption {
	return func(p *SoftwarePlatform) {
		p.drainer = d
	}
}

// WithDeviceProvider shares a host GPU device: SDR surfaces take the
// host's preferred surface format and Finish drains the host device.
func WithDeviceProvider(provider gpucontext.DeviceProvider) SoftwareOption {
	return func(p *SoftwarePlatform) {
		if provider == nil {
			return
		}
		p.format = provider.SurfaceFormat()
		p.drainer = ProviderDrainer{Provider: provider}
	}
}

// WithHALDevice shares a wgpu HAL device: every program also gets a HAL
// shader module created from its WGSL source, and Finish waits for the
// device to become idle.
func WithHALDevice(device hal.Device) SoftwareOption {
	return func(p *SoftwarePlatform) {
		if device == nil {
			return
		}
		p.hal = device
		p.drainer = NewHALDrainer(device, 0)
	}
}

// WithShaderValidation controls whether CreateProgram compiles the WGSL
// source to SPIR-V. Validation is on by default.
func WithShaderValidation(enabled bool) SoftwareOption {
	return func(p *SoftwarePlatform) {
		p.validate = enabled
	}
}

// NewSoftwarePlatform creates an empty software platform.
func NewSoftwarePlatform(opts ...SoftwareOption) *SoftwarePlatform {
	p := &SoftwarePlatform{
		windows:  make(map[Handle]*Window),
		textures: make(map[present.TextureID]image.Image),
		format:   gputypes.TextureFormatRGBA8Unorm,
		validate: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewWindow creates a window of the given size and returns its handle.
func (p *SoftwarePlatform) NewWindow(width, height int) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextHandle++
	p.windows[p.nextHandle] = newWindow(width, height)
	return p.nextHandle
}

// ResizeWindow changes the size of a window. Surfaces created from the
// window stay bound to it.
func (p *SoftwarePlatform) ResizeWindow(h Handle, width, height int) error {
	p.mu.Lock()
	w, ok := p.windows[h]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	w.resize(width, height)
	return nil
}

// DestroyWindow destroys a window. Surfaces created from it fail on use.
func (p *SoftwarePlatform) DestroyWindow(h Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.windows[h]; ok {
		w.mu.Lock()
		w.destroyed = true
		w.mu.Unlock()
		delete(p.windows, h)
	}
}

// Window returns the window for h, or nil if there is none.
func (p *SoftwarePlatform) Window(h Handle) *Window {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.windows[h]
}

// UploadTexture registers img as a texture and returns its ID.
// The image is used directly without copying.
func (p *SoftwarePlatform) UploadTexture(img image.Image) present.TextureID {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextTexture++
	p.textures[p.nextTexture] = img
	return p.nextTexture
}

// DeleteTexture unregisters a texture.
func (p *SoftwarePlatform) DeleteTexture(id present.TextureID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.textures, id)
}

// Finishes returns how many times Finish has been called.
func (p *SoftwarePlatform) Finishes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finishes
}

// CreateWindowSurface implements Platform.
func (p *SoftwarePlatform) CreateWindowSurface(h Handle, cs ColorSpace) (Surface, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.windows[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return &SoftwareSurface{
		handle: h,
		cs:     cs,
		format: cs.Format(p.format),
		window: w,
	}, nil
}

// DestroySurface implements Platform.
func (p *SoftwarePlatform) DestroySurface(s Surface) {
	ss, ok := s.(*SoftwareSurface)
	if !ok || ss == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ss.destroyed = true
	if p.current == ss {
		p.current = nil
	}
}

// Focus implements Platform.
func (p *SoftwarePlatform) Focus(s Surface, width, height int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ss, err := p.usableLocked(s)
	if err != nil {
		return err
	}
	p.current = ss
	p.viewport = image.Rect(0, 0, width, height)
	return nil
}

// Clear implements Platform.
func (p *SoftwarePlatform) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ss, err := p.usableLocked(p.current)
	if err != nil {
		return err
	}

	w := ss.window
	w.mu.Lock()
	defer w.mu.Unlock()
	draw.Draw(w.back, p.viewport.Intersect(w.back.Rect), image.Transparent, image.Point{}, draw.Src)
	return nil
}

// CreateProgram implements Platform.
func (p *SoftwarePlatform) CreateProgram(label, wgsl string) (Program, error) {
	p.mu.Lock()
	validate, device := p.validate, p.hal
	p.mu.Unlock()

	prog := &softwareProgram{label: label}
	if validate {
		spirv, err := CompileWGSL(wgsl)
		if err != nil {
			return nil, fmt.Errorf("gpu: program %q: %w", label, err)
		}
		prog.words = len(spirv)
	}
	if device != nil {
		module, err := createShaderModule(device, label, wgsl)
		if err != nil {
			return nil, fmt.Errorf("gpu: program %q: %w", label, err)
		}
		prog.module = module
	}
	return prog, nil
}

// DeleteProgram implements Platform.
func (p *SoftwarePlatform) DeleteProgram(prog Program) {
	sp, ok := prog.(*softwareProgram)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if sp.deleted {
		return
	}
	sp.deleted = true
	if sp.module != nil && p.hal != nil {
		p.hal.DestroyShaderModule(sp.module)
		sp.module = nil
	}
}

// Draw implements Platform.
func (p *SoftwarePlatform) Draw(prog Program, texture present.TextureID, transform present.Matrix) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	sp, ok := prog.(*softwareProgram)
	if !ok || sp.deleted {
		return ErrInvalidProgram
	}
	ss, err := p.usableLocked(p.current)
	if err != nil {
		return err
	}
	src, ok := p.textures[texture]
	if !ok {
		return fmt.Errorf("gpu: unknown texture %d", texture)
	}

	sb := src.Bounds()
	if sb.Empty() || p.viewport.Empty() {
		return nil
	}
	vp := p.viewport
	srcToNDC := present.Translate(-1, 1).
		Multiply(present.Scale(2/float64(sb.Dx()), -2/float64(sb.Dy()))).
		Multiply(present.Translate(-float64(sb.Min.X), -float64(sb.Min.Y)))
	ndcToDst := present.Translate(float64(vp.Min.X), float64(vp.Min.Y)).
		Multiply(present.Scale(float64(vp.Dx())/2, -float64(vp.Dy())/2)).
		Multiply(present.Translate(1, -1))
	s2d := ndcToDst.Multiply(transform).Multiply(srcToNDC)

	w := ss.window
	w.mu.Lock()
	defer w.mu.Unlock()
	dst, ok := w.back.SubImage(vp.Intersect(w.back.Rect)).(*image.RGBA)
	if !ok || dst.Rect.Empty() {
		return nil
	}
	draw.ApproxBiLinear.Transform(dst, f64.Aff3{s2d.A, s2d.B, s2d.C, s2d.D, s2d.E, s2d.F}, src, sb, draw.Over, nil)
	return nil
}

// SetPresentationTime implements Platform.
func (p *SoftwarePlatform) SetPresentationTime(s Surface, timeNs int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ss, err := p.usableLocked(s)
	if err != nil {
		return err
	}
	ss.pendingNs = timeNs
	ss.hasPending = true
	return nil
}

// SwapBuffers implements Platform.
func (p *SoftwarePlatform) SwapBuffers(s Surface) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ss, err := p.usableLocked(s)
	if err != nil {
		return err
	}
	ss.window.swap(ss.pendingNs, ss.hasPending)
	ss.hasPending = false
	return nil
}

// Finish implements Platform.
func (p *SoftwarePlatform) Finish() error {
	p.mu.Lock()
	p.finishes++
	d := p.drainer
	p.mu.Unlock()

	if d != nil {
		return d.Drain()
	}
	return nil
}

// usableLocked checks that s is a live software surface on a live window.
func (p *SoftwarePlatform) usableLocked(s Surface) (*SoftwareSurface, error) {
	ss, ok := s.(*SoftwareSurface)
	if !ok || ss == nil {
		return nil, ErrNoSurface
	}
	if ss.destroyed {
		return nil, ErrSurfaceDestroyed
	}
	ss.window.mu.Lock()
	gone := ss.window.destroyed
	ss.window.mu.Unlock()
	if gone {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, ss.handle)
	}
	return ss, nil
}

// SoftwareSurface is the Surface created by a SoftwarePlatform.
type SoftwareSurface struct {
	handle     Handle
	cs         ColorSpace
	format     gputypes.TextureFormat
	window     *Window
	pendingNs  int64
	hasPending bool
	destroyed  bool
}

// Handle implements Surface.
func (s *SoftwareSurface) Handle() Handle { return s.handle }

// ColorSpace implements Surface.
func (s *SoftwareSurface) ColorSpace() ColorSpace { return s.cs }

// Format returns the texture format backing the surface.
func (s *SoftwareSurface) Format() gputypes.TextureFormat { return s.format }

type softwareProgram struct {
	label   string
	words   int
	module  hal.ShaderModule
	deleted bool
}

func (p *softwareProgram) Label() string { return p.label }

// Window is a double-buffered software window.
type Window struct {
	mu        sync.Mutex
	back      *image.RGBA
	front     *image.RGBA
	times     []int64
	swaps     int
	destroyed bool
}

func newWindow(width, height int) *Window {
	w := &Window{}
	w.resize(width, height)
	return w
}

func (w *Window) resize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.back = image.NewRGBA(image.Rect(0, 0, width, height))
	w.front = image.NewRGBA(image.Rect(0, 0, width, height))
}

func (w *Window) swap(timeNs int64, timed bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	copy(w.front.Pix, w.back.Pix)
	w.swaps++
	if timed {
		w.times = append(w.times, timeNs)
	}
}

// Size returns the window size in pixels.
func (w *Window) Size() (width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.front.Rect.Dx(), w.front.Rect.Dy()
}

// Snapshot returns a copy of the last presented frame.
func (w *Window) Snapshot() *image.RGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	img := image.NewRGBA(w.front.Rect)
	copy(img.Pix, w.front.Pix)
	return img
}

// Swaps returns the number of buffer swaps on the window.
func (w *Window) Swaps() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.swaps
}

// PresentationTimes returns the presentation time of every timed swap, in
// nanoseconds, in swap order.
func (w *Window) PresentationTimes() []int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]int64, len(w.times))
	copy(out, w.times)
	return out
}

// Ensure SoftwarePlatform implements Platform.
var _ Platform = (*SoftwarePlatform)(nil)
