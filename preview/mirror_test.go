// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package preview

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/present/gpu"
	"github.com/gogpu/present/gpu/gputest"
)

// fakeView is a View driven by the test.
type fakeView struct {
	handle gpu.Handle
	w, h   int
	events chan Event
}

func (v *fakeView) Handle() gpu.Handle   { return v.handle }
func (v *fakeView) Size() (int, int)     { return v.w, v.h }
func (v *fakeView) Events() <-chan Event { return v.events }

func noop() error { return nil }

// waitFor polls cond until it holds, failing the test after two seconds.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestMirrorLifecycle(t *testing.T) {
	platform := gputest.New()
	view := &fakeView{handle: 10, w: 320, h: 240, events: make(chan Event)}
	m := New(platform, view)
	defer m.Close()

	view.events <- Event{Kind: EventCreated, Handle: 10, Width: 320, Height: 240}
	if err := m.MaybeRender(noop); err != nil {
		t.Fatalf("MaybeRender: %v", err)
	}
	if got := platform.SurfacesCreated(10); got != 1 {
		t.Fatalf("surfaces created = %d, want 1", got)
	}

	// Same handle, new size: the surface is kept.
	view.events <- Event{Kind: EventChanged, Handle: 10, Width: 640, Height: 480}
	waitFor(t, func() bool { _, s := m.State(); return s.Width == 640 })
	if err := m.MaybeRender(noop); err != nil {
		t.Fatalf("MaybeRender: %v", err)
	}
	if got := platform.SurfacesCreated(10); got != 1 {
		t.Errorf("surfaces created after resize = %d, want 1", got)
	}

	// New handle: the surface is rebuilt once.
	view.events <- Event{Kind: EventChanged, Handle: 11, Width: 640, Height: 480}
	waitFor(t, func() bool { h, _ := m.State(); return h == 11 })
	for i := 0; i < 2; i++ {
		if err := m.MaybeRender(noop); err != nil {
			t.Fatalf("MaybeRender: %v", err)
		}
	}
	if got := platform.SurfacesCreated(11); got != 1 {
		t.Errorf("surfaces created for new handle = %d, want 1", got)
	}
	if got := len(platform.LiveSurfaces(10)); got != 0 {
		t.Errorf("old handle live surfaces = %d, want 0", got)
	}

	// Destroyed: no surface, nothing rendered.
	view.events <- Event{Kind: EventDestroyed}
	waitFor(t, func() bool { h, _ := m.State(); return h == 0 })
	if m.HasSurface() {
		t.Error("surface still bound after destroy")
	}
	swaps := platform.Count(gputest.OpSwapBuffers)
	ran := false
	if err := m.MaybeRender(func() error { ran = true; return nil }); err != nil {
		t.Fatalf("MaybeRender: %v", err)
	}
	if ran || platform.Count(gputest.OpSwapBuffers) != swaps {
		t.Error("rendered without a view")
	}
	if got := len(platform.LiveSurfaces(11)); got != 0 {
		t.Errorf("live surfaces after destroy = %d, want 0", got)
	}
	if _, s := m.State(); s.Width != SizeUnset || s.Height != SizeUnset {
		t.Errorf("size after destroy = %+v, want unset", s)
	}
}

func TestMirrorRenderSequence(t *testing.T) {
	platform := gputest.New()
	m := New(platform, &fakeView{handle: 5, w: 100, h: 50}, WithColorSpace(gpu.ColorSpaceBT2020PQ))
	defer m.Close()

	finishes := 0
	platform.SetFinishHook(func() { finishes++ })

	var order []string
	err := m.MaybeRender(func() error {
		order = append(order, "task")
		if platform.Count(gputest.OpFocus) != 1 {
			t.Error("task ran before focus")
		}
		if platform.Count(gputest.OpSwapBuffers) != 0 {
			t.Error("task ran after swap")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("MaybeRender: %v", err)
	}
	if len(order) != 1 || platform.Count(gputest.OpSwapBuffers) != 1 || finishes != 1 {
		t.Errorf("task=%v swaps=%d finishes=%d", order, platform.Count(gputest.OpSwapBuffers), finishes)
	}
	if cs := platform.LastSurface().ColorSpace(); cs != gpu.ColorSpaceBT2020PQ {
		t.Errorf("color space = %v, want bt2020-pq", cs)
	}
}

func TestMirrorErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name  string
		setup func(p *gputest.Platform)
		task  func() error
	}{
		{"create", func(p *gputest.Platform) { p.Fail(gputest.OpCreateSurface, boom) }, noop},
		{"focus", func(p *gputest.Platform) { p.Fail(gputest.OpFocus, boom) }, noop},
		{"task", func(*gputest.Platform) {}, func() error { return boom }},
		{"swap", func(p *gputest.Platform) { p.Fail(gputest.OpSwapBuffers, boom) }, noop},
		{"finish", func(p *gputest.Platform) { p.Fail(gputest.OpFinish, boom) }, noop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := gputest.New()
			tt.setup(platform)
			m := New(platform, &fakeView{handle: 1, w: 10, h: 10})
			defer m.Close()
			if err := m.MaybeRender(tt.task); !errors.Is(err, boom) {
				t.Errorf("error = %v, want boom", err)
			}
		})
	}
}

func TestMirrorUnboundView(t *testing.T) {
	platform := gputest.New()
	m := New(platform, &fakeView{})
	defer m.Close()
	if err := m.MaybeRender(noop); err != nil {
		t.Fatalf("MaybeRender: %v", err)
	}
	if platform.Count(gputest.OpCreateSurface) != 0 {
		t.Error("surface created for unbound view")
	}

	m.Apply(Event{Kind: EventChanged, Handle: 4, Width: 20, Height: 20})
	if err := m.MaybeRender(noop); err != nil {
		t.Fatalf("MaybeRender: %v", err)
	}
	if platform.SurfacesCreated(4) != 1 {
		t.Error("surface not created after view became available")
	}
}

func TestMirrorClose(t *testing.T) {
	platform := gputest.New()
	view := &fakeView{handle: 1, w: 10, h: 10, events: make(chan Event)}
	m := New(platform, view)
	if err := m.MaybeRender(noop); err != nil {
		t.Fatalf("MaybeRender: %v", err)
	}

	m.Close()
	m.Close()

	if got := len(platform.LiveSurfaces(1)); got != 0 {
		t.Errorf("live surfaces = %d, want 0", got)
	}
	if err := m.MaybeRender(noop); err != nil {
		t.Errorf("MaybeRender after Close: %v", err)
	}
	if platform.SurfacesCreated(1) != 1 {
		t.Error("surface recreated after Close")
	}
	m.Apply(Event{Kind: EventChanged, Handle: 2})
	if h, _ := m.State(); h != 1 {
		t.Errorf("handle after Close = %d, want 1", h)
	}
}

func TestMirrorConcurrentEvents(t *testing.T) {
	platform := gputest.New()
	view := &fakeView{handle: 1, w: 10, h: 10, events: make(chan Event)}
	m := New(platform, view)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 300; i++ {
			switch i % 3 {
			case 0:
				view.events <- Event{Kind: EventChanged, Handle: gpu.Handle(1 + i%4), Width: 10 + i%7, Height: 10}
			case 1:
				m.Apply(Event{Kind: EventChanged, Handle: gpu.Handle(1 + i%4), Width: 10, Height: 10 + i%5})
			default:
				view.events <- Event{Kind: EventDestroyed}
			}
		}
	}()

	for i := 0; i < 300; i++ {
		if err := m.MaybeRender(noop); err != nil {
			t.Fatalf("MaybeRender %d: %v", i, err)
		}
	}
	wg.Wait()
	m.Close()

	for h := gpu.Handle(1); h <= 4; h++ {
		if n := len(platform.LiveSurfaces(h)); n != 0 {
			t.Errorf("handle %d: live surfaces = %d", h, n)
		}
	}
}

func TestViewProviderFunc(t *testing.T) {
	var gotW, gotH int
	p := ViewProviderFunc(func(w, h int) View { gotW, gotH = w, h; return nil })
	if v := p.PreviewView(800, 600); v != nil || gotW != 800 || gotH != 600 {
		t.Errorf("PreviewView = %v, %d, %d", v, gotW, gotH)
	}
}
