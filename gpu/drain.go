// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// DefaultDrainTimeout bounds how long HALDrainer waits for the device.
const DefaultDrainTimeout = 5 * time.Second

// ProviderDrainer drains the device of a host application's
// gpucontext.DeviceProvider, the rendering context shared with the
// upstream pipeline stages.
type ProviderDrainer struct {
	Provider gpucontext.DeviceProvider
}

// idleWaiter is implemented by devices that can block until idle, such as
// *wgpu.Device and hal.Device.
type idleWaiter interface {
	WaitIdle() error
}

// poller is implemented by devices that expose a blocking poll.
type poller interface {
	Poll(wait bool)
}

// Drain blocks until the provider's device has no work in flight.
// gpucontext.Device is a type token, so the device must implement
// WaitIdle() error or Poll(bool).
func (d ProviderDrainer) Drain() error {
	if d.Provider == nil {
		return ErrNoDevice
	}
	switch dev := d.Provider.Device().(type) {
	case nil:
		return ErrNoDevice
	case idleWaiter:
		if err := dev.WaitIdle(); err != nil {
			return fmt.Errorf("gpu: wait idle: %w", err)
		}
		return nil
	case poller:
		dev.Poll(true)
		return nil
	default:
		return fmt.Errorf("%w: %T cannot be drained", ErrNoDevice, dev)
	}
}

// HALDrainer drains a wgpu HAL device by waiting for it to become idle.
type HALDrainer struct {
	device  idleWaiter
	timeout time.Duration
}

// NewHALDrainer creates a drainer for a HAL device.
// A non-positive timeout selects DefaultDrainTimeout.
func NewHALDrainer(device hal.Device, timeout time.Duration) *HALDrainer {
	return newHALDrainer(device, timeout)
}

func newHALDrainer(device idleWaiter, timeout time.Duration) *HALDrainer {
	if timeout <= 0 {
		timeout = DefaultDrainTimeout
	}
	return &HALDrainer{device: device, timeout: timeout}
}

// Drain blocks until all submitted work has completed or the timeout
// expires. On timeout the wait keeps running in the background.
func (d *HALDrainer) Drain() error {
	if d.device == nil {
		return ErrNoDevice
	}

	done := make(chan error, 1)
	go func() { done <- d.device.WaitIdle() }()

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("gpu: wait idle: %w", err)
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("gpu: device did not drain within %v", d.timeout)
	}
}

var (
	_ Drainer = ProviderDrainer{}
	_ Drainer = (*HALDrainer)(nil)
)
