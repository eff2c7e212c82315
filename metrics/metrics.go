// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus collectors for the presentation
// stage.
//
// A nil *Metrics is valid and records nothing, so the stage can call the
// recording methods unconditionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "present"

// Metrics holds the stage collectors.
type Metrics struct {
	FramesPresented  prometheus.Counter
	FramesDeclined   prometheus.Counter
	ProcessingErrors prometheus.Counter
	SurfacesCreated  prometheus.Counter
	ProcessorsBuilt  prometheus.Counter
	PreviewFailures  prometheus.Counter
	OutputSizeEvents prometheus.Counter
	PresentDuration  prometheus.Histogram
}

// New creates the collectors and registers them with reg. A nil reg
// creates unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		FramesPresented: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_presented_total",
			Help:      "Total number of frames presented to the output surface",
		}),
		FramesDeclined: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_declined_total",
			Help:      "Total number of frames declined because no output target was ready",
		}),
		ProcessingErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processing_errors_total",
			Help:      "Total number of frames dropped because of a processing error",
		}),
		SurfacesCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "surfaces_created_total",
			Help:      "Total number of output surfaces created",
		}),
		ProcessorsBuilt: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "processors_built_total",
			Help:      "Total number of transform processors built",
		}),
		PreviewFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preview_failures_total",
			Help:      "Total number of failed debug preview renders",
		}),
		OutputSizeEvents: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_size_changes_total",
			Help:      "Total number of output size change events",
		}),
		PresentDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "present_duration_seconds",
			Help:      "Time spent drawing and presenting one frame",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}
}

// FramePresented records a frame presented in d.
func (m *Metrics) FramePresented(d time.Duration) {
	if m == nil {
		return
	}
	m.FramesPresented.Inc()
	m.PresentDuration.Observe(d.Seconds())
}

// FrameDeclined records a frame that was not consumed.
func (m *Metrics) FrameDeclined() {
	if m == nil {
		return
	}
	m.FramesDeclined.Inc()
}

// ProcessingError records a dropped frame.
func (m *Metrics) ProcessingError() {
	if m == nil {
		return
	}
	m.ProcessingErrors.Inc()
}

// SurfaceCreated records an output surface creation.
func (m *Metrics) SurfaceCreated() {
	if m == nil {
		return
	}
	m.SurfacesCreated.Inc()
}

// ProcessorBuilt records a processor build.
func (m *Metrics) ProcessorBuilt() {
	if m == nil {
		return
	}
	m.ProcessorsBuilt.Inc()
}

// PreviewFailed records a failed preview render.
func (m *Metrics) PreviewFailed() {
	if m == nil {
		return
	}
	m.PreviewFailures.Inc()
}

// OutputSizeChanged records an output size change event.
func (m *Metrics) OutputSizeChanged() {
	if m == nil {
		return
	}
	m.OutputSizeEvents.Inc()
}
