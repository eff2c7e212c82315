// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stage

import (
	"log/slog"

	"github.com/gogpu/present/metrics"
	"github.com/gogpu/present/preview"
	"github.com/gogpu/present/transform"
)

// Option configures a Stage during creation.
//
// Example:
//
//	st := stage.New(platform, listener,
//	    stage.WithTransformations(transform.Rotation(90)),
//	    stage.WithStreamOffset(offsetUs),
//	    stage.WithHDR(true),
//	)
type Option func(*options)

type options struct {
	transformations []transform.MatrixTransformation
	streamOffsetUs  int64
	hdr             bool
	views           preview.ViewProvider
	metrics         *metrics.Metrics
	logger          *slog.Logger
}

// WithTransformations sets the base transformations applied to every
// frame before it is fitted to the output target. The slice is copied.
func WithTransformations(ts ...transform.MatrixTransformation) Option {
	return func(o *options) {
		o.transformations = append([]transform.MatrixTransformation(nil), ts...)
	}
}

// WithStreamOffset sets the offset, in microseconds, added to every
// presentation timestamp before it is passed to the platform.
func WithStreamOffset(offsetUs int64) Option {
	return func(o *options) {
		o.streamOffsetUs = offsetUs
	}
}

// WithHDR creates output and preview surfaces in the BT.2020 PQ color
// space.
func WithHDR(enabled bool) Option {
	return func(o *options) {
		o.hdr = enabled
	}
}

// WithDebugViewProvider enables the debug preview. The provider is asked
// for a view each time a new output surface is created.
func WithDebugViewProvider(p preview.ViewProvider) Option {
	return func(o *options) {
		o.views = p
	}
}

// WithMetrics records stage activity in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithLogger sets the logger for this stage. By default the stage logs to
// present.Logger().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
