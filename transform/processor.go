// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package transform

import (
	"fmt"

	"github.com/gogpu/present"
	"github.com/gogpu/present/gpu"
)

// programLabel is the debug label of the transform program.
const programLabel = "present.transform"

// Processor draws frames through a fixed chain of transformations using
// one GPU program.
//
// A Processor is owned by the GPU goroutine and is not safe for
// concurrent use.
type Processor struct {
	platform gpu.Platform
	program  gpu.Program
	seq      []MatrixTransformation
	funcs    []MatrixFunc
	input    present.Size
	output   present.Size
	released bool
}

// NewProcessor compiles the transform program on platform for seq. The
// sequence is copied.
func NewProcessor(platform gpu.Platform, seq []MatrixTransformation) (*Processor, error) {
	prog, err := platform.CreateProgram(programLabel, gpu.TransformShaderWGSL)
	if err != nil {
		return nil, present.GPUError("create program", err)
	}
	return &Processor{
		platform: platform,
		program:  prog,
		seq:      append([]MatrixTransformation(nil), seq...),
	}, nil
}

// Configure configures every transformation for a width x height input
// and returns the output size.
func (p *Processor) Configure(width, height int) (present.Size, error) {
	if p.released {
		return present.Size{}, ErrProcessorReleased
	}
	if err := checkSize(width, height); err != nil {
		return present.Size{}, err
	}
	funcs := make([]MatrixFunc, 0, len(p.seq))
	size := present.Size{Width: width, Height: height}
	for i, t := range p.seq {
		next, fn, err := t.Configure(size.Width, size.Height)
		if err != nil {
			return present.Size{}, fmt.Errorf("transform: configure step %d: %w", i, err)
		}
		funcs = append(funcs, fn)
		size = next
	}
	p.funcs = funcs
	p.input = present.Size{Width: width, Height: height}
	p.output = size
	return size, nil
}

// InputSize returns the size the processor was configured with.
func (p *Processor) InputSize() present.Size { return p.input }

// OutputSize returns the configured output size.
func (p *Processor) OutputSize() present.Size { return p.output }

// Len returns the number of transformations in the chain.
func (p *Processor) Len() int { return len(p.seq) }

// Matrix returns the composed NDC matrix for the frame at
// presentationTimeUs. The first transformation is applied first.
func (p *Processor) Matrix(presentationTimeUs int64) present.Matrix {
	ms := make([]present.Matrix, len(p.funcs))
	for i, fn := range p.funcs {
		ms[i] = fn(presentationTimeUs)
	}
	return present.Concat(ms...)
}

// Draw draws texture into the focused surface.
func (p *Processor) Draw(texture present.TextureID, presentationTimeUs int64) error {
	if p.released {
		return ErrProcessorReleased
	}
	if p.funcs == nil {
		return ErrNotConfigured
	}
	return present.GPUError("draw", p.platform.Draw(p.program, texture, p.Matrix(presentationTimeUs)))
}

// Release deletes the program. Releasing twice is a no-op.
func (p *Processor) Release() {
	if p.released {
		return
	}
	p.released = true
	p.platform.DeleteProgram(p.program)
	p.program = nil
}

// Released reports whether Release has been called.
func (p *Processor) Released() bool { return p.released }
