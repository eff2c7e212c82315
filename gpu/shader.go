// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/present"
	"github.com/gogpu/wgpu/hal"
)

// TransformShaderWGSL is the WGSL source of the transform program: a
// full-frame quad moved by a uniform 4x4 matrix, sampling the input
// texture.
//
//go:embed shaders/transform.wgsl
var TransformShaderWGSL string

// CompileWGSL compiles WGSL source to SPIR-V words.
func CompileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirv, nil
}

// shaderDevice is the part of hal.Device that creates shader modules.
type shaderDevice interface {
	CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error)
}

// CreateHALShaderModule compiles WGSL source and creates a HAL shader
// module from it on device.
func CreateHALShaderModule(device hal.Device, label, source string) (hal.ShaderModule, error) {
	return createShaderModule(device, label, source)
}

func createShaderModule(device shaderDevice, label, source string) (hal.ShaderModule, error) {
	spirv, err := CompileWGSL(source)
	if err != nil {
		return nil, err
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label: label,
		Source: hal.ShaderSource{
			SPIRV: spirv,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create shader module %q: %w", label, err)
	}
	return module, nil
}

// TransformUniform lays m out as the column-major mat4x4<f32> expected by
// the transform program.
func TransformUniform(m present.Matrix) [16]float32 {
	return [16]float32{
		float32(m.A), float32(m.D), 0, 0,
		float32(m.B), float32(m.E), 0, 0,
		0, 0, 1, 0,
		float32(m.C), float32(m.F), 0, 1,
	}
}
