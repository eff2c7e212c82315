// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package transform

import (
	"math"

	"github.com/gogpu/present"
)

// ndcCorners are the corners of the visible frame.
var ndcCorners = [4][2]float64{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}

// ScaleToFit scales and rotates the frame, growing the output so that no
// input pixel is cropped.
//
// Scale factors of zero are treated as 1. RotationDegrees is
// counter-clockwise.
type ScaleToFit struct {
	ScaleX          float64
	ScaleY          float64
	RotationDegrees float64
}

// Rotation returns a ScaleToFit that only rotates.
func Rotation(degrees float64) ScaleToFit {
	return ScaleToFit{ScaleX: 1, ScaleY: 1, RotationDegrees: degrees}
}

func (s ScaleToFit) scales() (float64, float64) {
	sx, sy := s.ScaleX, s.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

// Configure implements MatrixTransformation.
func (s ScaleToFit) Configure(width, height int) (present.Size, MatrixFunc, error) {
	if err := checkSize(width, height); err != nil {
		return present.Size{}, nil, err
	}
	sx, sy := s.scales()
	m := present.RotateDegrees(s.RotationDegrees).Multiply(present.Scale(sx, sy))
	if m.IsIdentity() {
		return present.Size{Width: width, Height: height}, Constant(m), nil
	}

	// Work in a square space so rotation keeps pixel proportions.
	aspect := float64(width) / float64(height)
	m = present.Concat(present.Scale(aspect, 1), m, present.Scale(1/aspect, 1))

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, c := range ndcCorners {
		x, y := m.TransformPoint(c[0], c[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	scaleX := (maxX - minX) / 2
	scaleY := (maxY - minY) / 2
	m = present.Scale(1/scaleX, 1/scaleY).Multiply(m)

	size := present.Size{
		Width:  int(math.Round(float64(width) * scaleX)),
		Height: int(math.Round(float64(height) * scaleY)),
	}
	if err := checkSize(size.Width, size.Height); err != nil {
		return present.Size{}, nil, err
	}
	return size, Constant(m), nil
}

var _ MatrixTransformation = ScaleToFit{}
