package present

import "math"

// Matrix represents a 2D affine transformation in normalized device
// coordinates, where the visible frame spans [-1, 1] on both axes and y
// points up. It uses a 2x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{
		A: 1, B: 0, C: 0,
		D: 0, E: 1, F: 0,
	}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{
		A: 1, B: 0, C: x,
		D: 0, E: 1, F: y,
	}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Matrix {
	return Matrix{
		A: x, B: 0, C: 0,
		D: 0, E: y, F: 0,
	}
}

// Rotate creates a counter-clockwise rotation matrix (angle in radians).
func Rotate(angle float64) Matrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Matrix{
		A: cos, B: -sin, C: 0,
		D: sin, E: cos, F: 0,
	}
}

// RotateDegrees creates a counter-clockwise rotation matrix. Multiples of
// 90 degrees produce exact matrices with no floating point residue.
func RotateDegrees(degrees float64) Matrix {
	switch math.Mod(math.Mod(degrees, 360)+360, 360) {
	case 0:
		return Identity()
	case 90:
		return Matrix{A: 0, B: -1, D: 1, E: 0}
	case 180:
		return Matrix{A: -1, B: 0, D: 0, E: -1}
	case 270:
		return Matrix{A: 0, B: 1, D: -1, E: 0}
	}
	return Rotate(degrees * math.Pi / 180)
}

// Multiply multiplies two matrices (m * other). The result applies other
// first, then m.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(x, y float64) (float64, float64) {
	return m.A*x + m.B*y + m.C, m.D*x + m.E*y + m.F
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 &&
		m.D == 0 && m.E == 1 && m.F == 0
}

// Concat returns the product of the matrices applied in order: the first
// matrix is applied first. Concat with no arguments returns the identity.
func Concat(ms ...Matrix) Matrix {
	out := Identity()
	for _, m := range ms {
		out = m.Multiply(out)
	}
	return out
}
