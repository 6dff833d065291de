package core

import (
	"github.com/chewxy/math32"
	"golang.org/x/image/math/f32"
)

// Mat3 is a row-major 3x3 matrix used for rotations
type Mat3 f32.Mat3

// Identity3 is the identity rotation
var Identity3 = Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}

// NewRotation builds Rz(alpha) * Ry(beta) * Rx(gamma). Angles are radians.
func NewRotation(alpha, beta, gamma float32) Mat3 {
	sa, ca := math32.Sincos(alpha)
	sb, cb := math32.Sincos(beta)
	sg, cg := math32.Sincos(gamma)
	return Mat3{
		ca * cb, ca*sb*sg - sa*cg, ca*sb*cg + sa*sg,
		sa * cb, sa*sb*sg + ca*cg, sa*sb*cg - ca*sg,
		-sb, cb * sg, cb * cg,
	}
}

// At returns the element in row r and column c
func (m Mat3) At(r, c int) float32 {
	return m[3*r+c]
}

// Apply multiplies the matrix by a column vector
func (m Mat3) Apply(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Multiply returns m * other
func (m Mat3) Multiply(other Mat3) Mat3 {
	var out Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[3*r+c] = m[3*r]*other[c] + m[3*r+1]*other[3+c] + m[3*r+2]*other[6+c]
		}
	}
	return out
}

// Transpose returns the transposed matrix. For a rotation this is its inverse.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}
