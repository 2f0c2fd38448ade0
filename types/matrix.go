package types

import (
	"math"

	"golang.org/x/image/math/f32"
)

// Matrices are stored in row-major order; element (r, c) lives at index
// r*N + c. Points and directions are column vectors multiplied on the right.
type Mat3 f32.Mat3
type Mat4 f32.Mat4

// Inv treats a matrix as singular when its determinant magnitude falls below
// this fraction of the product of its row lengths. By Hadamard's inequality
// that product bounds |det|, so the test does not depend on the matrix scale.
const singularRelEpsilon = 1e-6

func nearlySingular(det float32, m []float32, n int) bool {
	bound := 1.0
	for r := 0; r < n; r++ {
		var sq float64
		for _, v := range m[r*n : (r+1)*n] {
			sq += float64(v) * float64(v)
		}
		bound *= math.Sqrt(sq)
	}
	d := math.Abs(float64(det))
	return !(d > 0 && d >= singularRelEpsilon*bound)
}

// Return the 3x3 identity matrix.
func Ident3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Get element at row r, column c.
func (m Mat3) At(r, c int) float32 {
	return m[r*3+c]
}

// Get row r as a vector.
func (m Mat3) Row(r int) Vec3 {
	return Vec3{m[r*3], m[r*3+1], m[r*3+2]}
}

// Get column c as a vector.
func (m Mat3) Col(c int) Vec3 {
	return Vec3{m[c], m[3+c], m[6+c]}
}

// Multiply two matrices.
func (m Mat3) Mul(m2 Mat3) Mat3 {
	var out Mat3
	for r := 0; r < 3; r++ {
		row := m.Row(r)
		for c := 0; c < 3; c++ {
			out[r*3+c] = row.Dot(m2.Col(c))
		}
	}
	return out
}

// Multiply matrix with a column vector.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{m.Row(0).Dot(v), m.Row(1).Dot(v), m.Row(2).Dot(v)}
}

// Return the transposed matrix.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Calculate the matrix determinant.
func (m Mat3) Det() float32 {
	return m.Row(0).Dot(m.Row(1).Cross(m.Row(2)))
}

// Invert the matrix. Returns ErrSingularMatrix if the rows are (nearly)
// linearly dependent.
func (m Mat3) Inv() (Mat3, error) {
	r0, r1, r2 := m.Row(0), m.Row(1), m.Row(2)
	c0 := r1.Cross(r2)
	det := r0.Dot(c0)
	if nearlySingular(det, m[:], 3) {
		return Mat3{}, ErrSingularMatrix
	}
	c1 := r2.Cross(r0)
	c2 := r0.Cross(r1)
	inv := 1 / det

	// The cross products form the columns of the inverse.
	return Mat3{
		c0[0] * inv, c1[0] * inv, c2[0] * inv,
		c0[1] * inv, c1[1] * inv, c2[1] * inv,
		c0[2] * inv, c1[2] * inv, c2[2] * inv,
	}, nil
}

// Return the 4x4 identity matrix.
func Ident4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Get element at row r, column c.
func (m Mat4) At(r, c int) float32 {
	return m[r*4+c]
}

// Get row r as a vector.
func (m Mat4) Row(r int) Vec4 {
	return Vec4{m[r*4], m[r*4+1], m[r*4+2], m[r*4+3]}
}

// Get column c as a vector.
func (m Mat4) Col(c int) Vec4 {
	return Vec4{m[c], m[4+c], m[8+c], m[12+c]}
}

// Multiply two matrices.
func (m Mat4) Mul(m2 Mat4) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		row := m.Row(r)
		for c := 0; c < 4; c++ {
			out[r*4+c] = row.Dot(m2.Col(c))
		}
	}
	return out
}

// Multiply matrix with a column vector.
func (m Mat4) MulVec(v Vec4) Vec4 {
	return Vec4{m.Row(0).Dot(v), m.Row(1).Dot(v), m.Row(2).Dot(v), m.Row(3).Dot(v)}
}

// Transform a point (w = 1) applying the perspective divide when needed.
func (m Mat4) MulPoint(p Vec3) Vec3 {
	out := m.MulVec(p.Vec4(1))
	if out[3] != 1 && out[3] != 0 {
		return out.Vec3().Mul(1 / out[3])
	}
	return out.Vec3()
}

// Transform a direction (w = 0).
func (m Mat4) MulDir(d Vec3) Vec3 {
	return m.MulVec(d.Vec4(0)).Vec3()
}

// Return the upper-left 3x3 sub-matrix.
func (m Mat4) Mat3() Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// Return the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}

// Calculate the 2x2 sub-determinants used by both Det and Inv.
func (m Mat4) minors() (s, c [6]float32) {
	s[0] = mulSub(m[0], m[5], m[4], m[1])
	s[1] = mulSub(m[0], m[6], m[4], m[2])
	s[2] = mulSub(m[0], m[7], m[4], m[3])
	s[3] = mulSub(m[1], m[6], m[5], m[2])
	s[4] = mulSub(m[1], m[7], m[5], m[3])
	s[5] = mulSub(m[2], m[7], m[6], m[3])

	c[5] = mulSub(m[10], m[15], m[14], m[11])
	c[4] = mulSub(m[9], m[15], m[13], m[11])
	c[3] = mulSub(m[9], m[14], m[13], m[10])
	c[2] = mulSub(m[8], m[15], m[12], m[11])
	c[1] = mulSub(m[8], m[14], m[12], m[10])
	c[0] = mulSub(m[8], m[13], m[12], m[9])
	return s, c
}

// Calculate the matrix determinant.
func (m Mat4) Det() float32 {
	s, c := m.minors()
	return s[0]*c[5] - s[1]*c[4] + s[2]*c[3] + s[3]*c[2] - s[4]*c[1] + s[5]*c[0]
}

// Invert the matrix. Returns ErrSingularMatrix if the rows are (nearly)
// linearly dependent.
func (m Mat4) Inv() (Mat4, error) {
	s, c := m.minors()
	det := s[0]*c[5] - s[1]*c[4] + s[2]*c[3] + s[3]*c[2] - s[4]*c[1] + s[5]*c[0]
	if nearlySingular(det, m[:], 4) {
		return Mat4{}, ErrSingularMatrix
	}
	inv := 1 / det

	return Mat4{
		(m[5]*c[5] - m[6]*c[4] + m[7]*c[3]) * inv,
		(-m[1]*c[5] + m[2]*c[4] - m[3]*c[3]) * inv,
		(m[13]*s[5] - m[14]*s[4] + m[15]*s[3]) * inv,
		(-m[9]*s[5] + m[10]*s[4] - m[11]*s[3]) * inv,

		(-m[4]*c[5] + m[6]*c[2] - m[7]*c[1]) * inv,
		(m[0]*c[5] - m[2]*c[2] + m[3]*c[1]) * inv,
		(-m[12]*s[5] + m[14]*s[2] - m[15]*s[1]) * inv,
		(m[8]*s[5] - m[10]*s[2] + m[11]*s[1]) * inv,

		(m[4]*c[4] - m[5]*c[2] + m[7]*c[0]) * inv,
		(-m[0]*c[4] + m[1]*c[2] - m[3]*c[0]) * inv,
		(m[12]*s[4] - m[13]*s[2] + m[15]*s[0]) * inv,
		(-m[8]*s[4] + m[9]*s[2] - m[11]*s[0]) * inv,

		(-m[4]*c[3] + m[5]*c[1] - m[6]*c[0]) * inv,
		(m[0]*c[3] - m[1]*c[1] + m[2]*c[0]) * inv,
		(-m[12]*s[3] + m[13]*s[1] - m[14]*s[0]) * inv,
		(m[8]*s[3] - m[9]*s[1] + m[10]*s[0]) * inv,
	}, nil
}

// Create a translation matrix.
func Translate4(t Vec3) Mat4 {
	return Mat4{
		1, 0, 0, t[0],
		0, 1, 0, t[1],
		0, 0, 1, t[2],
		0, 0, 0, 1,
	}
}

// Create a scale matrix.
func Scale4(s Vec3) Mat4 {
	return Mat4{
		s[0], 0, 0, 0,
		0, s[1], 0, 0,
		0, 0, s[2], 0,
		0, 0, 0, 1,
	}
}

// Create a right-handed view matrix looking from eye towards center.
func LookAt4(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up.Normalize()).Normalize()
	u := s.Cross(f)

	return Mat4{
		s[0], s[1], s[2], -s.Dot(eye),
		u[0], u[1], u[2], -u.Dot(eye),
		-f[0], -f[1], -f[2], f.Dot(eye),
		0, 0, 0, 1,
	}
}

// Create a right-handed perspective projection matrix. fovy is the vertical
// field of view in radians.
func Perspective4(fovy, aspect, near, far float32) Mat4 {
	f := float32(1 / math.Tan(float64(fovy)/2))
	nmf := near - far

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) / nmf, (2 * far * near) / nmf,
		0, 0, -1, 0,
	}
}
