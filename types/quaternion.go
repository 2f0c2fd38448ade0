package types

import "math"

type Quat struct {
	V Vec3
	W float32
}

// Create identity quaternion.
func QuatIdent() Quat {
	return Quat{
		V: Vec3{},
		W: 1.0,
	}
}

// Create a quaternion from an axis vector and an angle. The axis is
// normalized before use.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	sin := float32(math.Sin(float64(angle * 0.5)))
	cos := float32(math.Cos(float64(angle * 0.5)))
	return Quat{
		V: axis.Normalize().Mul(sin),
		W: cos,
	}
}

// Rotates a vector by the rotation this quaternion represents.
func (q Quat) Rotate(v Vec3) Vec3 {
	cross := q.V.Cross(v)
	// v + 2q_w * (q_v x v) + 2q_v x (q_v x v)
	return v.Add(cross.Mul(2 * q.W)).Add(q.V.Mul(2).Cross(cross))
}

// Multiplies two quaternions. The result applies q2 first and then q.
func (q Quat) Mul(q2 Quat) Quat {
	return Quat{
		q.V.Cross(q2.V).Add(q2.V.Mul(q.W)).Add(q.V.Mul(q2.W)),
		q.W*q2.W - q.V.Dot(q2.V),
	}
}

// Returns the quaternion norm.
func (q Quat) Len() float32 {
	return q.V.Vec4(q.W).Len()
}

// Normalizes the quaternion. A zero quaternion normalizes to the identity.
func (q Quat) Normalize() Quat {
	l := q.Len()
	if !(l >= floatCmpEpsilon) {
		return QuatIdent()
	}
	l = 1 / l
	return Quat{q.V.Mul(l), q.W * l}
}

// The inverse of a quaternion is its conjugate divided by the squared norm.
func (q Quat) Inverse() Quat {
	scaler := 1.0 / (q.V.Dot(q.V) + q.W*q.W)
	return Quat{
		q.V.Mul(-scaler),
		q.W * scaler,
	}
}

// Returns the (row-major) rotation matrix corresponding to the quaternion.
func (q Quat) Mat3() Mat3 {
	w, x, y, z := q.W, q.V[0], q.V[1], q.V[2]
	return Mat3{
		1 - 2*y*y - 2*z*z, 2*x*y - 2*w*z, 2*x*z + 2*w*y,
		2*x*y + 2*w*z, 1 - 2*x*x - 2*z*z, 2*y*z - 2*w*x,
		2*x*z - 2*w*y, 2*y*z + 2*w*x, 1 - 2*x*x - 2*y*y,
	}
}

// Returns the homogeneous rotation matrix corresponding to the quaternion.
func (q Quat) Mat4() Mat4 {
	m := q.Mat3()
	return Mat4{
		m[0], m[1], m[2], 0,
		m[3], m[4], m[5], 0,
		m[6], m[7], m[8], 0,
		0, 0, 0, 1,
	}
}
