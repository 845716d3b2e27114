// Package spatialmath implements the rigid-transform and quaternion algebra
// used by the kinematics and sensor-simulation packages.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/synthmotion/kinsim/rng"
)

// QuatIdentity returns the identity rotation.
func QuatIdentity() quat.Number {
	return quat.Number{Real: 1}
}

// Norm returns the norm of the quaternion's imaginary part.
func Norm(q quat.Number) float64 {
	return math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}

// Normalize returns a unit quaternion. A quaternion of all zeroes normalizes
// to the identity rather than dividing by zero.
func Normalize(q quat.Number) quat.Number {
	length := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if length == 0 {
		return QuatIdentity()
	}
	return quat.Scale(1/length, q)
}

// R4AA represents an R4 axis angle.
type R4AA struct {
	Theta float64
	RX    float64
	RY    float64
	RZ    float64
}

// ToR3 collapses an R4 axis angle to R3, scaling the axis by the angle.
func (r4 R4AA) ToR3() r3.Vector {
	return r3.Vector{X: r4.RX * r4.Theta, Y: r4.RY * r4.Theta, Z: r4.RZ * r4.Theta}
}

// QuatToR4AA converts a quat to an R4 axis angle in the same way the C++ Eigen library does.
// https://eigen.tuxfamily.org/dox/AngleAxis_8h_source.html
func QuatToR4AA(q quat.Number) R4AA {
	denom := Norm(q)

	angle := 2 * math.Atan2(denom, math.Abs(q.Real))
	if q.Real < 0 {
		angle *= -1
	}

	if denom < 1e-6 {
		return R4AA{angle, 1, 0, 0}
	}
	return R4AA{angle, q.Imag / denom, q.Jmag / denom, q.Kmag / denom}
}

// QuatRotAxis builds the unit quaternion rotating by angle about the given
// axis. The axis need not be normalized.
func QuatRotAxis(axis r3.Vector, angle float64) quat.Number {
	norm := axis.Norm()
	if norm == 0 {
		return QuatIdentity()
	}
	sinA := math.Sin(angle / 2)
	return quat.Number{
		Real: math.Cos(angle / 2),
		Imag: axis.X / norm * sinA,
		Jmag: axis.Y / norm * sinA,
		Kmag: axis.Z / norm * sinA,
	}
}

// QuatFromEulerXYZ builds the quaternion for intrinsic x-y-z Euler angles.
func QuatFromEulerXYZ(x, y, z float64) quat.Number {
	qx := QuatRotAxis(r3.Vector{X: 1}, x)
	qy := QuatRotAxis(r3.Vector{Y: 1}, y)
	qz := QuatRotAxis(r3.Vector{Z: 1}, z)
	return quat.Mul(qz, quat.Mul(qy, qx))
}

// Rotate applies the rotation to a vector via conjugation. With the
// convention used throughout this module, a link orientation maps
// world-frame vectors into the link's local frame.
func Rotate(v r3.Vector, q quat.Number) r3.Vector {
	rotated := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: rotated.Imag, Y: rotated.Jmag, Z: rotated.Kmag}
}

// RandomQuat draws a rotation about a uniformly random axis with angle
// uniform in [0, maxTheta).
func RandomQuat(key rng.Key, maxTheta float64) quat.Number {
	keys := key.Split(4)
	axis := r3.Vector{
		X: keys[0].Normal(1),
		Y: keys[1].Normal(1),
		Z: keys[2].Normal(1),
	}
	if axis.Norm() == 0 {
		axis = r3.Vector{X: 1}
	}
	return QuatRotAxis(axis, keys[3].Uniform(0, maxTheta))
}

// QuatSlerp spherically interpolates from q1 to q2 by alpha in [0, 1].
func QuatSlerp(q1, q2 quat.Number, alpha float64) quat.Number {
	dq := quat.Mul(q2, quat.Conj(q1))
	aa := QuatToR4AA(dq)
	step := QuatRotAxis(r3.Vector{X: aa.RX, Y: aa.RY, Z: aa.RZ}, aa.Theta*alpha)
	return Normalize(quat.Mul(step, q1))
}

// QuatLowPassFilter runs an exponential low-pass over a quaternion series.
// Smaller alpha means stronger smoothing.
func QuatLowPassFilter(rots []quat.Number, alpha float64) []quat.Number {
	if len(rots) == 0 {
		return nil
	}
	out := make([]quat.Number, len(rots))
	out[0] = rots[0]
	for i := 1; i < len(rots); i++ {
		out[i] = QuatSlerp(out[i-1], rots[i], alpha)
	}
	return out
}
