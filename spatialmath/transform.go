package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Transform is a rigid transform between two frames: a unit quaternion
// rotating parent-frame vectors into the child frame, and the child origin
// expressed in the parent frame.
type Transform struct {
	Rot quat.Number
	Pos r3.Vector
}

// NewZeroTransform returns the identity transform. Since the rotation of a
// valid transform is a unit quaternion, not all zeroes, this should be used
// instead of Transform{}.
func NewZeroTransform() Transform {
	return Transform{Rot: QuatIdentity()}
}

// NewTransform builds a transform from a rotation and a translation.
func NewTransform(rot quat.Number, pos r3.Vector) Transform {
	return Transform{Rot: rot, Pos: pos}
}

// NewTransformFromRotation builds a purely rotational transform.
func NewTransformFromRotation(rot quat.Number) Transform {
	return Transform{Rot: rot}
}

// NewTransformFromPosition builds a purely translational transform.
func NewTransformFromPosition(pos r3.Vector) Transform {
	return Transform{Rot: QuatIdentity(), Pos: pos}
}

// Mul chains two transforms, t1 first. If t1 maps frame A to frame B and t2
// maps B to C, Mul(t2, t1) maps A to C. The operation is associative with
// NewZeroTransform as its identity.
func Mul(t2, t1 Transform) Transform {
	return Transform{
		Rot: quat.Mul(t2.Rot, t1.Rot),
		Pos: t1.Pos.Add(Rotate(t2.Pos, quat.Conj(t1.Rot))),
	}
}

// Inv returns the inverse transform, so that Mul(Inv(t), t) is the identity.
func Inv(t Transform) Transform {
	return Transform{
		Rot: quat.Conj(t.Rot),
		Pos: Rotate(t.Pos, t.Rot).Mul(-1),
	}
}
