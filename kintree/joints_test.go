package kintree

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/synthmotion/kinsim/rng"
	"github.com/synthmotion/kinsim/spatialmath"
)

func TestBuiltinWidths(t *testing.T) {
	for jointType, want := range map[string][2]int{
		JointFree:         {7, 6},
		JointSpherical:    {4, 3},
		JointFrozen:       {0, 0},
		JointRx:           {1, 1},
		JointPz:           {1, 1},
		JointP3D:          {3, 3},
		JointRevoluteAxis: {1, 1},
	} {
		model, err := LookupJointType(jointType)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, model.QWidth, test.ShouldEqual, want[0])
		test.That(t, model.QDWidth, test.ShouldEqual, want[1])
	}
}

func TestJointTransformBuiltins(t *testing.T) {
	// frozen is the identity
	tf, err := JointTransform(JointFrozen, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tf, test.ShouldResemble, spatialmath.NewZeroTransform())

	// prismatic slides along its axis
	tf, err = JointTransform(JointPy, []float64{2.5}, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tf.Pos, test.ShouldResemble, r3.Vector{Y: 2.5})

	// rz matches an explicit axis rotation
	tf, err = JointTransform(JointRz, []float64{0.8}, nil)
	test.That(t, err, test.ShouldBeNil)
	want := spatialmath.QuatRotAxis(r3.Vector{Z: 1}, 0.8)
	test.That(t, tf.Rot, test.ShouldResemble, want)

	// the generic revolute reads its axis from the params
	tf, err = JointTransform(JointRevoluteAxis, []float64{0.8}, []float64{0, 0, 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tf.Rot.Real, test.ShouldAlmostEqual, want.Real)
	test.That(t, tf.Rot.Kmag, test.ShouldAlmostEqual, want.Kmag)

	// free packs quaternion then translation
	tf, err = JointTransform(JointFree, []float64{1, 0, 0, 0, 1, 2, 3}, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tf.Rot, test.ShouldResemble, spatialmath.QuatIdentity())
	test.That(t, tf.Pos, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
}

func TestJointTransformWidthMismatch(t *testing.T) {
	_, err := JointTransform(JointRx, []float64{0.1, 0.2}, nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = JointTransform("warp-drive", []float64{0.1}, nil)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRegisterJointType(t *testing.T) {
	model := JointModel{
		Transform: func(q, params []float64) spatialmath.Transform {
			return spatialmath.NewTransformFromRotation(
				spatialmath.QuatRotAxis(r3.Vector{X: params[0], Y: params[1], Z: params[2]}, q[0]))
		},
		QWidth:  1,
		QDWidth: 1,
	}
	test.That(t, RegisterJointType("rr_test", model, false), test.ShouldBeNil)
	// duplicate registration is rejected
	test.That(t, RegisterJointType("rr_test", model, false), test.ShouldNotBeNil)
	// unless explicitly idempotent
	test.That(t, RegisterJointType("rr_test", model, true), test.ShouldBeNil)
	test.That(t, RegisterJointType(JointRx, model, false), test.ShouldNotBeNil)

	sys, err := NewSystem([]Link{
		{Name: "seg", Parent: -1, JointType: "rr_test", JointParams: []float64{0, 1, 0}},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sys.QSize(), test.ShouldEqual, 1)
}

func TestRandomizeJointAxes(t *testing.T) {
	sys, err := NewSystem([]Link{
		{Name: "a", Parent: -1, JointType: JointRevoluteAxis, JointParams: []float64{1, 0, 0}},
		{Name: "b", Parent: 0, JointType: JointRx},
	})
	test.That(t, err, test.ShouldBeNil)

	randomized := RandomizeJointAxes(sys, rng.NewKey(4))
	axis := randomized.Link(0).JointParams
	test.That(t, len(axis), test.ShouldEqual, 3)
	norm := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	test.That(t, norm, test.ShouldAlmostEqual, 1)
	// hinge joints keep their params untouched
	test.That(t, randomized.Link(1).JointParams, test.ShouldBeNil)
	// original system untouched
	test.That(t, sys.Link(0).JointParams, test.ShouldResemble, []float64{1, 0, 0})

	again := RandomizeJointAxes(sys, rng.NewKey(4))
	test.That(t, again.Link(0).JointParams, test.ShouldResemble, axis)
}
