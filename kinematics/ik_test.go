package kinematics

import (
	"math"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/synthmotion/kinsim/kintree"
	"github.com/synthmotion/kinsim/rng"
	"github.com/synthmotion/kinsim/spatialmath"
	"github.com/synthmotion/kinsim/utils"
)

func TestInverseKinematicsPendulum(t *testing.T) {
	logger := golog.NewTestLogger(t)
	sys := pendulum(t)

	worlds, _, err := ForwardKinematics(sys, []float64{0.9})
	test.That(t, err, test.ShouldBeNil)
	target := worlds[1]

	res, err := InverseKinematics(sys, "hand", target, logger, &SolveOptions{
		RandomStarts: 5,
		Key:          rng.NewKey(2),
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Value, test.ShouldBeLessThan, 0.05)

	got, _, err := ForwardKinematics(sys, res.Q)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got[1].Pos.Sub(target.Pos).Norm(), test.ShouldBeLessThan, 0.05)
}

func TestInverseKinematicsFromInitialGuess(t *testing.T) {
	logger := golog.NewTestLogger(t)
	sys := pendulum(t)

	worlds, _, err := ForwardKinematics(sys, []float64{-0.4})
	test.That(t, err, test.ShouldBeNil)

	res, err := InverseKinematics(sys, "hand", worlds[1], logger, &SolveOptions{
		Q0: []float64{0.1},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res, test.ShouldNotBeNil)
	test.That(t, res.Value, test.ShouldBeLessThan, 0.05)
	test.That(t, utils.WrapToPi(res.Q[0]), test.ShouldAlmostEqual, -0.4, 0.05)

	// the zero value solves from the zero configuration
	res, err = InverseKinematics(sys, "hand", worlds[1], logger, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Value, test.ShouldBeLessThan, 0.05)
}

func TestInverseKinematicsOptionErrors(t *testing.T) {
	logger := golog.NewTestLogger(t)
	sys := pendulum(t)
	target := spatialmath.NewZeroTransform()

	_, err := InverseKinematics(sys, "nonesuch", target, logger, nil)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = InverseKinematics(sys, "hand", target, logger, &SolveOptions{
		Q0:           []float64{0},
		RandomStarts: 3,
	})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = InverseKinematics(sys, "hand", target, logger, &SolveOptions{
		Q0: []float64{0, 0, 0},
	})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPreprocessQ(t *testing.T) {
	sys, err := kintree.NewSystem([]kintree.Link{
		{Name: "base", Parent: -1, JointType: kintree.JointFree},
		{Name: "seg", Parent: 0, JointType: kintree.JointRx},
	})
	test.That(t, err, test.ShouldBeNil)

	raw := []float64{2, 0, 0, 0, 1, 2, 3, 4.0}
	q, err := PreprocessQ(sys, raw, nil)
	test.That(t, err, test.ShouldBeNil)
	// the quaternion segment is re-normalized
	test.That(t, q[0], test.ShouldAlmostEqual, 1)
	test.That(t, q[1], test.ShouldAlmostEqual, 0)
	// translation passes through
	test.That(t, q[4:7], test.ShouldResemble, []float64{1, 2, 3})
	// the hinge angle is wrapped
	test.That(t, q[7], test.ShouldAlmostEqual, utils.WrapToPi(4.0))
}

func TestPreprocessQCustomJoint(t *testing.T) {
	model := kintree.JointModel{
		Transform: func(q, params []float64) spatialmath.Transform {
			return spatialmath.NewZeroTransform()
		},
		QWidth:  2,
		QDWidth: 2,
	}
	test.That(t, kintree.RegisterJointType("pp_test", model, true), test.ShouldBeNil)
	sys, err := kintree.NewSystem([]kintree.Link{
		{Name: "a", Parent: -1, JointType: "pp_test"},
	})
	test.That(t, err, test.ShouldBeNil)

	// without a hook preprocessing must fail
	_, err = PreprocessQ(sys, []float64{1, 2}, nil)
	test.That(t, err, test.ShouldNotBeNil)

	q, err := PreprocessQ(sys, []float64{1, 2}, map[string]PreprocessFunc{
		"pp_test": func(seg []float64) []float64 {
			return []float64{seg[0] * 2, seg[1] * 2}
		},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, q, test.ShouldResemble, []float64{2, 4})
}

func TestRelPose(t *testing.T) {
	sys, err := kintree.NewSystem([]kintree.Link{
		{Name: "base", Parent: -1, JointType: kintree.JointFree},
		{Name: "seg", Parent: 0, JointType: kintree.JointRx},
	})
	test.That(t, err, test.ShouldBeNil)

	angle := 0.6
	rot := spatialmath.RandomQuat(rng.NewKey(13), math.Pi)
	q := []float64{rot.Real, rot.Imag, rot.Jmag, rot.Kmag, 0, 0, 0, angle}
	worlds, _, err := ForwardKinematics(sys, q)
	test.That(t, err, test.ShouldBeNil)

	rel, err := RelPose(sys, worlds)
	test.That(t, err, test.ShouldBeNil)
	// the world-attached base has no relative pose
	_, ok := rel["base"]
	test.That(t, ok, test.ShouldBeFalse)
	// the child-to-parent rotation recovers the joint angle no matter how
	// the root is oriented
	aa := spatialmath.QuatToR4AA(rel["seg"])
	test.That(t, math.Abs(aa.Theta), test.ShouldAlmostEqual, angle)
	test.That(t, math.Abs(aa.RX), test.ShouldAlmostEqual, 1)
}

func TestRelPoseTrajectory(t *testing.T) {
	sys := pendulum(t)
	var xs [][]spatialmath.Transform
	for _, angle := range []float64{0, 0.3, 0.6} {
		worlds, _, err := ForwardKinematics(sys, []float64{angle})
		test.That(t, err, test.ShouldBeNil)
		xs = append(xs, worlds)
	}
	rel, err := RelPoseTrajectory(sys, xs)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(rel["hand"]), test.ShouldEqual, 3)
	for _, r := range rel["hand"] {
		// the hand joint is frozen relative to the shoulder
		test.That(t, spatialmath.QuatToR4AA(r).Theta, test.ShouldAlmostEqual, 0)
	}
}
