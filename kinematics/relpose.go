package kinematics

import (
	"gonum.org/v1/gonum/num/quat"

	"github.com/synthmotion/kinsim/kintree"
	"github.com/synthmotion/kinsim/spatialmath"
)

// RelPose extracts the child-to-parent rotation of every link from a set of
// world-frame transforms. Links attached to the world frame are skipped,
// since their relative pose would be the absolute one. This is the
// training-target signal for relative-orientation tracking models.
func RelPose(sys *kintree.System, worlds []spatialmath.Transform) (map[string]quat.Number, error) {
	out := make(map[string]quat.Number)
	_, err := kintree.Scan(sys, func(_ *struct{}, i int) (struct{}, error) {
		p := sys.Parent(i)
		if p == -1 {
			return struct{}{}, nil
		}
		out[sys.Link(i).Name] = quat.Mul(worlds[p].Rot, quat.Conj(worlds[i].Rot))
		return struct{}{}, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RelPoseTrajectory applies RelPose frame by frame over a pose trajectory,
// returning per-link quaternion series keyed by link name.
func RelPoseTrajectory(sys *kintree.System, xs [][]spatialmath.Transform) (map[string][]quat.Number, error) {
	out := make(map[string][]quat.Number)
	for _, worlds := range xs {
		frame, err := RelPose(sys, worlds)
		if err != nil {
			return nil, err
		}
		for name, rot := range frame {
			out[name] = append(out[name], rot)
		}
	}
	return out, nil
}
