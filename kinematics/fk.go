// Package kinematics evaluates world-frame poses of a kinematic tree and
// solves the inverse problem for a target end-effector pose.
package kinematics

import (
	"github.com/synthmotion/kinsim/kintree"
	"github.com/synthmotion/kinsim/spatialmath"
)

// ForwardKinematics computes the world-frame transform of every link for the
// given generalized coordinates. It returns the transforms aligned to tree
// order together with a copy of the system whose per-link Transform and
// Transform2 caches have been refreshed; the input system is not mutated, so
// concurrent evaluations over the same system are safe.
//
// For each link the static offset is applied first, then the joint's local
// transform, then the parent's world transform.
func ForwardKinematics(sys *kintree.System, q []float64) ([]spatialmath.Transform, *kintree.System, error) {
	segments, err := sys.QSplit(q)
	if err != nil {
		return nil, nil, err
	}
	links := sys.Links()
	worlds, err := kintree.Scan(sys, func(parent *spatialmath.Transform, i int) (spatialmath.Transform, error) {
		local, err := kintree.JointTransform(links[i].JointType, segments[i], links[i].JointParams)
		if err != nil {
			return spatialmath.Transform{}, err
		}
		tf := spatialmath.Mul(local, links[i].Transform1)
		links[i].Transform2 = local
		links[i].Transform = tf
		parentWorld := spatialmath.NewZeroTransform()
		if parent != nil {
			parentWorld = *parent
		}
		return spatialmath.Mul(tf, parentWorld), nil
	})
	if err != nil {
		return nil, nil, err
	}
	return worlds, sys.ReplaceLinks(links), nil
}
