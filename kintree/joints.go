package kintree

import (
	"math"
	"sync"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/synthmotion/kinsim/rng"
	"github.com/synthmotion/kinsim/spatialmath"
)

// TransformFunc maps a joint's generalized-coordinate segment and its fixed
// parameter vector to the local parent-to-child transform. Implementations
// must be pure and must accept exactly QWidth coordinates.
type TransformFunc func(q, params []float64) spatialmath.Transform

// JointModel describes one joint type: its local transform and the widths of
// its generalized coordinate and velocity segments.
type JointModel struct {
	Transform TransformFunc
	QWidth    int
	QDWidth   int
}

// Built-in joint-type tags.
const (
	JointFree      = "free"
	JointSpherical = "spherical"
	JointFrozen    = "frozen"
	JointRx        = "rx"
	JointRy        = "ry"
	JointRz        = "rz"
	JointPx        = "px"
	JointPy        = "py"
	JointPz        = "pz"
	JointP3D       = "p3d"
	// JointRevoluteAxis rotates about an arbitrary axis stored in the first
	// three joint params.
	JointRevoluteAxis = "ra"
)

var (
	jointRegistryMu sync.RWMutex
	jointRegistry   = map[string]JointModel{
		JointFree:      {Transform: freeTransform, QWidth: 7, QDWidth: 6},
		JointSpherical: {Transform: sphericalTransform, QWidth: 4, QDWidth: 3},
		JointFrozen:    {Transform: frozenTransform, QWidth: 0, QDWidth: 0},
		JointRx:        {Transform: revoluteTransform(r3.Vector{X: 1}), QWidth: 1, QDWidth: 1},
		JointRy:        {Transform: revoluteTransform(r3.Vector{Y: 1}), QWidth: 1, QDWidth: 1},
		JointRz:        {Transform: revoluteTransform(r3.Vector{Z: 1}), QWidth: 1, QDWidth: 1},
		JointPx:        {Transform: prismaticTransform(r3.Vector{X: 1}), QWidth: 1, QDWidth: 1},
		JointPy:        {Transform: prismaticTransform(r3.Vector{Y: 1}), QWidth: 1, QDWidth: 1},
		JointPz:        {Transform: prismaticTransform(r3.Vector{Z: 1}), QWidth: 1, QDWidth: 1},
		JointP3D:       {Transform: p3dTransform, QWidth: 3, QDWidth: 3},
		JointRevoluteAxis: {
			Transform: revoluteAxisTransform,
			QWidth:    1,
			QDWidth:   1,
		},
	}
)

// RegisterJointType adds a joint model for a new tag. Re-registering an
// existing tag is rejected unless idempotent is set, in which case the
// existing model is kept and no error is returned.
func RegisterJointType(jointType string, model JointModel, idempotent bool) error {
	jointRegistryMu.Lock()
	defer jointRegistryMu.Unlock()
	if _, ok := jointRegistry[jointType]; ok {
		if idempotent {
			return nil
		}
		return NewDuplicateJointTypeError(jointType)
	}
	jointRegistry[jointType] = model
	return nil
}

// LookupJointType returns the model registered for a tag.
func LookupJointType(jointType string) (JointModel, error) {
	jointRegistryMu.RLock()
	defer jointRegistryMu.RUnlock()
	model, ok := jointRegistry[jointType]
	if !ok {
		return JointModel{}, NewUnknownJointTypeError(jointType)
	}
	return model, nil
}

// JointTransform evaluates the local transform for a joint type.
func JointTransform(jointType string, q, params []float64) (spatialmath.Transform, error) {
	model, err := LookupJointType(jointType)
	if err != nil {
		return spatialmath.Transform{}, err
	}
	if len(q) != model.QWidth {
		return spatialmath.Transform{}, NewQLengthError(model.QWidth, len(q))
	}
	return model.Transform(q, params), nil
}

func freeTransform(q, _ []float64) spatialmath.Transform {
	rot := quatFromSegment(q[:4])
	return spatialmath.NewTransform(rot, r3.Vector{X: q[4], Y: q[5], Z: q[6]})
}

func sphericalTransform(q, _ []float64) spatialmath.Transform {
	return spatialmath.NewTransformFromRotation(quatFromSegment(q[:4]))
}

func frozenTransform(_, _ []float64) spatialmath.Transform {
	return spatialmath.NewZeroTransform()
}

func revoluteTransform(axis r3.Vector) TransformFunc {
	return func(q, _ []float64) spatialmath.Transform {
		return spatialmath.NewTransformFromRotation(spatialmath.QuatRotAxis(axis, q[0]))
	}
}

func prismaticTransform(axis r3.Vector) TransformFunc {
	return func(q, _ []float64) spatialmath.Transform {
		return spatialmath.NewTransformFromPosition(axis.Mul(q[0]))
	}
}

func p3dTransform(q, _ []float64) spatialmath.Transform {
	return spatialmath.NewTransformFromPosition(r3.Vector{X: q[0], Y: q[1], Z: q[2]})
}

func revoluteAxisTransform(q, params []float64) spatialmath.Transform {
	axis := r3.Vector{X: params[0], Y: params[1], Z: params[2]}
	return spatialmath.NewTransformFromRotation(spatialmath.QuatRotAxis(axis, q[0]))
}

func quatFromSegment(q []float64) quat.Number {
	return quat.Number{Real: q[0], Imag: q[1], Jmag: q[2], Kmag: q[3]}
}

// RandomizeJointAxes returns a copy of the system in which every
// revolute-axis joint is given a uniformly random unit axis as its
// parameter vector. Used for domain randomization of joint geometry.
func RandomizeJointAxes(sys *System, key rng.Key) *System {
	links := sys.Links()
	for i, k := range key.Split(len(links)) {
		if links[i].JointType != JointRevoluteAxis {
			continue
		}
		axis := spatialmath.Rotate(r3.Vector{X: 1}, spatialmath.RandomQuat(k, 2*math.Pi))
		links[i].JointParams = []float64{axis.X, axis.Y, axis.Z}
	}
	return sys.ReplaceLinks(links)
}
