package kinematics

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/optimize"

	"github.com/synthmotion/kinsim/kintree"
	"github.com/synthmotion/kinsim/rng"
	"github.com/synthmotion/kinsim/spatialmath"
	"github.com/synthmotion/kinsim/utils"
)

const (
	defaultIKIterations = 500
	defaultIKTolerance  = 1e-8
)

// PreprocessFunc maps a joint's raw optimizer coordinates onto its valid
// manifold, e.g. re-normalizing a quaternion segment.
type PreprocessFunc func(q []float64) []float64

// SolveOptions configures InverseKinematics. The zero value solves from the
// system's zero configuration with equal rotation and position weights.
type SolveOptions struct {
	WeightRot float64
	WeightPos float64
	// Q0 is the initial configuration. Leave nil to start from the zero
	// configuration, or set RandomStarts for multistart.
	Q0 []float64
	// RandomStarts samples this many random initial configurations and
	// keeps the solution with the lowest final objective value.
	RandomStarts  int
	Key           rng.Key
	MaxIterations int
	// CustomPreprocess supplies coordinate preprocessing for joint types
	// registered at runtime.
	CustomPreprocess map[string]PreprocessFunc
}

// SolveResult is the outcome of an inverse-kinematics solve. Non-convergence
// is not fatal: Q always holds the best configuration found, and Converged
// plus Status report the optimizer diagnostics.
type SolveResult struct {
	Q          []float64
	Value      float64
	Converged  bool
	Status     optimize.Status
	Iterations int
}

// InverseKinematics finds generalized coordinates bringing the named link's
// world pose close to the target, minimizing a weighted sum of geodesic
// rotation angle and Euclidean position error with L-BFGS.
func InverseKinematics(
	sys *kintree.System,
	linkName string,
	target spatialmath.Transform,
	logger golog.Logger,
	opts *SolveOptions,
) (*SolveResult, error) {
	if opts == nil {
		opts = &SolveOptions{}
	}
	if opts.WeightRot == 0 && opts.WeightPos == 0 {
		opts.WeightRot, opts.WeightPos = 1, 1
	}
	linkIdx, err := sys.NameToIdx(linkName)
	if err != nil {
		return nil, err
	}

	if opts.RandomStarts > 0 {
		if opts.Q0 != nil {
			return nil, errors.New("provide either an initial configuration or random starts, not both")
		}
		return solveMultistart(sys, linkIdx, target, logger, opts)
	}

	q0 := opts.Q0
	if q0 == nil {
		q0 = sys.ZeroQ()
	}
	if len(q0) != sys.QSize() {
		return nil, kintree.NewQLengthError(sys.QSize(), len(q0))
	}
	return solveSingle(sys, linkIdx, target, logger, opts, q0)
}

func solveMultistart(
	sys *kintree.System,
	linkIdx int,
	target spatialmath.Transform,
	logger golog.Logger,
	opts *SolveOptions,
) (*SolveResult, error) {
	keys := opts.Key.Split(opts.RandomStarts)
	var best *SolveResult
	for _, key := range keys {
		q0 := make([]float64, sys.QSize())
		for j, draw := range key.Split(len(q0)) {
			q0[j] = draw.Normal(1)
		}
		res, err := solveSingle(sys, linkIdx, target, logger, opts, q0)
		if err != nil {
			return nil, err
		}
		if best == nil || res.Value < best.Value {
			best = res
		}
	}
	return best, nil
}

func solveSingle(
	sys *kintree.System,
	linkIdx int,
	target spatialmath.Transform,
	logger golog.Logger,
	opts *SolveOptions,
	q0 []float64,
) (*SolveResult, error) {
	objective := func(x []float64) float64 {
		q, err := PreprocessQ(sys, x, opts.CustomPreprocess)
		if err != nil {
			return math.Inf(1)
		}
		worlds, _, err := ForwardKinematics(sys, q)
		if err != nil {
			return math.Inf(1)
		}
		xhat := worlds[linkIdx]
		errRot := math.Abs(spatialmath.QuatToR4AA(quat.Mul(target.Rot, quat.Conj(xhat.Rot))).Theta)
		errPos := target.Pos.Sub(xhat.Pos).Norm()
		return opts.WeightRot*errRot + opts.WeightPos*errPos
	}

	iterations := opts.MaxIterations
	if iterations < 1 {
		iterations = defaultIKIterations
	}
	// L-BFGS needs a gradient; the objective has no analytic one, so
	// estimate it with central finite differences.
	problem := optimize.Problem{
		Func: objective,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, objective, x, nil)
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   iterations,
		GradientThreshold: defaultIKTolerance,
	}
	result, err := optimize.Minimize(problem, q0, settings, &optimize.LBFGS{})
	if result == nil {
		return nil, errors.Wrap(err, "inverse kinematics optimizer failed")
	}
	if err != nil {
		// Linesearch and convergence failures still carry a best-effort
		// solution; surface them as diagnostics only.
		logger.Debugw("inverse kinematics did not converge", "error", err, "value", result.F)
	}
	q, perr := PreprocessQ(sys, result.X, opts.CustomPreprocess)
	if perr != nil {
		return nil, perr
	}
	return &SolveResult{
		Q:          q,
		Value:      result.F,
		Converged:  err == nil && result.Status != optimize.Failure,
		Status:     result.Status,
		Iterations: result.Stats.MajorIterations,
	}, nil
}

// PreprocessQ maps raw coordinates onto each joint's valid manifold:
// quaternion segments are re-normalized, single-axis revolute angles wrapped
// to [-pi, pi), and runtime-registered joint types handled by the supplied
// hooks.
func PreprocessQ(sys *kintree.System, q []float64, custom map[string]PreprocessFunc) ([]float64, error) {
	segments, err := sys.QSplit(q)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(q))
	_, err = kintree.Scan(sys, func(_ *struct{}, i int) (struct{}, error) {
		jointType := sys.Link(i).JointType
		seg := segments[i]
		switch jointType {
		case kintree.JointFree:
			rot := spatialmath.Normalize(quat.Number{Real: seg[0], Imag: seg[1], Jmag: seg[2], Kmag: seg[3]})
			out = append(out, rot.Real, rot.Imag, rot.Jmag, rot.Kmag, seg[4], seg[5], seg[6])
		case kintree.JointSpherical:
			rot := spatialmath.Normalize(quat.Number{Real: seg[0], Imag: seg[1], Jmag: seg[2], Kmag: seg[3]})
			out = append(out, rot.Real, rot.Imag, rot.Jmag, rot.Kmag)
		case kintree.JointRx, kintree.JointRy, kintree.JointRz, kintree.JointRevoluteAxis:
			out = append(out, utils.WrapToPi(seg[0]))
		case kintree.JointFrozen, kintree.JointPx, kintree.JointPy, kintree.JointPz, kintree.JointP3D:
			out = append(out, seg...)
		default:
			hook, ok := custom[jointType]
			if !ok {
				return struct{}{}, errors.Errorf("no coordinate preprocessing for joint type %q", jointType)
			}
			out = append(out, hook(seg)...)
		}
		return struct{}{}, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
