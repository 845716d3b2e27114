package rcmg

import (
	"sync"

	"github.com/edaniels/golog"

	"github.com/synthmotion/kinsim/kintree"
	"github.com/synthmotion/kinsim/rng"
	"github.com/synthmotion/kinsim/spatialmath"
)

// DrawFunc samples the generalized-coordinate trajectory for one joint:
// frames rows of the joint's q-width. Time-axis randomness comes from keyT,
// value randomness from keyValue. params is the joint's fixed parameter
// vector.
type DrawFunc func(cfg Config, keyT, keyValue rng.Key, params []float64, logger golog.Logger) ([][]float64, error)

var (
	drawRegistryMu sync.RWMutex
	drawRegistry   = map[string]DrawFunc{
		kintree.JointFree:         drawFree,
		kintree.JointSpherical:    drawSpherical,
		kintree.JointFrozen:       drawFrozen,
		kintree.JointRx:           drawHinge(true, false),
		kintree.JointRy:           drawHinge(true, false),
		kintree.JointRz:           drawHinge(true, false),
		kintree.JointRevoluteAxis: drawHinge(true, false),
		kintree.JointPx:           drawPrismatic,
		kintree.JointPy:           drawPrismatic,
		kintree.JointPz:           drawPrismatic,
		kintree.JointP3D:          drawP3D,
	}
)

// RegisterDraw adds a trajectory-sampling hook for a joint type, typically
// alongside kintree.RegisterJointType. Re-registering an existing tag is
// rejected unless idempotent is set.
func RegisterDraw(jointType string, draw DrawFunc, idempotent bool) error {
	drawRegistryMu.Lock()
	defer drawRegistryMu.Unlock()
	if _, ok := drawRegistry[jointType]; ok {
		if idempotent {
			return nil
		}
		return kintree.NewDuplicateJointTypeError(jointType)
	}
	drawRegistry[jointType] = draw
	return nil
}

// LookupDraw returns the trajectory-sampling hook for a joint type.
func LookupDraw(jointType string) (DrawFunc, error) {
	drawRegistryMu.RLock()
	defer drawRegistryMu.RUnlock()
	draw, ok := drawRegistry[jointType]
	if !ok {
		return nil, kintree.NewUnknownJointTypeError(jointType)
	}
	return draw, nil
}

// drawHinge samples a single-angle trajectory with a random initial angle in
// [Ang0Min, Ang0Max]. Free and spherical joints reuse it per Euler axis with
// their own rate bounds and range-of-motion biasing disabled.
func drawHinge(enableRangeOfMotion, freeSpherical bool) DrawFunc {
	return func(cfg Config, keyT, keyValue rng.Key, _ []float64, logger golog.Logger) ([][]float64, error) {
		keyValue, consume := keyValue.Split2()
		ang0 := consume.Uniform(cfg.Ang0Min, cfg.Ang0Max)

		dangMin, dangMax := cfg.DangMin, cfg.DangMax
		if freeSpherical {
			dangMin, dangMax = cfg.DangMinFreeSpherical, cfg.DangMaxFreeSpherical
		}

		angle, err := RandomAngleOverTime(keyT, keyValue, AngleParams{
			Ang0:                    ang0,
			DangMin:                 dangMin,
			DangMax:                 dangMax,
			DeltaAngMin:             cfg.DeltaAngMin,
			DeltaAngMax:             cfg.DeltaAngMax,
			TMin:                    cfg.TMin,
			TMax:                    cfg.TMax,
			T:                       cfg.T,
			Ts:                      cfg.Ts,
			MaxIter:                 cfg.MaxIter,
			RandomizedInterpolation: cfg.RandomizedInterpolationAngle,
			RangeOfMotion:           cfg.RangeOfMotionHinge && enableRangeOfMotion,
			RangeOfMotionMethod:     cfg.RangeOfMotionHingeMethod,
			CDFBinsMin:              cfg.CDFBinsMin,
			CDFBinsMax:              cfg.CDFBinsMax,
			InterpolationMethod:     cfg.InterpolationMethod,
		}, logger)
		if err != nil {
			return nil, err
		}
		return columns(angle), nil
	}
}

func drawPrismatic(cfg Config, _, keyValue rng.Key, _ []float64, logger golog.Logger) ([][]float64, error) {
	keyValue, consume := keyValue.Split2()
	pos0 := consume.Uniform(cfg.Pos0Min, cfg.Pos0Max)

	pos, err := RandomPositionOverTime(keyValue, PositionParams{
		Pos0:                    pos0,
		PosMin:                  cfg.PosMin,
		PosMax:                  cfg.PosMax,
		DPosMin:                 cfg.DPosMin,
		DPosMax:                 cfg.DPosMax,
		TMin:                    cfg.TMin,
		TMax:                    cfg.TMax,
		T:                       cfg.T,
		Ts:                      cfg.Ts,
		MaxIt:                   cfg.MaxIter,
		RandomizedInterpolation: cfg.RandomizedInterpolationPosition,
		CDFBinsMin:              cfg.CDFBinsMin,
		CDFBinsMax:              cfg.CDFBinsMax,
		InterpolationMethod:     cfg.InterpolationMethod,
	}, logger)
	if err != nil {
		return nil, err
	}
	return columns(pos), nil
}

// drawEulerAngles samples the three Euler-angle trajectories shared by the
// spherical and free joints.
func drawEulerAngles(cfg Config, keyT, keyValue rng.Key, params []float64, logger golog.Logger) ([][][]float64, error) {
	keyTs := keyT.Split(3)
	keyValues := keyValue.Split(3)
	draw := drawHinge(false, true)
	angles := make([][][]float64, 3)
	for axis := 0; axis < 3; axis++ {
		col, err := draw(cfg, keyTs[axis], keyValues[axis], params, logger)
		if err != nil {
			return nil, err
		}
		angles[axis] = col
	}
	return angles, nil
}

func drawSpherical(cfg Config, keyT, keyValue rng.Key, params []float64, logger golog.Logger) ([][]float64, error) {
	angles, err := drawEulerAngles(cfg, keyT, keyValue, params, logger)
	if err != nil {
		return nil, err
	}
	return eulerToQuatRows(angles), nil
}

func drawP3D(cfg Config, keyT, keyValue rng.Key, params []float64, logger golog.Logger) ([][]float64, error) {
	keyValues := keyValue.Split(3)
	var cols [3][]float64
	for axis := 0; axis < 3; axis++ {
		col, err := drawPrismatic(cfg, keyT, keyValues[axis], params, logger)
		if err != nil {
			return nil, err
		}
		cols[axis] = flatten(col)
	}
	rows := make([][]float64, len(cols[0]))
	for i := range rows {
		rows[i] = []float64{cols[0][i], cols[1][i], cols[2][i]}
	}
	return rows, nil
}

func drawFree(cfg Config, keyT, keyValue rng.Key, params []float64, logger golog.Logger) ([][]float64, error) {
	keyTRot, keyTPos := keyT.Split2()
	keyValueRot, keyValuePos := keyValue.Split2()
	rot, err := drawSpherical(cfg, keyTRot, keyValueRot, params, logger)
	if err != nil {
		return nil, err
	}
	pos, err := drawP3D(cfg, keyTPos, keyValuePos, params, logger)
	if err != nil {
		return nil, err
	}
	rows := make([][]float64, len(rot))
	for i := range rows {
		rows[i] = append(append([]float64{}, rot[i]...), pos[i]...)
	}
	return rows, nil
}

func drawFrozen(cfg Config, _, _ rng.Key, _ []float64, _ golog.Logger) ([][]float64, error) {
	rows := make([][]float64, NumFrames(cfg.T, cfg.Ts))
	for i := range rows {
		rows[i] = []float64{}
	}
	return rows, nil
}

// eulerToQuatRows composes per-axis Euler-angle trajectories into unit
// quaternion rows, frame by frame.
func eulerToQuatRows(angles [][][]float64) [][]float64 {
	rows := make([][]float64, len(angles[0]))
	for i := range rows {
		rot := spatialmath.QuatFromEulerXYZ(angles[0][i][0], angles[1][i][0], angles[2][i][0])
		rows[i] = []float64{rot.Real, rot.Imag, rot.Jmag, rot.Kmag}
	}
	return rows
}

func columns(values []float64) [][]float64 {
	rows := make([][]float64, len(values))
	for i, v := range values {
		rows[i] = []float64{v}
	}
	return rows
}

func flatten(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = row[0]
	}
	return out
}
