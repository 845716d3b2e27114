// Package rcmg implements randomized constrained motion generation: random
// angle and position trajectories that respect velocity, step-size and
// range-of-motion bounds, resampled onto a uniform grid, and batched
// generators that turn a kinematic system plus a config into training data.
package rcmg

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Scalar is a bound that may vary with trajectory time. It is re-evaluated
// at every sampling step, so non-stationary statistics are just a closure.
type Scalar func(t float64) float64

// Const wraps a fixed bound.
func Const(v float64) Scalar {
	return func(float64) float64 { return v }
}

// Range-of-motion direction policies for hinge joints.
const (
	RangeOfMotionCoinflip = "coinflip"
	RangeOfMotionUniform  = "uniform"
	// RangeOfMotionSigmoid may carry a scale suffix, e.g. "sigmoid-1.5".
	RangeOfMotionSigmoid = "sigmoid"
)

// Interpolation methods for the randomized resampler.
const (
	InterpolationCosine = "cosine"
	InterpolationLinear = "linear"
)

// Config holds every knob of the motion generator.
type Config struct {
	// T is the trajectory duration and Ts the sampling period; the
	// resampled output has floor(T/Ts) frames.
	T  float64
	Ts float64

	// TMin and TMax bound the random time step between breakpoints.
	TMin float64
	TMax Scalar

	// Angular-rate bounds for hinge joints, in rad/s.
	DangMin Scalar
	DangMax Scalar
	// Angular-rate bounds used by free and spherical joints.
	DangMinFreeSpherical Scalar
	DangMaxFreeSpherical Scalar
	// Per-step angular-change bounds enforced by the rejection loop.
	DeltaAngMin Scalar
	DeltaAngMax Scalar

	// Velocity-magnitude and absolute-position bounds for prismatic joints.
	DPosMin Scalar
	DPosMax Scalar
	PosMin  Scalar
	PosMax  Scalar

	// Initial-value ranges.
	Ang0Min float64
	Ang0Max float64
	Pos0Min float64
	Pos0Max float64

	RandomizedInterpolationAngle    bool
	RandomizedInterpolationPosition bool
	RangeOfMotionHinge              bool
	RangeOfMotionHingeMethod        string

	// CDFBinsMax of zero means the bin count is fixed at CDFBinsMin.
	CDFBinsMin int
	CDFBinsMax int

	InterpolationMethod string

	// MaxIter caps the inner rejection loop; the loop terminates within
	// MaxIter+1 attempts unconditionally.
	MaxIter int
}

// DefaultConfig returns the generator defaults the training pipelines
// were tuned with.
func DefaultConfig() Config {
	return Config{
		T:                        60.0,
		Ts:                       0.01,
		TMin:                     0.05,
		TMax:                     Const(0.3),
		DangMin:                  Const(0.1),
		DangMax:                  Const(3.0),
		DangMinFreeSpherical:     Const(0.1),
		DangMaxFreeSpherical:     Const(3.0),
		DeltaAngMin:              Const(0.0),
		DeltaAngMax:              Const(2 * math.Pi),
		DPosMin:                  Const(0.001),
		DPosMax:                  Const(0.3),
		PosMin:                   Const(-2.5),
		PosMax:                   Const(2.5),
		Ang0Min:                  -math.Pi,
		Ang0Max:                  math.Pi,
		Pos0Min:                  0.0,
		Pos0Max:                  0.0,
		RangeOfMotionHinge:       true,
		RangeOfMotionHingeMethod: RangeOfMotionUniform,
		CDFBinsMin:               5,
		InterpolationMethod:      InterpolationCosine,
		MaxIter:                  5,
	}
}

// NumFrames returns the resampled trajectory length floor(T/Ts).
func NumFrames(T, Ts float64) int {
	return int(math.Floor(T/Ts + 1e-9))
}

// timeGrid returns the uniform resampling grid 0, Ts, 2Ts, ..., < T.
func timeGrid(T, Ts float64) []float64 {
	n := NumFrames(T, Ts)
	if n < 2 {
		return make([]float64, n)
	}
	return floats.Span(make([]float64, n), 0, float64(n-1)*Ts)
}
