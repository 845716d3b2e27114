package rcmg

import (
	"math"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/synthmotion/kinsim/rng"
	"github.com/synthmotion/kinsim/utils"
)

// preallocationWarnLimit guards against pathological T/TMin combinations
// that would make the breakpoint buffer very large.
const preallocationWarnLimit = 6000

const defaultSigmoidScale = 1.5

// breakpoint is one (timestamp, value) sample produced by the outer
// sampling loop, later used as an interpolation control point.
type breakpoint struct {
	t float64
	v float64
}

func warnHugeAllocation(logger golog.Logger, tMin, T float64) int {
	n := int(T/tMin) + 1
	if n > preallocationWarnLimit && logger != nil {
		logger.Warnf(
			"T=%v with t_min=%v yields a breakpoint buffer of %d entries (warn limit %d); consider reducing t_min",
			T, tMin, n, preallocationWarnLimit)
	}
	return n
}

// AngleParams configures one random angle trajectory.
type AngleParams struct {
	Ang0                    float64
	DangMin                 Scalar
	DangMax                 Scalar
	DeltaAngMin             Scalar
	DeltaAngMax             Scalar
	TMin                    float64
	TMax                    Scalar
	T                       float64
	Ts                      float64
	MaxIter                 int
	RandomizedInterpolation bool
	RangeOfMotion           bool
	RangeOfMotionMethod     string
	CDFBinsMin              int
	CDFBinsMax              int
	InterpolationMethod     string
}

// RandomAngleOverTime samples a constrained random walk in angle space and
// resamples it onto the uniform grid 0, Ts, ..., < T. Two keys drive it so
// the time axis and the values can be varied independently. Without
// range-of-motion biasing the result is wrapped to [-pi, pi).
func RandomAngleOverTime(keyT, keyAng rng.Key, p AngleParams, logger golog.Logger) ([]float64, error) {
	capacity := warnHugeAllocation(logger, p.TMin, p.T)
	pts := make([]breakpoint, 1, capacity)
	pts[0] = breakpoint{0, p.Ang0}

	t := 0.0
	phi := p.Ang0
	for t <= p.T {
		var consume rng.Key
		keyT, consume = keyT.Split2()
		dt := consume.Uniform(p.TMin, p.TMax(t))

		keyAng, consume = keyAng.Split2()
		next, err := resolveRangeOfMotion(consume, p, t, dt, phi)
		if err != nil {
			return nil, err
		}
		phi = next
		t += dt

		pts = append(pts, breakpoint{math.Floor(t/p.Ts) * p.Ts, phi})
	}

	grid := timeGrid(p.T, p.Ts)
	xp, fp := splitBreakpoints(pts)
	var q []float64
	if p.RandomizedInterpolation {
		var err error
		q, err = RandomizedInterpolate(keyAng, grid, xp, fp, p.CDFBinsMin, p.CDFBinsMax, p.InterpolationMethod)
		if err != nil {
			return nil, err
		}
	} else {
		q = CosInterpolate(grid, xp, fp)
	}

	// range-of-motion sampling already keeps angles inside [-pi, pi]
	if !p.RangeOfMotion {
		for i, v := range q {
			q[i] = utils.WrapToPi(v)
		}
	}
	return q, nil
}

// resolveRangeOfMotion draws the next angle via the inner rejection loop:
// candidates are redrawn until the per-step angular change lands inside
// [DeltaAngMin, DeltaAngMax], with a forced accept after MaxIter+1 attempts.
func resolveRangeOfMotion(key rng.Key, p AngleParams, t, dt, prevPhi float64) (float64, error) {
	dangMin := p.DangMin(t)
	dangMax := p.DangMax(t)
	deltaAngMin := p.DeltaAngMin(t)
	deltaAngMax := p.DeltaAngMax(t)

	nextPhi := func(key rng.Key) (float64, error) {
		c1, c2 := key.Split2()
		if !p.RangeOfMotion {
			dphi := c1.Uniform(dangMin, dangMax) * dt
			return prevPhi + c2.Sign(0.5)*dphi, nil
		}
		prob, err := directionProbability(p.RangeOfMotionMethod, prevPhi)
		if err != nil {
			return 0, err
		}
		sign := c1.Sign(prob)
		lower := clipToPi(prevPhi + sign*dangMin*dt)
		upper := clipToPi(prevPhi + sign*dangMax*dt)
		if lower > upper {
			lower, upper = upper, lower
		}
		return c2.Uniform(lower, upper), nil
	}

	phi := prevPhi
	for i := 0; ; i++ {
		var consume rng.Key
		key, consume = key.Split2()
		next, err := nextPhi(consume)
		if err != nil {
			return 0, err
		}
		phi = next
		delta := math.Abs(phi - prevPhi)
		if (delta >= deltaAngMin && delta <= deltaAngMax) || i >= p.MaxIter {
			return phi, nil
		}
	}
}

// directionProbability returns the probability of stepping in the positive
// direction given the current angle, under the chosen biasing policy.
func directionProbability(method string, phi float64) (float64, error) {
	switch {
	case method == RangeOfMotionCoinflip:
		return 0.5, nil
	case method == RangeOfMotionUniform:
		return 0.5 * (1 - phi/math.Pi), nil
	case strings.HasPrefix(method, RangeOfMotionSigmoid):
		scale := defaultSigmoidScale
		if parts := strings.Split(method, "-"); len(parts) == 2 {
			parsed, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return 0, errors.Wrapf(err, "bad sigmoid scale in %q", method)
			}
			scale = parsed
		}
		const hardcut = math.Pi - 0.01
		switch {
		case phi > hardcut:
			return 0, nil
		case phi < -hardcut:
			return 1, nil
		default:
			return 1 / (1 + math.Exp(scale*phi)), nil
		}
	default:
		return 0, errors.Errorf("unknown range-of-motion method %q", method)
	}
}

func clipToPi(phi float64) float64 {
	return math.Max(-math.Pi, math.Min(math.Pi, phi))
}

// PositionParams configures one random position trajectory.
type PositionParams struct {
	Pos0                    float64
	PosMin                  Scalar
	PosMax                  Scalar
	DPosMin                 Scalar
	DPosMax                 Scalar
	TMin                    float64
	TMax                    Scalar
	T                       float64
	Ts                      float64
	MaxIt                   int
	RandomizedInterpolation bool
	CDFBinsMin              int
	CDFBinsMax              int
	InterpolationMethod     string
}

// RandomPositionOverTime samples a constrained random walk in position
// space: each step must keep the velocity magnitude |dx/dt| inside
// [DPosMin, DPosMax] and the position inside [PosMin, PosMax], both
// evaluated at the previous breakpoint time. After MaxIt+1 rejected
// candidates the step is forced to zero displacement, holding position.
func RandomPositionOverTime(key rng.Key, p PositionParams, logger golog.Logger) ([]float64, error) {
	capacity := warnHugeAllocation(logger, p.TMin, p.T)
	pts := make([]breakpoint, 1, capacity)
	pts[0] = breakpoint{0, p.Pos0}

	// TODO the walk state starts at zero rather than Pos0, so the first
	// resampled value only equals Pos0 through the leading breakpoint;
	// for Pos0 != 0 the trajectory jumps toward zero over the first
	// segment.
	t, tPre := 0.0, 0.0
	x, xPre := 0.0, 0.0
	for t <= p.T {
		var consume rng.Key
		key, consume = key.Split2()
		t += consume.Uniform(p.TMin, p.TMax(tPre))
		dt := t - tPre

		dposMin := p.DPosMin(tPre)
		dposMax := p.DPosMax(tPre)
		posMin := p.PosMin(tPre)
		posMax := p.PosMax(tPre)

		x = xPre
		for i := 0; ; i++ {
			dpos := math.Abs((x - xPre) / dt)
			if dpos > dposMin && dpos < dposMax && x >= posMin && x <= posMax {
				break
			}
			if i > p.MaxIt {
				// forced accept: hold position
				x = xPre
				break
			}
			c1, c2 := consumeNext(&key)
			x = xPre + c1.Sign(0.5)*c2.Uniform(dposMin, dposMax)*dt
		}

		pts = append(pts, breakpoint{math.Floor(t/p.Ts) * p.Ts, x})
		tPre = t
		xPre = x
	}

	grid := timeGrid(p.T, p.Ts)
	xp, fp := splitBreakpoints(pts)
	if p.RandomizedInterpolation {
		return RandomizedInterpolate(key, grid, xp, fp, p.CDFBinsMin, p.CDFBinsMax, p.InterpolationMethod)
	}
	return CosInterpolate(grid, xp, fp), nil
}

// consumeNext advances the caller's key and returns two one-shot keys.
func consumeNext(key *rng.Key) (rng.Key, rng.Key) {
	next, consume := key.Split2()
	*key = next
	c1, c2 := consume.Split2()
	return c1, c2
}

func splitBreakpoints(pts []breakpoint) ([]float64, []float64) {
	xp := make([]float64, len(pts))
	fp := make([]float64, len(pts))
	for i, pt := range pts {
		xp[i] = pt.t
		fp[i] = pt.v
	}
	return xp, fp
}
