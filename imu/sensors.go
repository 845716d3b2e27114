// Package imu derives synthetic accelerometer and gyroscope signals from a
// pose trajectory, with the imperfections of real sensors layered on top:
// mounting misalignment, mechanical compliance, filtering, smoothing, delay,
// noise and bias.
package imu

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/synthmotion/kinsim/rng"
	"github.com/synthmotion/kinsim/spatialmath"
	"github.com/synthmotion/kinsim/utils"
)

// Sensor noise standard deviations and bias bounds, matched to consumer-grade
// MEMS parts.
var (
	noiseLevelAcc = 0.05
	noiseLevelGyr = utils.DegToRad(0.5)
	biasLevelAcc  = 0.1
	biasLevelGyr  = utils.DegToRad(1.0)
)

// gyroRateFloor treats rotation deltas below this angle as exactly zero,
// avoiding axis-extraction noise at near-identity deltas.
const gyroRateFloor = 1e-10

// Measurement is a 6D IMU signal: specific force and angular rate per frame,
// both in the sensor frame.
type Measurement struct {
	Acc []r3.Vector
	Gyr []r3.Vector
}

// Accelerometer computes the specific force measured by a sensor moving
// along the given world-frame trajectory: a second-order central finite
// difference of position plus gravity, rotated into the sensor frame.
// Boundary frames replicate the nearest interior derivative.
func Accelerometer(xs []spatialmath.Transform, gravity r3.Vector, dt float64) []r3.Vector {
	n := len(xs)
	acc := make([]r3.Vector, n)
	for i := 1; i < n-1; i++ {
		second := xs[i-1].Pos.Add(xs[i+1].Pos).Sub(xs[i].Pos.Mul(2)).Mul(1 / (dt * dt))
		acc[i] = second.Add(gravity)
	}
	if n > 2 {
		acc[0] = acc[1]
		acc[n-1] = acc[n-2]
	} else {
		for i := range acc {
			acc[i] = gravity
		}
	}
	for i := range acc {
		acc[i] = spatialmath.Rotate(acc[i], xs[i].Rot)
	}
	return acc
}

// Gyroscope computes angular rates from an orientation trajectory via a
// first-order finite difference dq = q[t+1] * q[t]^-1 converted to an
// axis-angle rate. The final frame replicates its predecessor.
func Gyroscope(rots []quat.Number, dt float64) []r3.Vector {
	n := len(rots)
	gyr := make([]r3.Vector, n)
	for i := 0; i < n-1; i++ {
		dq := quat.Mul(rots[i+1], quat.Conj(rots[i]))
		aa := spatialmath.QuatToR4AA(dq)
		if aa.Theta > -gyroRateFloor && aa.Theta < gyroRateFloor {
			continue
		}
		gyr[i] = aa.ToR3().Mul(1 / dt)
	}
	if n > 1 {
		gyr[n-1] = gyr[n-2]
	}
	return gyr
}

// Options selects the optional stages of the Simulate pipeline. The zero
// value produces clean, undelayed measurements.
type Options struct {
	// Noisy adds white noise plus a per-channel random bias drawn once per
	// call.
	Noisy bool
	// SmoothenDegree applies a moving average of this odd window size;
	// zero disables it.
	SmoothenDegree int
	// Delay shifts the measurements by a fixed number of frames. Nil
	// derives the delay from SmoothenDegree so the moving average never
	// uses future samples; explicit zero disables delay.
	Delay *int
	// RandomS2SOri, when non-nil, applies a static random
	// sensor-to-segment misalignment rotation with angle up to this bound.
	RandomS2SOri *float64
	// QuasiPhysical runs the position signal through a mass-spring-damper
	// model of the sensor mount before differentiation.
	QuasiPhysical bool
	// LowPassCutoffFreq low-passes the position signal with a zero-phase
	// second-order Butterworth at this cutoff (Hz).
	LowPassCutoffFreq *float64
	// LowPassRotAlpha low-passes the orientation signal with an
	// exponential quaternion filter.
	LowPassRotAlpha *float64
}

// Simulate runs the full 6D IMU pipeline over a world-frame pose trajectory.
func Simulate(xs []spatialmath.Transform, gravity r3.Vector, dt float64, key rng.Key, opts Options) (Measurement, error) {
	if len(xs) == 0 {
		return Measurement{}, errors.New("cannot simulate an imu over an empty trajectory")
	}
	xs = append([]spatialmath.Transform{}, xs...)

	if opts.RandomS2SOri != nil {
		var consume rng.Key
		key, consume = key.Split2()
		s2s := spatialmath.NewTransformFromRotation(spatialmath.RandomQuat(consume, *opts.RandomS2SOri))
		for i := range xs {
			xs[i] = spatialmath.Mul(s2s, xs[i])
		}
	}

	if opts.QuasiPhysical {
		pos := positions(xs)
		for i, p := range QuasiPhysical(pos, dt) {
			xs[i].Pos = p
		}
	}

	if opts.LowPassCutoffFreq != nil {
		filtered := ButterworthLowPass(positions(xs), 1/dt, *opts.LowPassCutoffFreq)
		for i, p := range filtered {
			xs[i].Pos = p
		}
	}

	if opts.LowPassRotAlpha != nil {
		filtered := spatialmath.QuatLowPassFilter(rotations(xs), *opts.LowPassRotAlpha)
		for i, rot := range filtered {
			xs[i].Rot = rot
		}
	}

	m := Measurement{
		Acc: Accelerometer(xs, gravity, dt),
		Gyr: Gyroscope(rotations(xs), dt),
	}

	delay := 0
	if opts.SmoothenDegree > 0 {
		var err error
		if m.Acc, err = MovingAverage(m.Acc, opts.SmoothenDegree); err != nil {
			return Measurement{}, err
		}
		if m.Gyr, err = MovingAverage(m.Gyr, opts.SmoothenDegree); err != nil {
			return Measurement{}, err
		}
		// a centered moving average looks ahead by half a window, so by
		// default delay the output to keep it causal
		delay = (opts.SmoothenDegree - 1) / 2
	}
	if opts.Delay != nil {
		delay = *opts.Delay
	}
	if delay > 0 {
		m.Acc = delayFrames(m.Acc, delay)
		m.Gyr = delayFrames(m.Gyr, delay)
	}

	if opts.Noisy {
		m = addNoiseBias(key, m)
	}
	return m, nil
}

// addNoiseBias layers white noise and a single random bias per 3-axis
// channel onto the measurements.
func addNoiseBias(key rng.Key, m Measurement) Measurement {
	keys := key.Split(4)
	m.Acc = noisyChannel(keys[0], keys[1], m.Acc, noiseLevelAcc, biasLevelAcc)
	m.Gyr = noisyChannel(keys[2], keys[3], m.Gyr, noiseLevelGyr, biasLevelGyr)
	return m
}

func noisyChannel(noiseKey, biasKey rng.Key, signal []r3.Vector, sigma, biasBound float64) []r3.Vector {
	noise := distuv.Normal{Mu: 0, Sigma: sigma, Src: noiseKey.Source()}
	biasDist := distuv.Uniform{Min: -biasBound, Max: biasBound, Src: biasKey.Source()}
	bias := r3.Vector{X: biasDist.Rand(), Y: biasDist.Rand(), Z: biasDist.Rand()}
	out := make([]r3.Vector, len(signal))
	for i, v := range signal {
		out[i] = v.Add(bias).Add(r3.Vector{X: noise.Rand(), Y: noise.Rand(), Z: noise.Rand()})
	}
	return out
}

// delayFrames shifts the signal later by the given number of frames, zero
// filling the start and dropping the tail.
func delayFrames(signal []r3.Vector, delay int) []r3.Vector {
	if delay >= len(signal) {
		return make([]r3.Vector, len(signal))
	}
	out := make([]r3.Vector, len(signal))
	copy(out[delay:], signal[:len(signal)-delay])
	return out
}

func positions(xs []spatialmath.Transform) []r3.Vector {
	out := make([]r3.Vector, len(xs))
	for i, x := range xs {
		out[i] = x.Pos
	}
	return out
}

func rotations(xs []spatialmath.Transform) []quat.Number {
	out := make([]quat.Number, len(xs))
	for i, x := range xs {
		out[i] = x.Rot
	}
	return out
}
