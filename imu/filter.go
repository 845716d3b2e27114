package imu

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Mass-spring-damper constants for the quasi-physical sensor-mount model.
const (
	quasiPhysicalMass      = 1.0
	quasiPhysicalDamping   = 35.0
	quasiPhysicalStiffness = 625.0
)

// MovingAverage smooths the signal with a centered moving average of odd
// window size, padding the edges by replicating the first and last samples.
func MovingAverage(signal []r3.Vector, window int) ([]r3.Vector, error) {
	if window%2 != 1 {
		return nil, errors.Errorf("moving-average window must be odd, got %d", window)
	}
	if window <= 1 {
		return nil, errors.New("moving-average window of 1 would be a no-op")
	}
	halfWindow := (window - 1) / 2
	n := len(signal)
	out := make([]r3.Vector, n)
	for i := range out {
		var sum r3.Vector
		for j := i - halfWindow; j <= i+halfWindow; j++ {
			k := j
			if k < 0 {
				k = 0
			}
			if k > n-1 {
				k = n - 1
			}
			sum = sum.Add(signal[k])
		}
		out[i] = sum.Mul(1 / float64(window))
	}
	return out, nil
}

// QuasiPhysical drags a unit mass on a critically-tuned spring-damper after
// the position signal, imitating the compliance of a sensor strapped to soft
// tissue. Integration is semi-implicit: velocity is updated from the spring
// and damper force first, then position from the new velocity.
func QuasiPhysical(signal []r3.Vector, dt float64) []r3.Vector {
	if len(signal) == 0 {
		return nil
	}
	out := make([]r3.Vector, len(signal))
	pos := signal[0]
	var vel r3.Vector
	zeroVel := r3.Vector{}
	for i, zeroPos := range signal {
		zeroPointVel := zeroVel
		if i > 0 {
			zeroPointVel = signal[i].Sub(signal[i-1]).Mul(1 / dt)
		}
		force := zeroPointVel.Sub(vel).Mul(quasiPhysicalDamping).
			Add(zeroPos.Sub(pos).Mul(quasiPhysicalStiffness))
		acc := force.Mul(1 / quasiPhysicalMass)
		vel = vel.Add(acc.Mul(dt))
		pos = pos.Add(vel.Mul(dt))
		out[i] = pos
	}
	return out
}

// ButterworthLowPass runs a second-order Butterworth low-pass over the
// signal forward and then backward, cancelling the filter's phase shift.
func ButterworthLowPass(signal []r3.Vector, fSampling, fCutoff float64) []r3.Vector {
	return butterworthBackward(butterworthForward(signal, fSampling, fCutoff), fSampling, fCutoff)
}

func butterworthBackward(signal []r3.Vector, fSampling, fCutoff float64) []r3.Vector {
	flipped := butterworthForward(reverse(signal), fSampling, fCutoff)
	return reverse(flipped)
}

// butterworthForward applies the biquad difference equation with
// coefficients from the bilinear transform of the analog prototype.
// https://stackoverflow.com/questions/20924868
func butterworthForward(signal []r3.Vector, fSampling, fCutoff float64) []r3.Vector {
	if len(signal) < 3 {
		return append([]r3.Vector{}, signal...)
	}
	ita := 1.0 / math.Tan(math.Pi*fCutoff/fSampling)
	q := math.Sqrt2
	b0 := 1.0 / (1.0 + q*ita + ita*ita)
	b1 := 2 * b0
	b2 := b0
	a1 := 2.0 * (ita*ita - 1.0) * b0
	a2 := -(1.0 - q*ita + ita*ita) * b0

	out := make([]r3.Vector, len(signal))
	xm1, xm2 := signal[1], signal[0]
	ym1, ym2 := signal[1], signal[0]
	for i := 2; i < len(signal); i++ {
		x := signal[i]
		y := x.Mul(b0).Add(xm1.Mul(b1)).Add(xm2.Mul(b2)).Add(ym1.Mul(a1)).Add(ym2.Mul(a2))
		xm2, xm1 = xm1, x
		ym2, ym1 = ym1, y
		out[i] = y
	}
	out[0] = out[2]
	out[1] = out[2]
	return out
}

func reverse(signal []r3.Vector) []r3.Vector {
	out := make([]r3.Vector, len(signal))
	for i, v := range signal {
		out[len(signal)-1-i] = v
	}
	return out
}
