package rcmg

import (
	"testing"

	"go.viam.com/test"

	"github.com/synthmotion/kinsim/rng"
)

func TestCosInterpolateExactAtBreakpoints(t *testing.T) {
	xp := []float64{0, 1, 2.5}
	fp := []float64{0, 2, -1}
	out := CosInterpolate(xp, xp, fp)
	test.That(t, out, test.ShouldResemble, fp)
}

func TestCosInterpolateMidpointAndClamp(t *testing.T) {
	xp := []float64{0, 1}
	fp := []float64{0, 2}
	// cosine easing passes through the arithmetic mean at the segment middle
	out := CosInterpolate([]float64{0.5}, xp, fp)
	test.That(t, out[0], test.ShouldAlmostEqual, 1)
	// queries past the last breakpoint hold the last value
	out = CosInterpolate([]float64{5, 100}, xp, fp)
	test.That(t, out[0], test.ShouldEqual, 2.0)
	test.That(t, out[1], test.ShouldEqual, 2.0)
}

func TestCosInterpolateZeroWidthSegment(t *testing.T) {
	out := CosInterpolate([]float64{1}, []float64{0, 1, 1}, []float64{0, 4, 7})
	test.That(t, out[0], test.ShouldEqual, 7.0)
}

func TestCosInterpolateStaysInEnvelope(t *testing.T) {
	xp := []float64{0, 1, 2}
	fp := []float64{-1, 3, 0.5}
	x := make([]float64, 201)
	for i := range x {
		x[i] = float64(i) * 0.01
	}
	for _, v := range CosInterpolate(x, xp, fp) {
		test.That(t, v, test.ShouldBeBetweenOrEqual, -1.0-1e-12, 3.0+1e-12)
	}
}

func TestGenerateCDF(t *testing.T) {
	cdf := generateCDF(rng.NewKey(3), 5, 0)
	test.That(t, len(cdf), test.ShouldEqual, 6)
	test.That(t, cdf[0], test.ShouldEqual, 0.0)
	test.That(t, cdf[5], test.ShouldAlmostEqual, 1)
	for i := 1; i < len(cdf); i++ {
		test.That(t, cdf[i], test.ShouldBeGreaterThan, cdf[i-1])
	}

	// a bin range draws the count itself
	for _, key := range rng.NewKey(8).Split(20) {
		n := len(generateCDF(key, 3, 7))
		test.That(t, n, test.ShouldBeBetweenOrEqual, 4, 8)
	}

	// same key, same curve
	test.That(t, generateCDF(rng.NewKey(3), 5, 0), test.ShouldResemble, cdf)
}

func TestBijectAlphaEndpoints(t *testing.T) {
	cdf := generateCDF(rng.NewKey(1), 5, 0)
	test.That(t, bijectAlpha(0, cdf), test.ShouldEqual, 0.0)
	test.That(t, bijectAlpha(1, cdf), test.ShouldAlmostEqual, 1)
	// the warp is monotone
	prev := -1.0
	for a := 0.0; a <= 1.0; a += 0.05 {
		w := bijectAlpha(a, cdf)
		test.That(t, w, test.ShouldBeGreaterThan, prev)
		prev = w
	}
}

func TestRandomizedInterpolate(t *testing.T) {
	xp := []float64{0, 1, 2}
	fp := []float64{0, 2, -1}
	x := make([]float64, 101)
	for i := range x {
		x[i] = float64(i) * 0.02
	}

	for _, method := range []string{InterpolationCosine, InterpolationLinear} {
		out, err := RandomizedInterpolate(rng.NewKey(4), x, xp, fp, 5, 0, method)
		test.That(t, err, test.ShouldBeNil)
		// exact at breakpoints despite the warp
		test.That(t, out[0], test.ShouldAlmostEqual, 0)
		test.That(t, out[50], test.ShouldAlmostEqual, 2)
		test.That(t, out[100], test.ShouldAlmostEqual, -1)
		// the warp never leaves the segment envelope
		for _, v := range out {
			test.That(t, v, test.ShouldBeBetweenOrEqual, -1.0-1e-12, 2.0+1e-12)
		}
		// deterministic per key
		again, err := RandomizedInterpolate(rng.NewKey(4), x, xp, fp, 5, 0, method)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, again, test.ShouldResemble, out)
	}

	_, err := RandomizedInterpolate(rng.NewKey(4), x, xp, fp, 5, 0, "hermite")
	test.That(t, err, test.ShouldNotBeNil)
}
