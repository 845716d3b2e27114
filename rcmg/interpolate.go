package rcmg

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/synthmotion/kinsim/rng"
)

// bracket returns the index of the breakpoint closing the segment containing
// xi, clipped to [1, len(xp)-1].
func bracket(xp []float64, xi float64) int {
	i := sort.Search(len(xp), func(j int) bool { return xp[j] > xi })
	if i < 1 {
		i = 1
	}
	if i > len(xp)-1 {
		i = len(xp) - 1
	}
	return i
}

func cosBlend(x1, x2, alpha float64) float64 {
	return (x1+x2)/2 + (x1-x2)/2*math.Cos(alpha*math.Pi)
}

func linBlend(x1, x2, alpha float64) float64 {
	return (1-alpha)*x1 + alpha*x2
}

// CosInterpolate evaluates cosine easing through the breakpoints (xp, fp) at
// the query points x. The curve matches the breakpoints exactly with zero
// derivative at each. Queries beyond the last breakpoint clamp to the last
// value, and a zero-width segment yields its closing value directly.
func CosInterpolate(x, xp, fp []float64) []float64 {
	out := make([]float64, len(x))
	last := len(xp) - 1
	for k, xi := range x {
		if xi > xp[last] {
			out[k] = fp[last]
			continue
		}
		i := bracket(xp, xi)
		dx := xp[i] - xp[i-1]
		if dx == 0 {
			out[k] = fp[i]
			continue
		}
		out[k] = cosBlend(fp[i-1], fp[i], (xi-xp[i-1])/dx)
	}
	return out
}

// generateCDF builds a monotonically increasing sequence from 0 to 1 of
// length bins+1 by normalizing cumulative sums of uniform increments. If
// binsMax exceeds binsMin, the bin count itself is drawn uniformly from
// [binsMin, binsMax].
func generateCDF(key rng.Key, binsMin, binsMax int) []float64 {
	bins := binsMin
	if binsMax > binsMin {
		var consume rng.Key
		key, consume = key.Split2()
		bins = consume.IntBetween(binsMin, binsMax)
	}
	cdf := make([]float64, bins+1)
	for i, draw := range key.Split(bins) {
		cdf[i+1] = cdf[i] + draw.Uniform(1e-6, 1.0)
	}
	total := cdf[bins]
	for i := range cdf {
		cdf[i] /= total
	}
	return cdf
}

// bijectAlpha warps alpha in [0, 1] through the piecewise-linear inverse of
// the CDF, producing a random monotone easing.
func bijectAlpha(alpha float64, cdf []float64) float64 {
	n := len(cdf) - 1
	dx := 1.0 / float64(n)
	left := int(alpha / dx)
	if left > n-1 {
		left = n - 1
	}
	a := (alpha - float64(left)*dx) / dx
	return (1-a)*cdf[left] + a*cdf[left+1]
}

// RandomizedInterpolate resamples the breakpoints like CosInterpolate but
// first passes each segment's interpolation position through a random
// monotone CDF warp, so every segment gets its own irregular easing curve.
// All queries falling in the same segment share that segment's warp.
func RandomizedInterpolate(key rng.Key, x, xp, fp []float64, binsMin, binsMax int, method string) ([]float64, error) {
	var blend func(x1, x2, alpha float64) float64
	switch method {
	case InterpolationCosine:
		blend = cosBlend
	case InterpolationLinear:
		blend = linBlend
	default:
		return nil, errors.Errorf("unknown interpolation method %q", method)
	}

	keys := key.Split(len(xp))
	cdfs := make([][]float64, len(xp))
	segmentCDF := func(i int) []float64 {
		if cdfs[i] == nil {
			cdfs[i] = generateCDF(keys[i], binsMin, binsMax)
		}
		return cdfs[i]
	}

	out := make([]float64, len(x))
	last := len(xp) - 1
	for k, xi := range x {
		if xi > xp[last] {
			out[k] = fp[last]
			continue
		}
		i := bracket(xp, xi)
		dx := xp[i] - xp[i-1]
		if dx == 0 {
			out[k] = fp[i]
			continue
		}
		alpha := bijectAlpha((xi-xp[i-1])/dx, segmentCDF(i-1))
		out[k] = blend(fp[i-1], fp[i], alpha)
	}
	return out, nil
}
