// Package utils contains small numeric helpers shared across the module.
package utils

import "math"

const radToDeg = 180 / math.Pi

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees / radToDeg
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * radToDeg
}

// Float64AlmostEqual returns whether two float64s are within epsilon of each other.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// WrapToPi wraps an angle in radians onto the half-open interval [-pi, pi).
func WrapToPi(angle float64) float64 {
	wrapped := math.Mod(angle+math.Pi, 2*math.Pi)
	if wrapped < 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}
