package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestDegRadConversion(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, RadToDeg(math.Pi/2), test.ShouldAlmostEqual, 90)
	test.That(t, RadToDeg(DegToRad(33.3)), test.ShouldAlmostEqual, 33.3)
}

func TestWrapToPi(t *testing.T) {
	test.That(t, WrapToPi(0), test.ShouldAlmostEqual, 0)
	test.That(t, WrapToPi(math.Pi/2), test.ShouldAlmostEqual, math.Pi/2)
	test.That(t, WrapToPi(math.Pi+0.1), test.ShouldAlmostEqual, -math.Pi+0.1)
	test.That(t, WrapToPi(-math.Pi-0.1), test.ShouldAlmostEqual, math.Pi-0.1)
	test.That(t, WrapToPi(3*math.Pi), test.ShouldAlmostEqual, -math.Pi)
	test.That(t, WrapToPi(-5), test.ShouldAlmostEqual, -5+2*math.Pi)
}

func TestFloat64AlmostEqual(t *testing.T) {
	test.That(t, Float64AlmostEqual(1.0, 1.0+1e-8, 1e-6), test.ShouldBeTrue)
	test.That(t, Float64AlmostEqual(1.0, 1.1, 1e-6), test.ShouldBeFalse)
}
