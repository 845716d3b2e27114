package kintree

import (
	"testing"

	"go.viam.com/test"

	"github.com/synthmotion/kinsim/spatialmath"
)

func threeLinkChain(t *testing.T) *System {
	t.Helper()
	sys, err := NewSystem([]Link{
		{Name: "base", Parent: -1, JointType: JointFree},
		{Name: "upper", Parent: 0, JointType: JointRx},
		{Name: "lower", Parent: 1, JointType: JointRy},
	})
	test.That(t, err, test.ShouldBeNil)
	return sys
}

func TestNewSystemValidation(t *testing.T) {
	_, err := NewSystem([]Link{
		{Name: "a", Parent: -1, JointType: JointFree},
		{Name: "b", Parent: 1, JointType: JointRx}, // self-parent
	})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewSystem([]Link{
		{Name: "a", Parent: -1, JointType: "hoverboard"},
	})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "hoverboard")

	// everything wrong is reported at once
	_, err = NewSystem([]Link{
		{Name: "a", Parent: 3, JointType: "hoverboard"},
	})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "parents must precede")
	test.That(t, err.Error(), test.ShouldContainSubstring, "hoverboard")
}

func TestQSizes(t *testing.T) {
	sys := threeLinkChain(t)
	test.That(t, sys.QSize(), test.ShouldEqual, 9)
	test.That(t, sys.QDSize(), test.ShouldEqual, 8)

	segments, err := sys.QSplit(make([]float64, 9))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(segments), test.ShouldEqual, 3)
	test.That(t, len(segments[0]), test.ShouldEqual, 7)
	test.That(t, len(segments[1]), test.ShouldEqual, 1)
	test.That(t, len(segments[2]), test.ShouldEqual, 1)

	_, err = sys.QSplit(make([]float64, 4))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestZeroQ(t *testing.T) {
	sys := threeLinkChain(t)
	q := sys.ZeroQ()
	test.That(t, len(q), test.ShouldEqual, 9)
	test.That(t, q[0], test.ShouldEqual, 1.0) // unit quaternion real part
	for _, v := range q[1:] {
		test.That(t, v, test.ShouldEqual, 0.0)
	}
}

func TestNameToIdx(t *testing.T) {
	sys := threeLinkChain(t)
	idx, err := sys.NameToIdx("lower")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, idx, test.ShouldEqual, 2)
	_, err = sys.NameToIdx("nonesuch")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestScanVisitsParentsFirst(t *testing.T) {
	sys := threeLinkChain(t)
	depths, err := Scan(sys, func(parent *int, idx int) (int, error) {
		if parent == nil {
			return 0, nil
		}
		return *parent + 1, nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, depths, test.ShouldResemble, []int{0, 1, 2})
}

func TestScanThreadsRunningValue(t *testing.T) {
	sys := threeLinkChain(t)
	var names []string
	_, err := Scan(sys, func(_ *struct{}, idx int) (struct{}, error) {
		names = append(names, sys.Link(idx).Name)
		return struct{}{}, nil
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, names, test.ShouldResemble, []string{"base", "upper", "lower"})
}

func TestImmutableAfterConstruction(t *testing.T) {
	links := []Link{{Name: "a", Parent: -1, JointType: JointRx}}
	sys, err := NewSystem(links)
	test.That(t, err, test.ShouldBeNil)
	links[0].Name = "mutated"
	test.That(t, sys.Link(0).Name, test.ShouldEqual, "a")

	copied := sys.Links()
	copied[0].Transform1 = spatialmath.NewTransformFromPosition(spatialmath.NewZeroTransform().Pos)
	copied[0].Name = "other"
	test.That(t, sys.Link(0).Name, test.ShouldEqual, "a")
}
