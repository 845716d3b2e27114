// Package kintree models an articulated rigid-body system as a flat array of
// links with parent pointers, in the style of Featherstone's spatial-algebra
// texts: parents always precede children, so a single forward pass over the
// array visits the tree in topological order with no graph traversal.
package kintree

import (
	"go.uber.org/multierr"

	"github.com/synthmotion/kinsim/spatialmath"
)

// Link is one node of the kinematic tree.
type Link struct {
	Name      string
	Parent    int // -1 for links attached to the world frame
	JointType string
	// JointParams is a fixed parameter vector whose semantics depend on the
	// joint type, e.g. the rotation axis of an "ra" joint.
	JointParams []float64
	// Transform1 is the static parent-to-child offset at zero configuration.
	Transform1 spatialmath.Transform

	// Transform and Transform2 are caches refreshed by forward kinematics:
	// Transform2 is the joint's local transform, Transform the joint
	// transform composed with the static offset.
	Transform  spatialmath.Transform
	Transform2 spatialmath.Transform
}

// System is an immutable kinematic tree. Construct it with NewSystem; the
// only fields that change afterwards are the per-link transform caches on
// copies returned by forward kinematics.
type System struct {
	links []Link
}

// NewSystem validates the link array and builds a system. Validation
// failures (unknown joint types, bad parent ordering) are fatal
// configuration errors; everything found wrong is reported at once.
func NewSystem(links []Link) (*System, error) {
	var errAll error
	for i, link := range links {
		if link.Parent < -1 || link.Parent >= i {
			multierr.AppendInto(&errAll, NewParentOrderError(i, link.Parent))
		}
		if _, err := LookupJointType(link.JointType); err != nil {
			multierr.AppendInto(&errAll, err)
		}
	}
	if errAll != nil {
		return nil, errAll
	}
	sys := &System{links: make([]Link, len(links))}
	copy(sys.links, links)
	for i := range sys.links {
		sys.links[i].Transform = spatialmath.NewZeroTransform()
		sys.links[i].Transform2 = spatialmath.NewZeroTransform()
	}
	return sys, nil
}

// NumLinks returns the number of links.
func (s *System) NumLinks() int {
	return len(s.links)
}

// Link returns the link at the given tree index.
func (s *System) Link(i int) Link {
	return s.links[i]
}

// Parent returns the parent index of link i (-1 for the world frame).
func (s *System) Parent(i int) int {
	return s.links[i].Parent
}

// NameToIdx returns the tree index of a named link.
func (s *System) NameToIdx(name string) (int, error) {
	for i, link := range s.links {
		if link.Name == name {
			return i, nil
		}
	}
	return 0, NewUnknownLinkError(name)
}

// QSize returns the total generalized-coordinate width of the system.
func (s *System) QSize() int {
	total := 0
	for _, link := range s.links {
		model, _ := LookupJointType(link.JointType)
		total += model.QWidth
	}
	return total
}

// QDSize returns the total generalized-velocity width of the system.
func (s *System) QDSize() int {
	total := 0
	for _, link := range s.links {
		model, _ := LookupJointType(link.JointType)
		total += model.QDWidth
	}
	return total
}

// QSplit segments a flat coordinate vector per link in tree order. The
// returned slices alias q.
func (s *System) QSplit(q []float64) ([][]float64, error) {
	if len(q) != s.QSize() {
		return nil, NewQLengthError(s.QSize(), len(q))
	}
	segments := make([][]float64, len(s.links))
	offset := 0
	for i, link := range s.links {
		model, _ := LookupJointType(link.JointType)
		segments[i] = q[offset : offset+model.QWidth]
		offset += model.QWidth
	}
	return segments, nil
}

// ZeroQ returns the zero configuration: identity quaternions for free and
// spherical joints, zeroes elsewhere.
func (s *System) ZeroQ() []float64 {
	q := make([]float64, 0, s.QSize())
	for _, link := range s.links {
		switch link.JointType {
		case JointFree, JointSpherical:
			model, _ := LookupJointType(link.JointType)
			seg := make([]float64, model.QWidth)
			seg[0] = 1
			q = append(q, seg...)
		default:
			model, _ := LookupJointType(link.JointType)
			q = append(q, make([]float64, model.QWidth)...)
		}
	}
	return q
}

// ReplaceLinks returns a copy of the system with new link values, used by
// forward kinematics to publish refreshed transform caches without mutating
// shared state.
func (s *System) ReplaceLinks(links []Link) *System {
	out := &System{links: make([]Link, len(links))}
	copy(out.links, links)
	return out
}

// Links returns a copy of the link array.
func (s *System) Links() []Link {
	out := make([]Link, len(s.links))
	copy(out, s.links)
	return out
}
