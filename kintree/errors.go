package kintree

import "github.com/pkg/errors"

// NewUnknownJointTypeError returns an error for a joint-type tag with no
// registered model. This is a fatal configuration error.
func NewUnknownJointTypeError(jointType string) error {
	return errors.Errorf("no joint model registered for joint type %q", jointType)
}

// NewDuplicateJointTypeError returns an error for registering an
// already-registered joint-type tag.
func NewDuplicateJointTypeError(jointType string) error {
	return errors.Errorf("joint type %q is already registered", jointType)
}

// NewParentOrderError returns an error for a link whose parent index does not
// precede it in tree order.
func NewParentOrderError(idx, parent int) error {
	return errors.Errorf("link %d has parent %d; parents must precede children (-1 for root)", idx, parent)
}

// NewQLengthError returns an error for a generalized-coordinate vector whose
// length does not match the system.
func NewQLengthError(want, got int) error {
	return errors.Errorf("expected a generalized-coordinate vector of length %d, got %d", want, got)
}

// NewUnknownLinkError returns an error for a link name not present in the
// system.
func NewUnknownLinkError(name string) error {
	return errors.Errorf("no link named %q in system", name)
}
