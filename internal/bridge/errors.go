package bridge

import "errors"

// Domain errors for the bridge package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, bridge.ErrUnsupportedTrait) {
//	    // handle unsupported trait
//	}
var (
	// ErrUnsupportedTrait is returned when a get/set is invoked on a trait
	// the adapter's variant or capability flags do not expose.
	ErrUnsupportedTrait = errors.New("bridge: trait not supported by device")

	// ErrInvalidValue is returned when a set value is out of range or of an
	// unrecognised enumerated kind.
	ErrInvalidValue = errors.New("bridge: invalid trait value")

	// ErrUnknownVariant is returned when an adapter is constructed with a
	// variant that has no profile.
	ErrUnknownVariant = errors.New("bridge: unknown capability variant")

	// ErrAdapterNotFound is returned when a device identifier has no adapter
	// in the registry lookup table.
	ErrAdapterNotFound = errors.New("bridge: adapter not found")
)
