package nn

import "errors"

// Common errors.
var (
	ErrUnknownActivation = errors.New("unsupported activation")
	ErrShapeMismatch     = errors.New("shape mismatch")
	ErrStaleCache        = errors.New("forward cache does not match current parameters")
	ErrInvalidConfig     = errors.New("invalid network config")
)
