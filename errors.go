package nsgif

import "errors"

// Facade-level sentinel errors. Internal packages (container, lzw,
// compositor) define their own sentinels; the facade wraps those with
// fmt.Errorf("%w", ...) where it adds context, and defines its own for
// conditions that only make sense at this layer.
var (
	ErrNilCallbacks        = errors.New("nsgif: callbacks must not be nil")
	ErrFrameNotDisplayable = errors.New("nsgif: frame is not yet displayable")
	ErrNoFrames            = errors.New("nsgif: no frames available")
	ErrAlreadyDestroyed    = errors.New("nsgif: decoder already destroyed")
)
