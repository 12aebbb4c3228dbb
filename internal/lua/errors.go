package lua

import "errors"

var (
	// ErrNilRuntime is returned when a nil runtime is passed to a function that requires one.
	ErrNilRuntime = errors.New("runtime cannot be nil")

	// ErrNilPlotter is returned when bindings are created without a plotter.
	ErrNilPlotter = errors.New("plotter cannot be nil")

	// ErrBadAlignment is returned when a label alignment is not a single
	// character.
	ErrBadAlignment = errors.New("alignment must be a single character")
)
