package plot

import (
	"errors"
	"fmt"

	"github.com/opd-ai/go-plotutils/internal/geom"
)

// Sentinel errors. Every error returned by a Plotter operation wraps one of
// these (or a device write error) in an *OpError, so callers can test with
// errors.Is.
var (
	// ErrInvalidOperation is returned for an operation on a closed plotter,
	// Open on an open plotter, or RestoreState on the bottom state.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrSingularTransform is returned when a user window has zero area.
	ErrSingularTransform = geom.ErrSingular
	// ErrBadParameter is returned for an out-of-range argument.
	ErrBadParameter = errors.New("bad parameter")
)

// OpError records the operation that failed and why.
type OpError struct {
	// Op is the operation name, e.g. "restorestate".
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("plot: %s", e.Op)
	}
	return fmt.Sprintf("plot: %s: %s", e.Op, e.Err.Error())
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OpError) Unwrap() error {
	return e.Err
}

func opErr(op Op, err error) error {
	if err == nil {
		return nil
	}
	var oe *OpError
	if errors.As(err, &oe) {
		return err
	}
	return &OpError{Op: op.String(), Err: err}
}

func badParam(op Op, format string, args ...any) error {
	return &OpError{Op: op.String(), Err: fmt.Errorf("%w: "+format, append([]any{ErrBadParameter}, args...)...)}
}
