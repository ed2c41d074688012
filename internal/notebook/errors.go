package notebook

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrAutomationUnavailable means no usable browser could be launched.
	ErrAutomationUnavailable = errors.New("browser automation unavailable")
	// ErrNavigation wraps a failed or timed out page load.
	ErrNavigation = errors.New("navigation failed")
	// ErrPageClosed signals the page target or its connection went away mid-protocol.
	ErrPageClosed = errors.New("page closed")
)

// PreconditionError is returned when a protocol cannot even start, e.g. the
// session credential is missing. Callers surface it and skip the analysis phase.
type PreconditionError struct {
	Err  error
	Hint string
}

func (e *PreconditionError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("precondition failed: %v", e.Err)
	}
	return fmt.Sprintf("precondition failed: %v (%s)", e.Err, e.Hint)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// IsPrecondition reports whether err is, or wraps, a PreconditionError.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// fault returns the error that must abort the current protocol run, or nil when
// err is an ordinary "element not there / not usable" miss that can be swallowed.
func fault(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, ErrPageClosed) || errors.Is(err, ErrNavigation) || IsPrecondition(err) {
		return err
	}
	return nil
}
