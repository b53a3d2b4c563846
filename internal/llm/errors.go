package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidState is returned when a generator is advanced after it finished.
var ErrInvalidState = errors.New("generator already finished")

// ErrCancelled marks a generation stopped by its caller. It wraps the context error.
var ErrCancelled = errors.New("generation cancelled")

// ValidationError lists every violated parameter constraint of a request.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "Input validation error: " + strings.Join(e.Violations, "; ")
}

// ModelError wraps a failure of the model capability for one candidate.
type ModelError struct {
	Candidate int
	Err       error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("Request failed during generation: candidate %d: %v", e.Candidate, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsModelError reports whether err is a generation failure of the model.
func IsModelError(err error) bool {
	var me *ModelError
	return errors.As(err, &me)
}

// IsInvalidState reports whether err is a generator contract violation.
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }

// IsCancelled reports whether err means the caller stopped the generation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
}
