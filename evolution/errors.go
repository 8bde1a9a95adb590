package evolution

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned before any simulation work starts when the
	// run parameters cannot produce a valid population or run.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEvaluationFailure is returned when the fitness evaluator fails for a creature,
	// or produces a non-finite score.
	ErrEvaluationFailure = errors.New("evaluation failure")

	// ErrInvariantViolation marks a programming error, e.g. a generation of the wrong size.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrOutOfRange is returned by the history accessors for a generation or creature
	// index that does not exist.
	ErrOutOfRange = errors.New("index out of range")
)

// EvaluationError describes which creature failed to evaluate during a generation transition.
type EvaluationError struct {
	Generation int // Generation being advanced from.
	Creature   int // Index of the creature (or candidate) within that generation.
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation failure in generation %d, creature %d: %v", e.Generation, e.Creature, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrEvaluationFailure) match.
func (e *EvaluationError) Is(target error) bool { return target == ErrEvaluationFailure }

// InvariantError reports a produced generation whose size differs from the run's generation size.
type InvariantError struct {
	Generation int
	Want       int
	Got        int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violation: generation %d has %d creatures, want %d", e.Generation, e.Got, e.Want)
}

func (e *InvariantError) Is(target error) bool { return target == ErrInvariantViolation }

// configError wraps ErrInvalidConfiguration with a formatted message.
func configError(format string, args ...any) error {
	return fmt.Errorf("%w: config error: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
