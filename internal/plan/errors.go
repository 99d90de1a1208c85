package plan

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

var (
	ErrDuplicateWorkoutID   = errors.New("workout id already exists")
	ErrWorkoutLimitExceeded = fmt.Errorf("at most %d workouts allowed", MaxWorkouts)
	ErrNotFound             = errors.New("workout not found")
	ErrInvalidSessionCount  = fmt.Errorf("sessions per week must be between 0 and %d", MaxSessionsPerWeek)
	ErrInvalidPosition      = errors.New("position out of range")
	ErrEmptyWorkoutID       = errors.New("workout id is required")

	ErrInvalidSetCount   = fmt.Errorf("sets must be between 1 and %d", MaxSets)
	ErrEmptyExerciseName = errors.New("exercise name is required")
	ErrEmptyTargetMuscle = errors.New("target muscle is required")
)

// RowError ties a structural problem to the index of the offending row.
type RowError struct {
	Index int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ValidationError rejects a whole row set. Rows lists the offending indices
// in ascending order; errors.Is matches any per-row cause.
type ValidationError struct {
	Rows []int
	err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid rows %v: %v", e.Rows, e.err)
}

func (e *ValidationError) Unwrap() []error {
	return multierr.Errors(e.err)
}

// Problems returns the per-row errors.
func (e *ValidationError) Problems() []*RowError {
	var out []*RowError
	for _, err := range multierr.Errors(e.err) {
		var re *RowError
		if errors.As(err, &re) {
			out = append(out, re)
		}
	}
	return out
}
