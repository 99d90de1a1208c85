// Package plan holds the editable workout state of one planning session.
//
// A Store is not safe for concurrent use; callers serialize edits (see the
// session package). Every mutation goes through the Store methods, and every
// value handed out is a copy.
package plan

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/multierr"
)

// MaxWorkouts caps the number of live workouts in a Store.
const MaxWorkouts = 5

// Upper bounds for row sets and weekly frequency. They keep every weekly
// volume sum far inside int range.
const (
	MaxSets            = 100
	MaxSessionsPerWeek = 14
)

// ExerciseRow is one exercise line of a workout.
type ExerciseRow struct {
	ExerciseName string `json:"exercise_name" yaml:"exercise_name"`
	Sets         int    `json:"sets" yaml:"sets"`
	TargetMuscle string `json:"target_muscle" yaml:"target_muscle"`
}

// Workout is a named list of exercise rows done SessionsPerWeek times a week.
type Workout struct {
	ID              string        `json:"id" yaml:"id"`
	Rows            []ExerciseRow `json:"rows" yaml:"rows"`
	SessionsPerWeek int           `json:"sessions_per_week" yaml:"sessions_per_week"`
}

func (w *Workout) clone() Workout {
	return Workout{ID: w.ID, Rows: slices.Clone(w.Rows), SessionsPerWeek: w.SessionsPerWeek}
}

// Reference is the part of the reference catalog the store consults.
type Reference interface {
	HasMuscle(name string) bool
	TargetFor(exercise string) (string, bool)
}

// Store holds the workouts of one session in display order.
type Store struct {
	ref      Reference
	order    []string
	workouts map[string]*Workout
}

// NewStore returns an empty store. ref may be nil, in which case no target
// muscle is autofilled and every muscle is reported unresolved.
func NewStore(ref Reference) *Store {
	return &Store{ref: ref, workouts: make(map[string]*Workout)}
}

// CreateWorkout adds a workout with the given rows. Rows are validated like
// ReplaceRows; the returned slice lists rows whose muscle is not in the catalog.
func (s *Store) CreateWorkout(id string, rows []ExerciseRow, sessionsPerWeek int) ([]int, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyWorkoutID
	}
	if _, exists := s.workouts[id]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateWorkoutID, id)
	}
	if len(s.order) >= MaxWorkouts {
		return nil, ErrWorkoutLimitExceeded
	}
	if sessionsPerWeek < 0 || sessionsPerWeek > MaxSessionsPerWeek {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSessionCount, sessionsPerWeek)
	}
	checked, unresolved, err := s.checkRows(rows)
	if err != nil {
		return nil, err
	}

	s.order = append(s.order, id)
	s.workouts[id] = &Workout{ID: id, Rows: checked, SessionsPerWeek: sessionsPerWeek}
	return unresolved, nil
}

// AddWorkout is the "add workout" action: one example row, once a week.
func (s *Store) AddWorkout(id string) error {
	_, err := s.CreateWorkout(id, []ExerciseRow{ExampleRow()}, 1)
	return err
}

// DeleteWorkout removes a workout and all its rows.
func (s *Store) DeleteWorkout(id string) error {
	if _, ok := s.workouts[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	delete(s.workouts, id)
	s.order = slices.DeleteFunc(s.order, func(o string) bool { return o == id })
	return nil
}

// SetSessionsPerWeek changes how often a workout is done per week.
func (s *Store) SetSessionsPerWeek(id string, n int) error {
	if n < 0 || n > MaxSessionsPerWeek {
		return fmt.Errorf("%w: %d", ErrInvalidSessionCount, n)
	}
	w, ok := s.workouts[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	w.SessionsPerWeek = n
	return nil
}

// ReplaceRows swaps the whole row list of a workout. Either every row passes
// structural validation and the new list is committed, or nothing changes
// and a *ValidationError names the offending rows. Rows with an unknown
// target muscle are accepted; their indices are returned.
func (s *Store) ReplaceRows(id string, rows []ExerciseRow) ([]int, error) {
	w, ok := s.workouts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	checked, unresolved, err := s.checkRows(rows)
	if err != nil {
		return nil, err
	}
	w.Rows = checked
	return unresolved, nil
}

// MoveWorkout moves a workout to a new display position.
func (s *Store) MoveWorkout(id string, position int) error {
	from := slices.Index(s.order, id)
	if from < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if position < 0 || position >= len(s.order) {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, position)
	}
	s.order = slices.Delete(s.order, from, from+1)
	s.order = slices.Insert(s.order, position, id)
	return nil
}

// ListWorkouts returns workout ids in display order.
func (s *Store) ListWorkouts() []string {
	return slices.Clone(s.order)
}

// Workout returns a copy of one workout.
func (s *Store) Workout(id string) (Workout, error) {
	w, ok := s.workouts[id]
	if !ok {
		return Workout{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return w.clone(), nil
}

// Workouts returns copies of all workouts in display order.
func (s *Store) Workouts() []Workout {
	out := make([]Workout, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.workouts[id].clone())
	}
	return out
}

// Len returns the number of live workouts.
func (s *Store) Len() int {
	return len(s.order)
}

// checkRows copies and validates rows, filling an empty target muscle from
// the catalog when the exercise is known.
func (s *Store) checkRows(rows []ExerciseRow) ([]ExerciseRow, []int, error) {
	checked := make([]ExerciseRow, len(rows))
	var (
		errs       error
		bad        []int
		unresolved []int
	)
	for i, r := range rows {
		if r.TargetMuscle == "" && s.ref != nil {
			if m, ok := s.ref.TargetFor(r.ExerciseName); ok {
				r.TargetMuscle = m
			}
		}
		checked[i] = r

		var rowErrs error
		if strings.TrimSpace(r.ExerciseName) == "" {
			rowErrs = multierr.Append(rowErrs, &RowError{Index: i, Err: ErrEmptyExerciseName})
		}
		if r.Sets < 1 || r.Sets > MaxSets {
			rowErrs = multierr.Append(rowErrs, &RowError{Index: i, Err: ErrInvalidSetCount})
		}
		if strings.TrimSpace(r.TargetMuscle) == "" {
			rowErrs = multierr.Append(rowErrs, &RowError{Index: i, Err: ErrEmptyTargetMuscle})
		}
		if rowErrs != nil {
			errs = multierr.Append(errs, rowErrs)
			bad = append(bad, i)
			continue
		}
		if s.ref == nil || !s.ref.HasMuscle(r.TargetMuscle) {
			unresolved = append(unresolved, i)
		}
	}
	if errs != nil {
		return nil, nil, &ValidationError{Rows: bad, err: errs}
	}
	return checked, unresolved, nil
}
