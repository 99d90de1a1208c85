package plan

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeRef is a minimal catalog: Chest and Back, with one known exercise.
type fakeRef struct{}

func (fakeRef) HasMuscle(name string) bool {
	return name == "Chest" || name == "Back"
}

func (fakeRef) TargetFor(exercise string) (string, bool) {
	if exercise == "Bench Press" {
		return "Chest", true
	}
	return "", false
}

func chestRows(sets int) []ExerciseRow {
	return []ExerciseRow{{ExerciseName: "Bench Press", Sets: sets, TargetMuscle: "Chest"}}
}

// TestCreateWorkoutOrder verifies workouts list in insertion order.
func TestCreateWorkoutOrder(t *testing.T) {
	s := NewStore(fakeRef{})
	for _, id := range []string{"Push", "Pull", "Legs"} {
		if _, err := s.CreateWorkout(id, chestRows(3), 1); err != nil {
			t.Fatalf("CreateWorkout(%q): %v", id, err)
		}
	}
	if diff := cmp.Diff([]string{"Push", "Pull", "Legs"}, s.ListWorkouts()); diff != "" {
		t.Errorf("ListWorkouts mismatch (-want +got):\n%s", diff)
	}
}

// TestCreateWorkoutDuplicate verifies a live id cannot be reused, but a
// deleted one can.
func TestCreateWorkoutDuplicate(t *testing.T) {
	s := NewStore(fakeRef{})
	if _, err := s.CreateWorkout("Push", chestRows(3), 1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateWorkout("Push", chestRows(5), 2); !errors.Is(err, ErrDuplicateWorkoutID) {
		t.Fatalf("err = %v, want ErrDuplicateWorkoutID", err)
	}
	w, _ := s.Workout("Push")
	if w.Rows[0].Sets != 3 {
		t.Errorf("duplicate create overwrote the workout: sets = %d", w.Rows[0].Sets)
	}

	if err := s.DeleteWorkout("Push"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateWorkout("Push", chestRows(5), 2); err != nil {
		t.Errorf("reusing a deleted id: %v", err)
	}
}

// TestWorkoutLimit verifies the cap applies to live workouts, not to the
// number of creations so far.
func TestWorkoutLimit(t *testing.T) {
	s := NewStore(fakeRef{})
	for i := range MaxWorkouts {
		if _, err := s.CreateWorkout(fmt.Sprintf("W%d", i), chestRows(3), 1); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	if _, err := s.CreateWorkout("W-extra", chestRows(3), 1); !errors.Is(err, ErrWorkoutLimitExceeded) {
		t.Fatalf("6th create err = %v, want ErrWorkoutLimitExceeded", err)
	}

	// Churn: delete and recreate repeatedly, then try a 6th again.
	for i := range 3 {
		if err := s.DeleteWorkout("W0"); err != nil {
			t.Fatalf("churn %d delete: %v", i, err)
		}
		if _, err := s.CreateWorkout("W0", chestRows(3), 1); err != nil {
			t.Fatalf("churn %d create: %v", i, err)
		}
	}
	if _, err := s.CreateWorkout("W-extra", chestRows(3), 1); !errors.Is(err, ErrWorkoutLimitExceeded) {
		t.Fatalf("6th create after churn err = %v, want ErrWorkoutLimitExceeded", err)
	}
	if s.Len() != MaxWorkouts {
		t.Errorf("Len = %d, want %d", s.Len(), MaxWorkouts)
	}
}

// TestCreateWorkoutRejectsBadInput verifies id, session count and row checks on create.
func TestCreateWorkoutRejectsBadInput(t *testing.T) {
	s := NewStore(fakeRef{})
	if _, err := s.CreateWorkout("", chestRows(3), 1); !errors.Is(err, ErrEmptyWorkoutID) {
		t.Errorf("empty id err = %v", err)
	}
	if _, err := s.CreateWorkout("Push", chestRows(3), -1); !errors.Is(err, ErrInvalidSessionCount) {
		t.Errorf("negative sessions err = %v", err)
	}
	if _, err := s.CreateWorkout("Push", chestRows(0), 1); !errors.Is(err, ErrInvalidSetCount) {
		t.Errorf("zero sets err = %v", err)
	}
	if _, err := s.CreateWorkout("Push", chestRows(3), MaxSessionsPerWeek+1); !errors.Is(err, ErrInvalidSessionCount) {
		t.Errorf("too many sessions err = %v", err)
	}
	if _, err := s.CreateWorkout("Push", chestRows(MaxSets+1), 1); !errors.Is(err, ErrInvalidSetCount) {
		t.Errorf("too many sets err = %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("rejected creates left %d workouts", s.Len())
	}
}

// TestDeleteWorkout verifies deletion and that deleting twice is an error.
func TestDeleteWorkout(t *testing.T) {
	s := NewStore(fakeRef{})
	for _, id := range []string{"A", "B", "C"} {
		if _, err := s.CreateWorkout(id, chestRows(3), 1); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.DeleteWorkout("B"); err != nil {
		t.Fatalf("DeleteWorkout: %v", err)
	}
	if err := s.DeleteWorkout("B"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	if diff := cmp.Diff([]string{"A", "C"}, s.ListWorkouts()); diff != "" {
		t.Errorf("order after delete (-want +got):\n%s", diff)
	}
	if _, err := s.Workout("B"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Workout(B) err = %v, want ErrNotFound", err)
	}
}

// TestSetSessionsPerWeek verifies bounds and not-found handling.
func TestSetSessionsPerWeek(t *testing.T) {
	s := NewStore(fakeRef{})
	if _, err := s.CreateWorkout("Push", chestRows(3), 1); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		id      string
		n       int
		wantErr error
	}{
		{"zero allowed", "Push", 0, nil},
		{"positive", "Push", 4, nil},
		{"negative", "Push", -1, ErrInvalidSessionCount},
		{"maximum", "Push", MaxSessionsPerWeek, nil},
		{"above maximum", "Push", MaxSessionsPerWeek + 1, ErrInvalidSessionCount},
		{"missing workout", "Pull", 2, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.SetSessionsPerWeek(tt.id, tt.n)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				w, _ := s.Workout(tt.id)
				if w.SessionsPerWeek != tt.n {
					t.Errorf("SessionsPerWeek = %d, want %d", w.SessionsPerWeek, tt.n)
				}
			}
		})
	}

	w, _ := s.Workout("Push")
	if w.SessionsPerWeek != MaxSessionsPerWeek {
		t.Errorf("rejected edit changed state: SessionsPerWeek = %d, want %d", w.SessionsPerWeek, MaxSessionsPerWeek)
	}
}

// TestReplaceRowsAtomic verifies that one bad row rejects the whole set and
// the error names every offending index.
func TestReplaceRowsAtomic(t *testing.T) {
	s := NewStore(fakeRef{})
	if _, err := s.CreateWorkout("Push", chestRows(3), 1); err != nil {
		t.Fatal(err)
	}

	rows := []ExerciseRow{
		{ExerciseName: "Bench Press", Sets: 4, TargetMuscle: "Chest"},
		{ExerciseName: "", Sets: 3, TargetMuscle: "Chest"},
		{ExerciseName: "Row", Sets: 3, TargetMuscle: "Back"},
		{ExerciseName: "Fly", Sets: 0, TargetMuscle: "Chest"},
	}
	_, err := s.ReplaceRows("Push", rows)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if diff := cmp.Diff([]int{1, 3}, ve.Rows); diff != "" {
		t.Errorf("offending rows (-want +got):\n%s", diff)
	}
	if !errors.Is(err, ErrInvalidSetCount) || !errors.Is(err, ErrEmptyExerciseName) {
		t.Errorf("err = %v, want both ErrInvalidSetCount and ErrEmptyExerciseName", err)
	}
	if got := len(ve.Problems()); got != 2 {
		t.Errorf("Problems() = %d, want 2", got)
	}

	w, _ := s.Workout("Push")
	if diff := cmp.Diff(chestRows(3), w.Rows); diff != "" {
		t.Errorf("rejected edit changed rows (-want +got):\n%s", diff)
	}
}

// TestReplaceRowsUnresolvedMuscle verifies an unknown muscle is accepted and flagged.
func TestReplaceRowsUnresolvedMuscle(t *testing.T) {
	s := NewStore(fakeRef{})
	if _, err := s.CreateWorkout("Push", chestRows(3), 1); err != nil {
		t.Fatal(err)
	}
	rows := []ExerciseRow{
		{ExerciseName: "Bench Press", Sets: 3, TargetMuscle: "Chest"},
		{ExerciseName: "Mystery", Sets: 2, TargetMuscle: "Unknown"},
	}
	unresolved, err := s.ReplaceRows("Push", rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int{1}, unresolved); diff != "" {
		t.Errorf("unresolved (-want +got):\n%s", diff)
	}
	w, _ := s.Workout("Push")
	if len(w.Rows) != 2 {
		t.Errorf("rows = %d, want 2", len(w.Rows))
	}
}

// TestReplaceRowsAutofill verifies an empty muscle is filled from the catalog,
// and an empty muscle that cannot be filled is a structural error.
func TestReplaceRowsAutofill(t *testing.T) {
	s := NewStore(fakeRef{})
	if _, err := s.CreateWorkout("Push", nil, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ReplaceRows("Push", []ExerciseRow{{ExerciseName: "Bench Press", Sets: 3}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, _ := s.Workout("Push")
	if w.Rows[0].TargetMuscle != "Chest" {
		t.Errorf("TargetMuscle = %q, want Chest", w.Rows[0].TargetMuscle)
	}

	_, err := s.ReplaceRows("Push", []ExerciseRow{{ExerciseName: "Mystery", Sets: 3}})
	if !errors.Is(err, ErrEmptyTargetMuscle) {
		t.Errorf("err = %v, want ErrEmptyTargetMuscle", err)
	}
}

// TestReplaceRowsDuplicatesAllowed verifies duplicate exercise names are legal.
func TestReplaceRowsDuplicatesAllowed(t *testing.T) {
	s := NewStore(fakeRef{})
	if _, err := s.CreateWorkout("Push", nil, 1); err != nil {
		t.Fatal(err)
	}
	rows := append(chestRows(3), chestRows(3)...)
	if _, err := s.ReplaceRows("Push", rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestReplaceRowsIdempotent verifies applying the same rows twice equals applying once.
func TestReplaceRowsIdempotent(t *testing.T) {
	rows := []ExerciseRow{
		{ExerciseName: "Bench Press", Sets: 4},
		{ExerciseName: "Row", Sets: 3, TargetMuscle: "Back"},
	}

	once := NewStore(fakeRef{})
	twice := NewStore(fakeRef{})
	for _, s := range []*Store{once, twice} {
		if _, err := s.CreateWorkout("Push", chestRows(3), 2); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := once.ReplaceRows("Push", rows); err != nil {
		t.Fatal(err)
	}
	for range 2 {
		if _, err := twice.ReplaceRows("Push", rows); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff(once.Workouts(), twice.Workouts()); diff != "" {
		t.Errorf("state differs (-once +twice):\n%s", diff)
	}
}

// TestReplaceRowsNotFound verifies edits on a missing workout fail.
func TestReplaceRowsNotFound(t *testing.T) {
	s := NewStore(fakeRef{})
	if _, err := s.ReplaceRows("nope", chestRows(3)); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestSnapshotsAreCopies verifies callers cannot mutate store state through returned values.
func TestSnapshotsAreCopies(t *testing.T) {
	s := NewStore(fakeRef{})
	rows := chestRows(3)
	if _, err := s.CreateWorkout("Push", rows, 1); err != nil {
		t.Fatal(err)
	}
	rows[0].Sets = 99

	w, _ := s.Workout("Push")
	w.Rows[0].Sets = 42
	s.Workouts()[0].Rows[0].Sets = 7
	s.ListWorkouts()[0] = "changed"

	got, _ := s.Workout("Push")
	if got.Rows[0].Sets != 3 {
		t.Errorf("sets = %d, want 3", got.Rows[0].Sets)
	}
	if s.ListWorkouts()[0] != "Push" {
		t.Errorf("order mutated: %v", s.ListWorkouts())
	}
}

// TestMoveWorkout verifies explicit reordering.
func TestMoveWorkout(t *testing.T) {
	s := NewStore(fakeRef{})
	for _, id := range []string{"A", "B", "C"} {
		if _, err := s.CreateWorkout(id, chestRows(3), 1); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.MoveWorkout("C", 0); err != nil {
		t.Fatalf("MoveWorkout: %v", err)
	}
	if diff := cmp.Diff([]string{"C", "A", "B"}, s.ListWorkouts()); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	if err := s.MoveWorkout("A", 3); !errors.Is(err, ErrInvalidPosition) {
		t.Errorf("err = %v, want ErrInvalidPosition", err)
	}
	if err := s.MoveWorkout("Z", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestNewSessionStore verifies the session starts with one seeded workout.
func TestNewSessionStore(t *testing.T) {
	s := NewSessionStore(fakeRef{})
	if diff := cmp.Diff([]string{DefaultWorkoutID}, s.ListWorkouts()); diff != "" {
		t.Fatalf("workouts (-want +got):\n%s", diff)
	}
	w, _ := s.Workout(DefaultWorkoutID)
	if w.SessionsPerWeek != 2 || len(w.Rows) != len(ExampleRows()) {
		t.Errorf("default workout = %+v", w)
	}
}

// TestAddWorkout verifies the add action seeds one example row at one session a week.
func TestAddWorkout(t *testing.T) {
	s := NewSessionStore(fakeRef{})
	if err := s.AddWorkout("Workout 2"); err != nil {
		t.Fatalf("AddWorkout: %v", err)
	}
	w, _ := s.Workout("Workout 2")
	if diff := cmp.Diff(Workout{ID: "Workout 2", Rows: []ExerciseRow{ExampleRow()}, SessionsPerWeek: 1}, w); diff != "" {
		t.Errorf("added workout (-want +got):\n%s", diff)
	}
}

// TestReplaceRowsSetBounds verifies the set count is inclusive on both ends
// and that huge values are rejected instead of overflowing the weekly sum.
func TestReplaceRowsSetBounds(t *testing.T) {
	s := NewStore(fakeRef{})
	if _, err := s.CreateWorkout("Push", chestRows(3), 1); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name    string
		sets    int
		wantErr error
	}{
		{"minimum", 1, nil},
		{"maximum", MaxSets, nil},
		{"above maximum", MaxSets + 1, ErrInvalidSetCount},
		{"overflowing", math.MaxInt/2 + 1, ErrInvalidSetCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ReplaceRows("Push", chestRows(tt.sets))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
	w, _ := s.Workout("Push")
	if diff := cmp.Diff(chestRows(MaxSets), w.Rows); diff != "" {
		t.Errorf("rows (-want +got):\n%s", diff)
	}
}
