package plan

// DefaultWorkoutID names the workout every new session starts with.
const DefaultWorkoutID = "Workout 1"

// defaultSessionsPerWeek matches the planner's initial frequency input.
const defaultSessionsPerWeek = 2

// ExampleRow seeds a workout created with the "add workout" action.
func ExampleRow() ExerciseRow {
	return ExerciseRow{ExerciseName: "Chest press", Sets: 3, TargetMuscle: "Chest"}
}

// ExampleRows is the illustrative table the default workout starts with.
func ExampleRows() []ExerciseRow {
	return []ExerciseRow{
		{ExerciseName: "T-Bar row", Sets: 3, TargetMuscle: "Back"},
		{ExerciseName: "Lat Pulldown", Sets: 3, TargetMuscle: "Back"},
		{ExerciseName: "Face Pull", Sets: 4, TargetMuscle: "Rear Delts"},
		{ExerciseName: "Lateral Raise", Sets: 3, TargetMuscle: "Side Delts"},
		{ExerciseName: "Upright row", Sets: 3, TargetMuscle: "Side Delts"},
		{ExerciseName: "OH Press", Sets: 3, TargetMuscle: "Front Delts"},
		{ExerciseName: "Chest press", Sets: 3, TargetMuscle: "Chest"},
	}
}

// NewSessionStore returns a store holding the single default workout.
func NewSessionStore(ref Reference) *Store {
	s := NewStore(ref)
	// The example rows are structurally valid and the store is empty, so
	// this cannot fail.
	if _, err := s.CreateWorkout(DefaultWorkoutID, ExampleRows(), defaultSessionsPerWeek); err != nil {
		panic("plan: seeding default workout: " + err.Error())
	}
	return s
}
