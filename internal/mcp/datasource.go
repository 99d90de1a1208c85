package mcp

import (
	"context"

	"github.com/claude/rpplanner/internal/catalog"
	"github.com/claude/rpplanner/internal/plan"
	"github.com/claude/rpplanner/internal/planner"
	"github.com/claude/rpplanner/internal/volume"
)

// Planner abstracts the planning operations behind the MCP tools. Both
// *planner.Service (in-process) and HTTPClient (remote via REST API)
// satisfy this interface.
type Planner interface {
	EnsureSession(ctx context.Context, sid string) error
	ListWorkouts(ctx context.Context, sid string) ([]string, error)
	GetWorkout(ctx context.Context, sid, id string) (*planner.WorkoutDetail, error)
	CreateWorkout(ctx context.Context, sid string, w plan.Workout) (*planner.EditResult, error)
	DeleteWorkout(ctx context.Context, sid, id string) error
	SetSessionsPerWeek(ctx context.Context, sid, id string, n int) error
	ReplaceRows(ctx context.Context, sid, id string, rows []plan.ExerciseRow) (*planner.EditResult, error)
	VolumeReport(ctx context.Context, sid string, includeAllMuscles bool) ([]volume.MuscleVolume, error)
	Muscles(ctx context.Context) ([]catalog.MuscleReference, error)
	Exercises(ctx context.Context) ([]catalog.ExerciseEntry, error)
}

// Compile-time check: *planner.Service satisfies Planner.
var _ Planner = (*planner.Service)(nil)
