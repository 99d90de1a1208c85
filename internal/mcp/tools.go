package mcp

import (
	"context"
	"math"

	"github.com/claude/rpplanner/internal/plan"
	"github.com/mark3labs/mcp-go/mcp"
)

var rowSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"exercise_name": map[string]any{"type": "string", "description": "Exercise name, e.g. 'Lat Pulldown'"},
		"sets":          map[string]any{"type": "integer", "minimum": 1, "maximum": plan.MaxSets, "description": "Sets per session"},
		"target_muscle": map[string]any{"type": "string", "description": "Muscle group as named in the catalog. May be omitted for known exercises."},
	},
	"required": []string{"exercise_name", "sets"},
}

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List the workout ids of the current session in display order."),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one workout: its rows, sessions per week, and each row's weekly sets and share of the muscle's MEV/MRV."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id")),
)

var toolCreateWorkout = mcp.NewTool("create_workout",
	mcp.WithDescription("Create a workout. At most 5 workouts may exist. Without rows the workout starts with one example row."),
	mcp.WithString("id", mcp.Required(), mcp.Description("New, unique workout id (e.g. 'Push', 'Workout 2')")),
	mcp.WithNumber("sessions_per_week", mcp.Description("How many times per week the workout is done, a whole number. Defaults to 1."), mcp.Min(0), mcp.Max(plan.MaxSessionsPerWeek)),
	mcp.WithArray("rows", mcp.Description("Exercise rows"), mcp.Items(rowSchema)),
)

var toolDeleteWorkout = mcp.NewTool("delete_workout",
	mcp.WithDescription("Delete a workout and all its rows."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id")),
)

var toolSetSessionsPerWeek = mcp.NewTool("set_sessions_per_week",
	mcp.WithDescription("Set how many times per week a workout is done. Zero is allowed."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id")),
	mcp.WithNumber("sessions_per_week", mcp.Required(), mcp.Description("Non-negative whole number"), mcp.Min(0), mcp.Max(plan.MaxSessionsPerWeek)),
)

var toolReplaceRows = mcp.NewTool("replace_rows",
	mcp.WithDescription("Replace all rows of a workout. Either every row is valid and the new list is saved, or nothing changes and the offending row indices are reported. Rows whose muscle is not in the catalog are saved and listed as unresolved."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout id")),
	mcp.WithArray("rows", mcp.Required(), mcp.Description("The complete new row list"), mcp.Items(rowSchema)),
)

var toolGetVolumeReport = mcp.NewTool("get_volume_report",
	mcp.WithDescription("Weekly sets per target muscle (sets x sessions per week, summed over workouts) with MEV/MRV and a status of Undertraining, Productive or Overtraining."),
	mcp.WithBoolean("include_all_muscles", mcp.Description("List every catalog muscle, including untrained ones. Defaults to false.")),
)

var toolListMuscles = mcp.NewTool("list_muscles",
	mcp.WithDescription("List catalog muscle groups with their MEV and MRV weekly set landmarks."),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List catalog exercises with their target muscle."),
)

func (h *handlers) listWorkouts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sid, err := h.session(ctx)
	if err != nil {
		return mcp.NewToolResultError("session unavailable: " + err.Error()), nil
	}
	ids, err := h.planner.ListWorkouts(ctx, sid)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ids)
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	sid, err := h.session(ctx)
	if err != nil {
		return mcp.NewToolResultError("session unavailable: " + err.Error()), nil
	}
	w, err := h.planner.GetWorkout(ctx, sid, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(w)
}

func (h *handlers) createWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		ID              string             `json:"id"`
		SessionsPerWeek *int               `json:"sessions_per_week"`
		Rows            []plan.ExerciseRow `json:"rows"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	if args.ID == "" {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	if args.Rows == nil {
		args.Rows = []plan.ExerciseRow{plan.ExampleRow()}
	}
	n := 1
	if args.SessionsPerWeek != nil {
		n = *args.SessionsPerWeek
	}

	sid, err := h.session(ctx)
	if err != nil {
		return mcp.NewToolResultError("session unavailable: " + err.Error()), nil
	}
	res, err := h.planner.CreateWorkout(ctx, sid, plan.Workout{ID: args.ID, Rows: args.Rows, SessionsPerWeek: n})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (h *handlers) deleteWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	sid, err := h.session(ctx)
	if err != nil {
		return mcp.NewToolResultError("session unavailable: " + err.Error()), nil
	}
	if err := h.planner.DeleteWorkout(ctx, sid, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("deleted " + id), nil
}

func (h *handlers) setSessionsPerWeek(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	v, err := req.RequireFloat("sessions_per_week")
	if err != nil {
		return mcp.NewToolResultError("sessions_per_week parameter is required"), nil
	}
	n, ok := wholeNumber(v)
	if !ok {
		return mcp.NewToolResultError("sessions_per_week must be a whole number"), nil
	}
	sid, err := h.session(ctx)
	if err != nil {
		return mcp.NewToolResultError("session unavailable: " + err.Error()), nil
	}
	if err := h.planner.SetSessionsPerWeek(ctx, sid, id, n); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	w, err := h.planner.GetWorkout(ctx, sid, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(w)
}

func (h *handlers) replaceRows(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		ID   string             `json:"id"`
		Rows []plan.ExerciseRow `json:"rows"`
	}
	if err := req.BindArguments(&args); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
	}
	if args.ID == "" {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	sid, err := h.session(ctx)
	if err != nil {
		return mcp.NewToolResultError("session unavailable: " + err.Error()), nil
	}
	res, err := h.planner.ReplaceRows(ctx, sid, args.ID, args.Rows)
	if err != nil {
		h.log.Debug("mcp replace_rows rejected", "session", sid, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (h *handlers) getVolumeReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sid, err := h.session(ctx)
	if err != nil {
		return mcp.NewToolResultError("session unavailable: " + err.Error()), nil
	}
	report, err := h.planner.VolumeReport(ctx, sid, req.GetBool("include_all_muscles", false))
	if err != nil {
		h.log.Error("mcp get_volume_report", "error", err)
		return mcp.NewToolResultError("report failed: " + err.Error()), nil
	}
	return jsonResult(report)
}

func (h *handlers) listMuscles(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	muscles, err := h.planner.Muscles(ctx)
	if err != nil {
		h.log.Error("mcp list_muscles", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(muscles)
}

func (h *handlers) listExercises(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.planner.Exercises(ctx)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(exercises)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// wholeNumber converts a JSON number to int, rejecting fractions and values
// no session count could reach.
func wholeNumber(v float64) (int, bool) {
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}
