package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/rpplanner/internal/volume"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) catalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	muscles, err := h.planner.Muscles(ctx)
	if err != nil {
		return nil, err
	}
	exercises, err := h.planner.Exercises(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req, map[string]any{
		"muscles":   muscles,
		"exercises": exercises,
	})
}

func (h *handlers) report(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sid, err := h.session(ctx)
	if err != nil {
		return nil, err
	}
	workouts, err := h.planner.ListWorkouts(ctx, sid)
	if err != nil {
		return nil, err
	}
	report, err := h.planner.VolumeReport(ctx, sid, true)
	if err != nil {
		return nil, err
	}
	return jsonContents(req, map[string]any{
		"workouts": workouts,
		"muscles":  report,
	})
}

func (h *handlers) mesocycleExample(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req, volume.ExampleMesocycle())
}

func jsonContents(req mcp.ReadResourceRequest, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
