package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/rpplanner/internal/planner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const sessionIDKey contextKey = iota

// SessionIDFromContext returns the planning session for a request: an
// explicit WithSessionID value, else the MCP client session, else the
// default session.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok && id != "" {
		return id
	}
	if cs := server.ClientSessionFromContext(ctx); cs != nil && cs.SessionID() != "" {
		return cs.SessionID()
	}
	return planner.DefaultSession
}

// WithSessionID returns a context bound to the given planning session.
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sid)
}

// New creates an MCP server with all tools and resources registered.
func New(p Planner, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("RP Planner", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Hypertrophy volume planner. Build up to 5 workouts of exercise rows (exercise, sets, target muscle) with a weekly frequency, then read the weekly sets per muscle classified against MEV/MRV landmarks. Edits are scoped to the current planning session."),
	)

	h := &handlers{planner: p, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolCreateWorkout, Handler: h.createWorkout},
		server.ServerTool{Tool: toolDeleteWorkout, Handler: h.deleteWorkout},
		server.ServerTool{Tool: toolSetSessionsPerWeek, Handler: h.setSessionsPerWeek},
		server.ServerTool{Tool: toolReplaceRows, Handler: h.replaceRows},
		server.ServerTool{Tool: toolGetVolumeReport, Handler: h.getVolumeReport},
		server.ServerTool{Tool: toolListMuscles, Handler: h.listMuscles},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCatalog, Handler: h.catalog},
		server.ServerResource{Resource: resReport, Handler: h.report},
		server.ServerResource{Resource: resMesocycle, Handler: h.mesocycleExample},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	planner Planner
	log     *slog.Logger
}

// session resolves the request's planning session, creating it on first use.
func (h *handlers) session(ctx context.Context) (string, error) {
	sid := SessionIDFromContext(ctx)
	if err := h.planner.EnsureSession(ctx, sid); err != nil {
		return "", err
	}
	return sid, nil
}

// --- Resource definitions ---

var resCatalog = mcp.NewResource(
	"rpplanner://catalog",
	"Reference Catalog",
	mcp.WithResourceDescription("Muscle groups with MEV/MRV weekly set landmarks and the known exercises with their target muscle"),
	mcp.WithMIMEType("application/json"),
)

var resReport = mcp.NewResource(
	"rpplanner://report",
	"Weekly Volume Report",
	mcp.WithResourceDescription("Weekly sets per muscle for the current session, every catalog muscle included"),
	mcp.WithMIMEType("application/json"),
)

var resMesocycle = mcp.NewResource(
	"rpplanner://mesocycle_example",
	"Example Mesocycle",
	mcp.WithResourceDescription("Illustrative weekly set ramp from MEV to MRV followed by a deload week"),
	mcp.WithMIMEType("application/json"),
)
