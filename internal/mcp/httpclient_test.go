package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/claude/rpplanner/internal/catalog"
	"github.com/claude/rpplanner/internal/plan"
	"github.com/claude/rpplanner/internal/planner"
	"github.com/claude/rpplanner/internal/server"
	"github.com/claude/rpplanner/internal/session"
	"github.com/google/go-cmp/cmp"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.Method+" "+r.URL.Path]
		if !ok {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// newPlannerServer runs the real REST API in-process.
func newPlannerServer(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	ts, _ := newPlannerServerWithSessions(t, apiKey, session.Options{})
	return ts
}

func newPlannerServerWithSessions(t *testing.T, apiKey string, opts session.Options) (*httptest.Server, *session.Manager) {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr := session.NewManager(cat, opts, log)
	svc := planner.New(cat, mgr, nil, log)
	ts := httptest.NewServer(server.New(svc, server.Options{APIKey: apiKey}, log))
	t.Cleanup(ts.Close)
	return ts, mgr
}

// TestHTTPClientRoundTrip verifies every Planner method against the real API.
func TestHTTPClientRoundTrip(t *testing.T) {
	ts := newPlannerServer(t, "k")
	c := NewHTTPClient(ts.URL+"/", "k")
	ctx := context.Background()

	if err := c.EnsureSession(ctx, "ignored"); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	first := c.sid
	if err := c.EnsureSession(ctx, "ignored"); err != nil || c.sid != first {
		t.Fatalf("second EnsureSession created a new session: %v", err)
	}

	res, err := c.CreateWorkout(ctx, "", plan.Workout{ID: "Legs / Glutes", SessionsPerWeek: 2, Rows: []plan.ExerciseRow{
		{ExerciseName: "Back Squat", Sets: 4},
		{ExerciseName: "Neck Curl", Sets: 1, TargetMuscle: "Neck"},
	}})
	if err != nil {
		t.Fatalf("CreateWorkout: %v", err)
	}
	if diff := cmp.Diff([]int{1}, res.UnresolvedRows); diff != "" {
		t.Errorf("unresolved (-want +got):\n%s", diff)
	}

	ids, err := c.ListWorkouts(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{plan.DefaultWorkoutID, "Legs / Glutes"}, ids); diff != "" {
		t.Errorf("workouts (-want +got):\n%s", diff)
	}

	if err := c.SetSessionsPerWeek(ctx, "", "Legs / Glutes", 3); err != nil {
		t.Fatal(err)
	}
	w, err := c.GetWorkout(ctx, "", "Legs / Glutes")
	if err != nil {
		t.Fatal(err)
	}
	if w.SessionsPerWeek != 3 || w.Rows[0].TargetMuscle != "Quads" || w.RowVolumes[0].WeeklySets != 12 {
		t.Errorf("workout = %+v", w)
	}

	if _, err := c.ReplaceRows(ctx, "", "Legs / Glutes", []plan.ExerciseRow{{ExerciseName: "Back Squat", Sets: 0}}); err == nil ||
		!strings.Contains(err.Error(), "HTTP 400") {
		t.Errorf("ReplaceRows err = %v, want HTTP 400", err)
	}

	report, err := c.VolumeReport(ctx, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(report) != 15 {
		t.Errorf("report rows = %d, want 14 catalog muscles plus Neck", len(report))
	}

	if err := c.DeleteWorkout(ctx, "", "Legs / Glutes"); err != nil {
		t.Fatal(err)
	}
	if err := c.DeleteWorkout(ctx, "", "Legs / Glutes"); err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("second delete err = %v, want HTTP 404", err)
	}
	if c.sid != first {
		t.Errorf("missing workout replaced the session")
	}

	muscles, err := c.Muscles(ctx)
	if err != nil || len(muscles) != 14 {
		t.Errorf("Muscles = %d, %v", len(muscles), err)
	}
	exercises, err := c.Exercises(ctx)
	if err != nil || len(exercises) == 0 {
		t.Errorf("Exercises = %d, %v", len(exercises), err)
	}
}

// TestHTTPClientAPIKey verifies a wrong key surfaces the server's message.
func TestHTTPClientAPIKey(t *testing.T) {
	ts := newPlannerServer(t, "k")
	err := NewHTTPClient(ts.URL, "wrong").EnsureSession(context.Background(), "")
	if err == nil || !strings.Contains(err.Error(), "invalid API key") {
		t.Errorf("err = %v, want invalid API key", err)
	}
}

// TestHTTPClientServerError verifies a non-JSON error body is still reported.
func TestHTTPClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"GET /api/v1/catalog/muscles": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		},
		"GET /api/v1/catalog/exercises": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, http.StatusOK, []catalog.ExerciseEntry{{ExerciseName: "Dip", TargetMuscle: "Triceps"}})
		},
	})
	c := NewHTTPClient(ts.URL, "")

	if _, err := c.Muscles(context.Background()); err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("err = %v, want 502", err)
	}
	exercises, err := c.Exercises(context.Background())
	if err != nil || len(exercises) != 1 || exercises[0].ExerciseName != "Dip" {
		t.Errorf("Exercises = %+v, %v", exercises, err)
	}
}

// TestHTTPClientRecreatesExpiredSession verifies the client starts a new
// remote session when the server's idle sweep has dropped the old one.
func TestHTTPClientRecreatesExpiredSession(t *testing.T) {
	ts, mgr := newPlannerServerWithSessions(t, "", session.Options{IdleTimeout: time.Nanosecond})
	c := NewHTTPClient(ts.URL, "")
	ctx := context.Background()

	if err := c.EnsureSession(ctx, ""); err != nil {
		t.Fatal(err)
	}
	expired := c.sid
	time.Sleep(time.Millisecond)
	if n := mgr.Sweep(); n != 1 {
		t.Fatalf("Sweep removed %d sessions, want 1", n)
	}

	if err := c.EnsureSession(ctx, ""); err != nil {
		t.Fatal(err)
	}
	ids, err := c.ListWorkouts(ctx, "")
	if err != nil {
		t.Fatalf("ListWorkouts after expiry: %v", err)
	}
	if diff := cmp.Diff([]string{plan.DefaultWorkoutID}, ids); diff != "" {
		t.Errorf("workouts (-want +got):\n%s", diff)
	}
	if c.sid == "" || c.sid == expired {
		t.Errorf("sid = %q, want a new session", c.sid)
	}
}

// TestHTTPClientRetriesOnce verifies a session that keeps vanishing is
// reported instead of retried forever.
func TestHTTPClientRetriesOnce(t *testing.T) {
	var created atomic.Int32
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"POST /api/v1/sessions": func(w http.ResponseWriter, r *http.Request) {
			created.Add(1)
			writeTestJSON(t, w, http.StatusCreated, map[string]string{"id": "s"})
		},
		"GET /api/v1/sessions/s/workouts": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, http.StatusNotFound, map[string]string{"error": "session not found: s"})
		},
	})
	c := NewHTTPClient(ts.URL, "")

	_, err := c.ListWorkouts(context.Background(), "")
	if !sessionGone(err) {
		t.Fatalf("err = %v, want session not found", err)
	}
	if n := created.Load(); n != 2 {
		t.Errorf("sessions created = %d, want 2", n)
	}
}
