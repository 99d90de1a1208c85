package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/claude/rpplanner/internal/catalog"
	"github.com/claude/rpplanner/internal/plan"
	"github.com/claude/rpplanner/internal/planner"
	"github.com/claude/rpplanner/internal/session"
	"github.com/claude/rpplanner/internal/volume"
)

// HTTPClient implements Planner by calling the rpplanner REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// the planning sessions live on the remote server (accessed over Tailscale).
// All MCP sessions of one client share a single remote planning session,
// which is recreated if the server expires it.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu  sync.Mutex
	sid string
}

// Compile-time check: HTTPClient satisfies Planner.
var _ Planner = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. apiKey
// may be empty when the server does not require one.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is an error reply from the rpplanner API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// sessionGone reports whether err says the remote planning session no
// longer exists, e.g. after the server's idle sweep.
func sessionGone(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		apiErr.Status == http.StatusNotFound &&
		strings.HasPrefix(apiErr.Message, session.ErrNotFound.Error())
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("httpclient: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
		}
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

// EnsureSession creates the remote planning session on first use. The
// local session id is ignored.
func (c *HTTPClient) EnsureSession(ctx context.Context, _ string) error {
	_, err := c.remoteSession(ctx)
	return err
}

func (c *HTTPClient) remoteSession(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sid != "" {
		return c.sid, nil
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/sessions", nil, &out); err != nil {
		return "", err
	}
	c.sid = out.ID
	return c.sid, nil
}

// forgetSession drops sid so the next call creates a fresh session. A
// concurrent call may already have replaced it.
func (c *HTTPClient) forgetSession(sid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sid == sid {
		c.sid = ""
	}
}

// inSession runs fn with the remote session's base path. If the server has
// expired the session, a new one is created and fn runs once more.
func (c *HTTPClient) inSession(ctx context.Context, fn func(base string) error) error {
	for attempt := 0; ; attempt++ {
		sid, err := c.remoteSession(ctx)
		if err != nil {
			return err
		}
		err = fn("/api/v1/sessions/" + url.PathEscape(sid))
		if attempt > 0 || !sessionGone(err) {
			return err
		}
		c.forgetSession(sid)
	}
}

func workoutPath(base, id string) string {
	return base + "/workouts/" + url.PathEscape(id)
}

func (c *HTTPClient) ListWorkouts(ctx context.Context, _ string) ([]string, error) {
	var ids []string
	err := c.inSession(ctx, func(base string) error {
		return c.do(ctx, http.MethodGet, base+"/workouts", nil, &ids)
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *HTTPClient) GetWorkout(ctx context.Context, _ string, id string) (*planner.WorkoutDetail, error) {
	var w planner.WorkoutDetail
	err := c.inSession(ctx, func(base string) error {
		return c.do(ctx, http.MethodGet, workoutPath(base, id), nil, &w)
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// editResponse mirrors the server's reply to row-changing edits.
type editResponse struct {
	UnresolvedRows []int `json:"unresolved_rows"`
}

func (c *HTTPClient) CreateWorkout(ctx context.Context, _ string, w plan.Workout) (*planner.EditResult, error) {
	rows := w.Rows
	if rows == nil {
		rows = []plan.ExerciseRow{}
	}
	in := map[string]any{"id": w.ID, "rows": rows, "sessions_per_week": w.SessionsPerWeek}
	var out editResponse
	err := c.inSession(ctx, func(base string) error {
		return c.do(ctx, http.MethodPost, base+"/workouts", in, &out)
	})
	if err != nil {
		return nil, err
	}
	return &planner.EditResult{UnresolvedRows: out.UnresolvedRows}, nil
}

func (c *HTTPClient) DeleteWorkout(ctx context.Context, _ string, id string) error {
	return c.inSession(ctx, func(base string) error {
		return c.do(ctx, http.MethodDelete, workoutPath(base, id), nil, nil)
	})
}

func (c *HTTPClient) SetSessionsPerWeek(ctx context.Context, _ string, id string, n int) error {
	return c.inSession(ctx, func(base string) error {
		return c.do(ctx, http.MethodPut, workoutPath(base, id)+"/sessions-per-week", map[string]int{"sessions_per_week": n}, nil)
	})
}

func (c *HTTPClient) ReplaceRows(ctx context.Context, _ string, id string, rows []plan.ExerciseRow) (*planner.EditResult, error) {
	if rows == nil {
		rows = []plan.ExerciseRow{}
	}
	var out editResponse
	err := c.inSession(ctx, func(base string) error {
		return c.do(ctx, http.MethodPut, workoutPath(base, id)+"/rows", map[string]any{"rows": rows}, &out)
	})
	if err != nil {
		return nil, err
	}
	return &planner.EditResult{UnresolvedRows: out.UnresolvedRows}, nil
}

func (c *HTTPClient) VolumeReport(ctx context.Context, _ string, includeAllMuscles bool) ([]volume.MuscleVolume, error) {
	var report []volume.MuscleVolume
	err := c.inSession(ctx, func(base string) error {
		return c.do(ctx, http.MethodGet, base+"/report?all="+strconv.FormatBool(includeAllMuscles), nil, &report)
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (c *HTTPClient) Muscles(ctx context.Context) ([]catalog.MuscleReference, error) {
	var muscles []catalog.MuscleReference
	if err := c.do(ctx, http.MethodGet, "/api/v1/catalog/muscles", nil, &muscles); err != nil {
		return nil, err
	}
	return muscles, nil
}

func (c *HTTPClient) Exercises(ctx context.Context) ([]catalog.ExerciseEntry, error) {
	var exercises []catalog.ExerciseEntry
	if err := c.do(ctx, http.MethodGet, "/api/v1/catalog/exercises", nil, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}
