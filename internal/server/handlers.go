package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/claude/rpplanner/internal/plan"
	"github.com/claude/rpplanner/internal/planner"
	"github.com/claude/rpplanner/internal/session"
	"github.com/claude/rpplanner/internal/volume"
	"github.com/go-chi/chi/v5"
)

type createWorkoutRequest struct {
	ID              string             `json:"id"`
	Rows            []plan.ExerciseRow `json:"rows"`
	SessionsPerWeek *int               `json:"sessions_per_week"`
}

type sessionsPerWeekRequest struct {
	SessionsPerWeek *int `json:"sessions_per_week"`
}

type replaceRowsRequest struct {
	Rows []plan.ExerciseRow `json:"rows"`
}

type positionRequest struct {
	Position *int `json:"position"`
}

// editResponse is returned by edits that may leave rows with unknown muscles.
type editResponse struct {
	Workout        *planner.WorkoutDetail `json:"workout"`
	UnresolvedRows []int                  `json:"unresolved_rows"`
}

func (s *Server) handleListMuscles(w http.ResponseWriter, r *http.Request) {
	muscles, err := s.planner.Muscles(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, muscles)
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.planner.Exercises(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleExampleMesocycle(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, volume.ExampleMesocycle())
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sid, err := s.planner.CreateSession(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": sid})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.planner.DeleteSession(r.Context(), chi.URLParam(r, "sid")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	ids, err := s.planner.ListWorkouts(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var req createWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	sid := chi.URLParam(r, "sid")

	// Without rows or frequency this is the "add workout" action.
	unresolved := []int{}
	if req.Rows == nil && req.SessionsPerWeek == nil {
		if err := s.planner.AddWorkout(r.Context(), sid, req.ID); err != nil {
			s.writeError(w, err)
			return
		}
	} else {
		n := 1
		if req.SessionsPerWeek != nil {
			n = *req.SessionsPerWeek
		}
		res, err := s.planner.CreateWorkout(r.Context(), sid, plan.Workout{ID: req.ID, Rows: req.Rows, SessionsPerWeek: n})
		if err != nil {
			s.writeError(w, err)
			return
		}
		unresolved = res.UnresolvedRows
	}

	detail, err := s.planner.GetWorkout(r.Context(), sid, req.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, editResponse{Workout: detail, UnresolvedRows: unresolved})
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	wid, ok := workoutID(w, r)
	if !ok {
		return
	}
	detail, err := s.planner.GetWorkout(r.Context(), chi.URLParam(r, "sid"), wid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	wid, ok := workoutID(w, r)
	if !ok {
		return
	}
	if err := s.planner.DeleteWorkout(r.Context(), chi.URLParam(r, "sid"), wid); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetSessionsPerWeek(w http.ResponseWriter, r *http.Request) {
	wid, ok := workoutID(w, r)
	if !ok {
		return
	}
	var req sessionsPerWeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.SessionsPerWeek == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sessions_per_week is required"})
		return
	}

	sid := chi.URLParam(r, "sid")
	if err := s.planner.SetSessionsPerWeek(r.Context(), sid, wid, *req.SessionsPerWeek); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeWorkout(w, r, sid, wid)
}

func (s *Server) handleReplaceRows(w http.ResponseWriter, r *http.Request) {
	wid, ok := workoutID(w, r)
	if !ok {
		return
	}
	var req replaceRowsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	sid := chi.URLParam(r, "sid")
	res, err := s.planner.ReplaceRows(r.Context(), sid, wid, req.Rows)
	if err != nil {
		s.writeError(w, err)
		return
	}
	detail, err := s.planner.GetWorkout(r.Context(), sid, wid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, editResponse{Workout: detail, UnresolvedRows: res.UnresolvedRows})
}

func (s *Server) handleMoveWorkout(w http.ResponseWriter, r *http.Request) {
	wid, ok := workoutID(w, r)
	if !ok {
		return
	}
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Position == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "position is required"})
		return
	}

	sid := chi.URLParam(r, "sid")
	if err := s.planner.MoveWorkout(r.Context(), sid, wid, *req.Position); err != nil {
		s.writeError(w, err)
		return
	}
	ids, err := s.planner.ListWorkouts(r.Context(), sid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleWorkoutVolume(w http.ResponseWriter, r *http.Request) {
	wid, ok := workoutID(w, r)
	if !ok {
		return
	}
	detail, err := s.planner.GetWorkout(r.Context(), chi.URLParam(r, "sid"), wid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail.RowVolumes)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	all := false
	if v := r.URL.Query().Get("all"); v != "" {
		var err error
		all, err = strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "all must be a boolean"})
			return
		}
	}
	report, err := s.planner.VolumeReport(r.Context(), chi.URLParam(r, "sid"), all)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) writeWorkout(w http.ResponseWriter, r *http.Request, sid, wid string) {
	detail, err := s.planner.GetWorkout(r.Context(), sid, wid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// workoutID returns the {wid} path segment. chi matches on the raw path
// when the request carries escaped slashes, so the segment is decoded then.
func workoutID(w http.ResponseWriter, r *http.Request) (string, bool) {
	wid := chi.URLParam(r, "wid")
	if r.URL.RawPath == "" {
		return wid, true
	}
	wid, err := url.PathUnescape(wid)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout id: " + err.Error()})
		return "", false
	}
	return wid, true
}

type rowProblem struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// writeError maps planning errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *plan.ValidationError
	switch {
	case errors.As(err, &verr):
		problems := make([]rowProblem, 0, len(verr.Problems()))
		for _, p := range verr.Problems() {
			problems = append(problems, rowProblem{Index: p.Index, Error: p.Err.Error()})
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":    err.Error(),
			"rows":     verr.Rows,
			"problems": problems,
		})
	case errors.Is(err, session.ErrNotFound), errors.Is(err, plan.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, plan.ErrDuplicateWorkoutID), errors.Is(err, plan.ErrWorkoutLimitExceeded):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, plan.ErrInvalidSessionCount),
		errors.Is(err, plan.ErrInvalidPosition),
		errors.Is(err, plan.ErrEmptyWorkoutID):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, session.ErrTooManySessions):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
