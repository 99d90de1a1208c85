// Package planner exposes the session-scoped planning operations shared by
// the HTTP and MCP adapters.
package planner

import (
	"context"
	"log/slog"
	"time"

	"github.com/claude/rpplanner/internal/catalog"
	"github.com/claude/rpplanner/internal/metrics"
	"github.com/claude/rpplanner/internal/plan"
	"github.com/claude/rpplanner/internal/session"
	"github.com/claude/rpplanner/internal/volume"
)

// DefaultSession names the session used when a caller supplies none.
const DefaultSession = "default"

// WorkoutDetail is a workout together with each row's weekly progress.
type WorkoutDetail struct {
	plan.Workout
	RowVolumes []volume.RowVolume `json:"row_volumes"`
}

// EditResult lists accepted rows whose target muscle the catalog does not know.
type EditResult struct {
	UnresolvedRows []int `json:"unresolved_rows"`
}

func newEditResult(unresolved []int) *EditResult {
	if unresolved == nil {
		unresolved = []int{}
	}
	return &EditResult{UnresolvedRows: unresolved}
}

// Service binds the catalog to the live planning sessions.
type Service struct {
	catalog  *catalog.Catalog
	sessions *session.Manager
	metrics  *metrics.Manager
	log      *slog.Logger
}

// New creates a Service. m may be nil when metrics are not exported.
func New(cat *catalog.Catalog, sessions *session.Manager, m *metrics.Manager, log *slog.Logger) *Service {
	return &Service{catalog: cat, sessions: sessions, metrics: m, log: log}
}

func (s *Service) edit(op, sid string, err error) {
	if s.metrics != nil {
		s.metrics.Edit(op, err)
	}
	if err != nil {
		s.log.Debug("edit rejected", "op", op, "session", sid, "error", err)
	}
}

// Catalog returns the reference catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// CreateSession starts a session holding the default workout.
func (s *Service) CreateSession(_ context.Context) (string, error) {
	return s.sessions.Create()
}

// EnsureSession creates sid unless it already exists.
func (s *Service) EnsureSession(_ context.Context, sid string) error {
	return s.sessions.Ensure(sid)
}

// DeleteSession discards a session and its workouts.
func (s *Service) DeleteSession(_ context.Context, sid string) error {
	return s.sessions.Delete(sid)
}

// Muscles returns the catalog's muscle references in catalog order.
func (s *Service) Muscles(_ context.Context) ([]catalog.MuscleReference, error) {
	return s.catalog.MuscleReferences(), nil
}

// Exercises returns the catalog's known exercises.
func (s *Service) Exercises(_ context.Context) ([]catalog.ExerciseEntry, error) {
	return s.catalog.Exercises(), nil
}

// ListWorkouts returns the session's workout ids in display order.
func (s *Service) ListWorkouts(_ context.Context, sid string) ([]string, error) {
	var ids []string
	err := s.sessions.Do(sid, func(st *plan.Store) error {
		ids = st.ListWorkouts()
		if ids == nil {
			ids = []string{}
		}
		return nil
	})
	return ids, err
}

// GetWorkout returns one workout with per-row volume.
func (s *Service) GetWorkout(_ context.Context, sid, id string) (*WorkoutDetail, error) {
	var w plan.Workout
	err := s.sessions.Do(sid, func(st *plan.Store) error {
		var err error
		w, err = st.Workout(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &WorkoutDetail{Workout: w, RowVolumes: volume.RowVolumes(w, s.catalog)}, nil
}

// CreateWorkout adds a workout with explicit rows.
func (s *Service) CreateWorkout(_ context.Context, sid string, w plan.Workout) (*EditResult, error) {
	var unresolved []int
	err := s.sessions.Do(sid, func(st *plan.Store) error {
		var err error
		unresolved, err = st.CreateWorkout(w.ID, w.Rows, w.SessionsPerWeek)
		return err
	})
	s.edit("create_workout", sid, err)
	if err != nil {
		return nil, err
	}
	return newEditResult(unresolved), nil
}

// AddWorkout adds a workout seeded with the example row.
func (s *Service) AddWorkout(_ context.Context, sid, id string) error {
	err := s.sessions.Do(sid, func(st *plan.Store) error { return st.AddWorkout(id) })
	s.edit("add_workout", sid, err)
	return err
}

// DeleteWorkout removes a workout.
func (s *Service) DeleteWorkout(_ context.Context, sid, id string) error {
	err := s.sessions.Do(sid, func(st *plan.Store) error { return st.DeleteWorkout(id) })
	s.edit("delete_workout", sid, err)
	return err
}

// SetSessionsPerWeek changes a workout's weekly frequency.
func (s *Service) SetSessionsPerWeek(_ context.Context, sid, id string, n int) error {
	err := s.sessions.Do(sid, func(st *plan.Store) error { return st.SetSessionsPerWeek(id, n) })
	s.edit("set_sessions_per_week", sid, err)
	return err
}

// ReplaceRows swaps a workout's rows atomically.
func (s *Service) ReplaceRows(_ context.Context, sid, id string, rows []plan.ExerciseRow) (*EditResult, error) {
	var unresolved []int
	err := s.sessions.Do(sid, func(st *plan.Store) error {
		var err error
		unresolved, err = st.ReplaceRows(id, rows)
		return err
	})
	s.edit("replace_rows", sid, err)
	if err != nil {
		return nil, err
	}
	return newEditResult(unresolved), nil
}

// MoveWorkout changes a workout's display position.
func (s *Service) MoveWorkout(_ context.Context, sid, id string, position int) error {
	err := s.sessions.Do(sid, func(st *plan.Store) error { return st.MoveWorkout(id, position) })
	s.edit("move_workout", sid, err)
	return err
}

// VolumeReport computes the weekly volume report for a session.
func (s *Service) VolumeReport(_ context.Context, sid string, includeAllMuscles bool) ([]volume.MuscleVolume, error) {
	start := time.Now()
	var report []volume.MuscleVolume
	err := s.sessions.Do(sid, func(st *plan.Store) error {
		report = volume.ComputeReport(st, s.catalog, includeAllMuscles)
		if report == nil {
			report = []volume.MuscleVolume{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.HistReportDuration.Observe(time.Since(start).Seconds())
	}
	return report, nil
}
