package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/rpplanner/internal/metrics"
	"github.com/claude/rpplanner/internal/planner"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures optional server features.
type Options struct {
	// APIKey, when set, is required on every mutating route and on /mcp.
	APIKey string
	// Metrics and Gatherer enable request metrics and the /metrics endpoint.
	Metrics  *metrics.Manager
	Gatherer prometheus.Gatherer
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	planner *planner.Service
	opts    Options
	log     *slog.Logger
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(svc *planner.Service, opts Options, log *slog.Logger) *Server {
	s := &Server{
		planner: svc,
		opts:    opts,
		log:     log,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	if s.opts.Metrics != nil {
		s.router.Use(RequestMetrics(s.opts.Metrics))
	}
	s.router.Use(CORS)

	auth := APIKeyAuth(s.opts.APIKey)

	// Reference data
	s.router.Get("/api/v1/catalog/muscles", s.handleListMuscles)
	s.router.Get("/api/v1/catalog/exercises", s.handleListExercises)
	s.router.Get("/api/v1/mesocycle/example", s.handleExampleMesocycle)

	// Planning sessions
	s.router.Route("/api/v1/sessions", func(r chi.Router) {
		r.With(auth).Post("/", s.handleCreateSession)

		r.Route("/{sid}", func(r chi.Router) {
			r.With(auth).Delete("/", s.handleDeleteSession)
			r.Get("/report", s.handleReport)

			r.Get("/workouts", s.handleListWorkouts)
			r.With(auth).Post("/workouts", s.handleCreateWorkout)
			r.Get("/workouts/{wid}", s.handleGetWorkout)
			r.With(auth).Delete("/workouts/{wid}", s.handleDeleteWorkout)
			r.With(auth).Put("/workouts/{wid}/sessions-per-week", s.handleSetSessionsPerWeek)
			r.With(auth).Put("/workouts/{wid}/rows", s.handleReplaceRows)
			r.With(auth).Put("/workouts/{wid}/position", s.handleMoveWorkout)
			r.Get("/workouts/{wid}/volume", s.handleWorkoutVolume)
		})
	})

	if s.opts.Gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
}

// SetMCP mounts an MCP transport handler at /mcp behind the API key.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", APIKeyAuth(s.opts.APIKey)(h))
}
