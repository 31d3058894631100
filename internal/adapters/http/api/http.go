// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	json "github.com/goccy/go-json"

	"github.com/okian/dkp/internal/adapters/http/swagger"
	"github.com/okian/dkp/internal/adapters/ingest"
	"github.com/okian/dkp/internal/adapters/repository"
	"github.com/okian/dkp/internal/adapters/worker"
	service "github.com/okian/dkp/internal/app"
	"github.com/okian/dkp/internal/domain/aggregate"
	"github.com/okian/dkp/internal/domain/compare"
	"github.com/okian/dkp/internal/domain/profile"
	"github.com/okian/dkp/internal/domain/roster"
	"github.com/okian/dkp/internal/domain/scoring"
	"github.com/okian/dkp/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	DefaultSettings() scoring.Config

	// Compute scores two exports without storing them.
	Compute(ctx context.Context, startCSV, endCSV string, cfg scoring.Config) (service.Analysis, error)

	// Profile lifecycle.
	SaveProfile(ctx context.Context, name, startCSV, endCSV string, cfg scoring.Config) (profile.Profile, error)
	RecomputeAll(ctx context.Context, override *scoring.Config) ([]worker.Result, error)
	ListProfiles(ctx context.Context) ([]profile.Info, error)
	GetProfile(ctx context.Context, name string) (profile.Profile, error)
	DeleteProfile(ctx context.Context, name string) error

	// Read views over a stored profile.
	Summary(ctx context.Context, name string) (aggregate.Summary, error)
	Quadrants(ctx context.Context, name string) (service.QuadrantView, error)
	Fighters(ctx context.Context, name string) ([]roster.Ranked, error)
	ComparePlayers(ctx context.Context, name string, ids []string) (compare.PlayerComparison, error)
	CompareKingdoms(ctx context.Context, nameA, nameB string) (compare.KingdomComparison, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps           Dependencies
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	maxUploadBytes int64
	corsOrigins    []string
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:           deps,
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		maxUploadBytes: defaultMaxUploadBytes,
		corsOrigins:    []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	return s
}

// Handler builds the router with middleware and every route attached.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	swagger.Register(r)

	r.Route("/api", func(r chi.Router) {
		r.Post("/compute", MetricsMiddleware(s.handleCompute, "compute"))

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", MetricsMiddleware(s.handleListProfiles, "profiles_list"))
			r.Post("/", MetricsMiddleware(s.handleSaveProfile, "profiles_save"))
			r.Post("/recompute", MetricsMiddleware(s.handleRecomputeAll, "profiles_recompute"))

			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", MetricsMiddleware(s.handleGetProfile, "profile"))
				r.Delete("/", MetricsMiddleware(s.handleDeleteProfile, "profile_delete"))
				r.Get("/summary", MetricsMiddleware(s.handleSummary, "profile_summary"))
				r.Get("/quadrants", MetricsMiddleware(s.handleQuadrants, "profile_quadrants"))
				r.Get("/fighters", MetricsMiddleware(s.handleFighters, "profile_fighters"))
				r.Get("/compare", MetricsMiddleware(s.handleComparePlayers, "profile_compare"))
			})
		})

		r.Get("/kingdoms/compare", MetricsMiddleware(s.handleCompareKingdoms, "kingdoms_compare"))
	})

	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before touching the response so an encoding failure
// still reaches the client as a 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Code: "internal_error", Message: "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps err onto a status and error code.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classifyError(err)
	writeError(w, status, code, err)
}

func classifyError(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, ingest.ErrMissingColumns):
		return http.StatusBadRequest, "missing_columns"
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, compare.ErrUnknownPlayer):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrMissingName),
		errors.Is(err, ingest.ErrEmptySnapshot),
		errors.Is(err, ingest.ErrMalformed),
		errors.Is(err, ingest.ErrTooManyRows),
		errors.Is(err, profile.ErrInvalidName),
		errors.Is(err, compare.ErrNoPlayers),
		errors.Is(err, compare.ErrTooManyPlayers),
		errors.Is(err, service.ErrSnapshotsRequired),
		errors.Is(err, service.ErrNothingToRecompute):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeBody reads at most maxUploadBytes and unmarshals JSON into v.
// An empty body leaves v untouched.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUploadBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}

// nameParam returns the unescaped {name} path segment.
func nameParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "name")
	name, err := url.PathUnescape(raw)
	if err != nil || name == "" {
		return "", ErrMissingName
	}
	return name, nil
}
