// Package api serves the game over a JSON REST interface.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/okian/legend/internal/adapters/repository"
	service "github.com/okian/legend/internal/app"
	"github.com/okian/legend/internal/domain/engine"
	"github.com/okian/legend/internal/domain/game"
	"github.com/okian/legend/internal/domain/model"
	"github.com/okian/legend/internal/domain/tally"
	"github.com/okian/legend/internal/domain/types"
	"github.com/okian/legend/pkg/logger"
	"github.com/okian/legend/pkg/metrics"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 16

// Dependencies required by HTTP handlers.
type Dependencies interface {
	NewGame(ctx context.Context, conference model.Conference) (*game.Session, error)
	Game(ctx context.Context, id string) (*game.Session, error)
	Answer(ctx context.Context, id string, in types.AnswerInput) (*game.Session, bool, error)
	Choose(ctx context.Context, id, name string) (*game.Session, error)
	Reset(ctx context.Context, id string) (*game.Session, error)
	Begin(ctx context.Context, id string, conference model.Conference) (*game.Session, error)
	Delete(ctx context.Context, id string) error

	TopPlayers(ctx context.Context, limit int) ([]types.Entry, error)
	MaxTopLimit() int
	GetStats(ctx context.Context) types.Stats
	Ping(ctx context.Context) error
}

// Server wires HTTP routes for the game API.
type Server struct {
	deps     Dependencies
	validate *validator.Validate
	logger   logger.Logger

	corsOrigins []string
	rateLimit   int
	rateWindow  time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCORS allows browser clients from origins.
func WithCORS(origins ...string) Option {
	return func(s *Server) {
		s.corsOrigins = append(s.corsOrigins, origins...)
	}
}

// WithRateLimit caps API requests per client IP. A non-positive limit
// disables limiting.
func WithRateLimit(requests int, window time.Duration) Option {
	return func(s *Server) {
		if requests > 0 && window > 0 {
			s.rateLimit = requests
			s.rateWindow = window
		}
	}
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:     deps,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns a chi router with the API, health and metrics routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(MetricsMiddleware)
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", IdempotencyHeader},
			ExposedHeaders: []string{"Location"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if s.rateLimit > 0 {
			r.Use(httprate.Limit(s.rateLimit, s.rateWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					writeError(w, http.StatusTooManyRequests, "rate_limited", nil)
				}),
			))
		}
		r.Route("/games", func(r chi.Router) {
			r.Post("/", s.handleNewGame)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetGame)
				r.Delete("/", s.handleDeleteGame)
				r.Post("/answers", s.handleAnswer)
				r.Post("/choice", s.handleChoice)
				r.Post("/reset", s.handleReset)
				r.Post("/start", s.handleBegin)
			})
		})
		r.Get("/players/top", s.handleTopPlayers)
		r.Get("/stats", s.handleStats)
	})
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decode reads a JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, op string, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// fail maps domain errors to HTTP statuses.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, game.ErrInvalidConference),
		errors.Is(err, game.ErrUnknownCandidate),
		errors.Is(err, tally.ErrInvalidLimit):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrUnknownGame), errors.Is(err, repository.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrStaleRound):
		status, code = http.StatusConflict, "stale_round"
	case errors.Is(err, game.ErrInvalidTransition),
		errors.Is(err, game.ErrAwaitingChoice),
		errors.Is(err, game.ErrNotAwaitingChoice),
		errors.Is(err, engine.ErrInvalidState):
		status, code = http.StatusConflict, "invalid_state"
	case errors.Is(err, service.ErrNotStarted):
		status, code = http.StatusServiceUnavailable, "unavailable"
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", logger.String("op", op), logger.Error(err))
		err = WrapKind(op, ErrInternal, err)
	}
	writeError(w, status, code, err)
}
