package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"promptreel/internal/config"
	"promptreel/internal/jobs"
	"promptreel/internal/logging"
	"promptreel/internal/services"
	"promptreel/internal/workflow"
)

// JobCreator accepts new jobs and reports workflow state. *workflow.Manager
// satisfies it.
type JobCreator interface {
	Create(ctx context.Context, prompt string) (*jobs.Job, error)
	Status(ctx context.Context) workflow.StatusSummary
}

// JobReader is the read side of the job repository.
type JobReader interface {
	FindByID(ctx context.Context, id string) (*jobs.Job, error)
	ListRecent(ctx context.Context, limit int) ([]*jobs.Job, error)
}

// Server holds the handlers' collaborators.
type Server struct {
	creator      JobCreator
	reader       JobReader
	logger       *slog.Logger
	defaultLimit int
	maxLimit     int
	origins      []string
	token        string
}

// NewServer builds the HTTP handlers. Limits come from cfg.API.
func NewServer(cfg *config.Config, creator JobCreator, reader JobReader, logger *slog.Logger) *Server {
	s := &Server{
		creator:      creator,
		reader:       reader,
		logger:       logging.NewComponentLogger(logger, "api"),
		defaultLimit: 20,
		maxLimit:     200,
	}
	if cfg != nil {
		if cfg.API.DefaultLimit > 0 {
			s.defaultLimit = cfg.API.DefaultLimit
		}
		if cfg.API.MaxLimit > 0 {
			s.maxLimit = cfg.API.MaxLimit
		}
		s.origins = cfg.API.AllowedOrigins
		s.token = cfg.API.Token
	}
	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}
	return s
}

// Handler returns the chi router serving every API route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		s.requestContext,
		chimw.Recoverer,
	)
	if len(s.origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Route("/jobs", func(r chi.Router) {
			r.Use(requireToken(s.token))
			r.Post("/", s.handleCreateJob)
			r.Get("/", s.handleListJobs)
			r.Get("/{id}", s.handleGetJob)
		})
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// requestContext echoes the chi request id, stores it as the correlation id
// for downstream logging and logs each request once it completes.
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := chimw.GetReqID(r.Context())
		if reqID != "" {
			w.Header().Set("X-Request-Id", reqID)
			r = r.WithContext(services.WithRequestID(r.Context(), reqID))
		}
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		level := slog.LevelDebug
		if ww.Status() >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		s.logger.Log(r.Context(), level, "api request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Int("bytes", ww.BytesWritten()),
			logging.Duration("duration", time.Since(start)),
			logging.String(logging.FieldCorrelationID, reqID),
		)
	})
}
