package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/apetrovs/databoard/internal/logging"
	"github.com/apetrovs/databoard/internal/server/users"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	address string
	handler *UserHandler
	logger  logging.Logger
}

func NewServer(address string, logger logging.Logger, service *users.Service) *Server {
	return &Server{
		address: address,
		handler: NewUserHandler(service, logger),
		logger:  logger.With("module", "http_server"),
	}
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleHealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", s.makeHandler(s.handler.handleLogin))
		r.Post("/users", s.makeHandler(s.handler.handleCreateUser))
		r.Get("/users", s.makeHandler(s.handler.handleListUsers))
		r.Get("/users/{id}", s.makeHandler(s.handler.handleGetUser))
	})

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
