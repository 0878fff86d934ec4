package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tenantops/appset-keyspaces-plugin/internal/auth"
)

// requestTimeout bounds a single getparams call, including the database
// round trip. The controller retries on its own schedule.
const requestTimeout = 30 * time.Second

type Server struct {
	Router     *chi.Mux
	logger     *slog.Logger
	httpServer *http.Server
}

// New assembles the router and middleware chain. Every route registered on
// the returned server sits behind the bearer check.
func New(port int, logger *slog.Logger, authenticator *auth.Authenticator) *Server {
	r := chi.NewRouter()

	// Apply middleware in order
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(BearerMiddleware(authenticator))
	r.Use(TimeoutMiddleware(requestTimeout))
	r.Use(middleware.Recoverer)

	// Wrap with OpenTelemetry HTTP instrumentation
	r.Use(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "appset-keyspaces-plugin")
	})

	return &Server{
		Router:     r,
		logger:     logger,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		},
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting server", slog.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests before returning.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
