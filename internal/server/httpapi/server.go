// Package httpapi exposes the authentication and user-data operations as an
// HTTP/JSON API for the browser client.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/readykit/readykit/internal/logging"
	"github.com/readykit/readykit/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address  string
	logger   logging.Logger
	users    *services.UserService
	sessions *services.SessionService
	data     *services.UserDataService
}

func NewServer(a string, l logging.Logger, us *services.UserService, ss *services.SessionService, ds *services.UserDataService) (*Server, error) {
	return &Server{
		address:  a,
		logger:   l.With("module", "http_server"),
		users:    us,
		sessions: ss,
		data:     ds,
	}, nil
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),
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
