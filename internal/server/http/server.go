// Package http is the thin HTTP surface over the application services:
// routing, bearer-token middleware and error-to-status translation.
package http

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mkravets/contactdesk/internal/logging"
	"github.com/mkravets/contactdesk/internal/server/services"
)

type Server struct {
	address  string
	logger   logging.Logger
	auth     *services.AuthService
	contacts *services.ContactService
	db       *sql.DB
}

func NewServer(address string, logger logging.Logger, auth *services.AuthService,
	contacts *services.ContactService, db *sql.DB) *Server {
	return &Server{
		address:  address,
		logger:   logger.With("module", "http_server"),
		auth:     auth,
		contacts: contacts,
		db:       db,
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
