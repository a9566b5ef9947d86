package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/alexdesignworks/site-test-rest/internal/config"
	"github.com/alexdesignworks/site-test-rest/internal/logger"
	"github.com/alexdesignworks/site-test-rest/internal/storage"
)

// Server runs the admin HTTP API over a shared mock store.
type Server struct {
	config  *config.Config
	logger  logger.Logger
	handler *Handler
	events  *EventHub
	httpSrv *http.Server
}

// New creates a new server instance over an already opened store.
func New(cfg *config.Config, store storage.Store, log logger.Logger) *Server {
	events := NewEventHub(log)
	return &Server{
		config:  cfg,
		logger:  log,
		handler: NewHandler(store, log, events),
		events:  events,
	}
}

// Start runs the server until ctx is cancelled or a termination signal
// arrives, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	router := mux.NewRouter()
	s.handler.RegisterRoutes(router, s.config.Admin.Path)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Admin.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting admin server",
		"addr", s.httpSrv.Addr,
		"path", s.config.Admin.Path,
	)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case <-quit:
		case <-ctx.Done():
		}

		s.logger.Info("Shutting down admin server...")
		return s.shutdown()
	})

	return group.Wait()
}

func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpSrv.Shutdown(ctx)
	s.events.Close()
	if err != nil {
		s.logger.Error("Admin server forced to shutdown", "error", err)
		return err
	}

	s.logger.Info("Admin server exited")
	return nil
}

// Stop stops the server.
func (s *Server) Stop() error {
	if s.httpSrv == nil {
		return nil
	}
	return s.shutdown()
}
