// Package web hosts the HTTP API for schema detection and matching runs.
package web

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/listmatch/internal/match"
	"github.com/listmatch/internal/store"
	"github.com/listmatch/internal/web/handlers"
	"github.com/listmatch/internal/web/middleware"
)

// Server wraps the router and the HTTP listener.
type Server struct {
	logger     *zap.Logger
	opts       match.Options
	store      *store.Store
	router     *mux.Router
	httpServer *http.Server
}

// NewServer wires the API routes. The store may be nil when run persistence
// is not configured; endpoints that need it respond 503.
func NewServer(addr string, opts match.Options, st *store.Store, logger *zap.Logger) *Server {
	s := &Server{
		logger: logger,
		opts:   opts,
		store:  st,
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	schemaHandler := &handlers.SchemaHandler{Logger: s.logger}
	matchHandler := &handlers.MatchHandler{Opts: s.opts, Store: s.store, Logger: s.logger}
	runsHandler := &handlers.RunsHandler{Store: s.store, Logger: s.logger}

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/schema/detect", schemaHandler.Detect).Methods("POST")
	api.HandleFunc("/match", matchHandler.Run).Methods("POST")
	api.HandleFunc("/runs", runsHandler.List).Methods("GET")

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	s.router.Use(middleware.RequestLogging(s.logger))
	s.router.Use(middleware.Recovery(s.logger))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Router exposes the handler tree for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	s.logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}

	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
