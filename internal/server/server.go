package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/takak2166/teum/internal/entries"
	"github.com/takak2166/teum/internal/likes"
	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/notion"
)

// Server serves the Notion proxy endpoints and the entries API
type Server struct {
	source  notion.Source
	session *entries.Session
	likes   *likes.Store
	router  *mux.Router
}

// New creates a server and registers its routes
func New(source notion.Source, session *entries.Session, favorites *likes.Store) *Server {
	s := &Server{
		source:  source,
		session: session,
		likes:   favorites,
		router:  mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(recoverer, requestLogger)

	// Notion proxy, method checked in the handlers so non-GET gets a JSON 405
	s.router.HandleFunc("/api/notion/table/{id}", s.handleTable)
	s.router.HandleFunc("/api/notion/page/{id}", s.handlePage)

	// Entries
	s.router.HandleFunc("/api/entries", s.handleEntries).Methods(http.MethodGet)
	s.router.HandleFunc("/api/entries/{id}/text", s.handleEntryText).Methods(http.MethodGet)

	// Favorites
	s.router.HandleFunc("/api/likes", s.handleLikes).Methods(http.MethodGet)
	s.router.HandleFunc("/api/likes/{id}", s.handleToggleLike).Methods(http.MethodPost)

	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", logger.Fields{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server forced to shutdown", err)
			return err
		}
		logger.Info("Server exited")
		return nil
	case err := <-errCh:
		logger.Error("HTTP server failed", err)
		return err
	}
}
