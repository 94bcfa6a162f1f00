// Package server exposes the corpus over HTTP for editor integrations:
// JSON endpoints for skills, documents, and composed contexts, plus an SSE
// stream that replays lint findings as they are produced.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sota-codex/codex/internal/compose"
	"github.com/sota-codex/codex/internal/config"
	"github.com/sota-codex/codex/internal/corpus"
	"github.com/sota-codex/codex/internal/lint"
	"github.com/sota-codex/codex/internal/skills"
)

// Server serves the corpus API for one project.
type Server struct {
	cfg *config.Config
	log *zap.Logger

	mu      sync.RWMutex
	idx     *corpus.Index
	reg     *skills.Registry
	builder *compose.Builder
	runner  *lint.Runner
}

// New scans the project and prepares the server state.
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, log: logger}
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh rescans the corpus and rebuilds the registry and lint runner.
func (s *Server) Refresh() error {
	idx, err := corpus.Scan(s.cfg)
	if err != nil {
		return fmt.Errorf("server: scan corpus: %w", err)
	}
	reg, err := skills.FromIndex(idx)
	if err != nil {
		return fmt.Errorf("server: build registry: %w", err)
	}
	runner, err := lint.NewRunner(s.cfg)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.idx = idx
	s.reg = reg
	s.runner = runner
	s.builder = compose.NewBuilder(s.cfg, idx, reg)
	s.mu.Unlock()
	return nil
}

func (s *Server) snapshot() (*corpus.Index, *skills.Registry, *compose.Builder, *lint.Runner) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx, s.reg, s.builder, s.runner
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", s.handleHealth)
		api.Get("/skills", s.handleSkills)
		api.Get("/skills/{slug}", s.handleSkill)
		api.Get("/documents", s.handleDocuments)
		api.Get("/compose", s.handleCompose)
		api.Get("/lint/stream", s.handleLintStream)
		api.Post("/refresh", s.handleRefresh)
	})

	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ServerAddr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen on %s: %w", srv.Addr, err)
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}
