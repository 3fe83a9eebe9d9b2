// Package server exposes one graph session over HTTP: a websocket channel
// for rendering backends plus a small JSON API for queries, history, and
// import/export. The server owns the single logical writer; every mutation
// arrives through its handlers, so the store needs no internal locking.
// The server's own lock serializes those mutations against each other and
// against every concurrent read, including the hub's snapshot polls.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/planograph/planograph/codec"
	"github.com/planograph/planograph/graph"
	"github.com/planograph/planograph/history"
	"github.com/planograph/planograph/render"
)

// Server wires a store, its history manager, and the render hub behind an
// HTTP mux. All dependencies are injected; tests construct isolated
// instances.
type Server struct {
	store   *graph.Store
	history *history.Manager
	hub     *render.Hub
	logger  *zap.SugaredLogger
	mux     *http.ServeMux

	// Guards every store access crossing a goroutine boundary: handlers
	// and the hub read under RLock, mutations hold the write lock. The
	// store itself guarantees nothing here.
	mu sync.RWMutex

	httpServer *http.Server
}

// New creates a server over an explicitly constructed store and history
// manager.
func New(store *graph.Store, mgr *history.Manager, logger *zap.SugaredLogger) *Server {
	s := &Server{
		store:   store,
		history: mgr,
		logger:  logger.Named("server"),
		mux:     http.NewServeMux(),
	}
	s.hub = render.NewHub(&storeGuard{mu: &s.mu, store: store}, logger)
	s.routes()
	return s
}

// storeGuard is the hub's view of the store, reading under the server's
// lock so hub polls never race with handler mutations.
type storeGuard struct {
	mu    *sync.RWMutex
	store *graph.Store
}

func (g *storeGuard) Version() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store.Version()
}

func (g *storeGuard) Snapshot() graph.Document {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.store.Snapshot()
}

// readSnapshot takes a consistent snapshot under the read lock.
func (s *Server) readSnapshot() graph.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Snapshot()
}

func (s *Server) readVersion() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.Version()
}

func (s *Server) routes() {
	s.mux.HandleFunc("/ws", s.hub.HandleWS)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("/api/query", s.handleQuery)
	s.mux.HandleFunc("/api/history", s.handleHistory)
	s.mux.HandleFunc("/api/revert", s.handleRevert)
	s.mux.HandleFunc("/api/import", s.handleImport)
	s.mux.HandleFunc("/api/export", s.handleExport)
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Hub returns the render hub so callers can consume its event channel.
func (s *Server) Hub() *render.Hub {
	return s.hub
}

// ListenAndServe starts the hub broadcaster and serves HTTP until the
// context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	go s.hub.Run(ctx)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("Server listening", "addr", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// ApplyImport parses data and applies it under the write lock, used by the
// import handler and by the file watcher in serve --watch. The returned
// version is captured before the lock is released, so it reports this
// import's result rather than a later concurrent mutation.
func (s *Server) ApplyImport(data []byte, format codec.Format, strategy codec.Strategy) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := codec.Import(s.store, data, format, strategy); err != nil {
		return 0, err
	}
	return s.store.Version(), nil
}
