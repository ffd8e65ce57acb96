// Package server exposes the article record operations over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/yourusername/article-registry/internal/article"
	"github.com/yourusername/article-registry/internal/storage"
)

// RecordService is the set of operations the transport serves.
type RecordService interface {
	List(ctx context.Context) storage.Document
	Create(ctx context.Context, fields article.Article) (article.Article, error)
	Update(ctx context.Context, a article.Article) (article.Article, error)
	Delete(ctx context.Context, id int) error
}

// Config holds the server settings.
type Config struct {
	Addr              string
	BasePath          string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the article HTTP API.
type Server struct {
	service         RecordService
	logger          *slog.Logger
	basePath        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
}

// New creates a server for service. A nil logger uses slog.Default().
func New(cfg Config, service RecordService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/api/articles"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}

	s := &Server{
		service:         service,
		logger:          logger.With("component", "server"),
		basePath:        cfg.BasePath,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
	return s
}

// Handler returns the routed and wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+s.basePath, s.handleList)
	mux.HandleFunc("POST "+s.basePath, s.handleCreate)
	mux.HandleFunc("PUT "+s.basePath, s.handleUpdate)
	mux.HandleFunc("DELETE "+s.basePath, s.handleDelete)
	mux.HandleFunc("GET "+s.basePath+"/export.csv", s.handleExport)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return Chain(mux,
		RequestID(),
		AccessLog(s.logger),
		RecoverPanic(s.logger),
	)
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until the context ends, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(listener)
	}()

	s.logger.InfoContext(ctx, "HTTP server listening",
		"addr", listener.Addr().String(),
		"base_path", s.basePath)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		s.logger.Info("HTTP server stopped")
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
