package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/fruits/pkg/types"
)

//go:embed static
var staticFS embed.FS

// Server defaults.
const (
	DefaultAddr            = ":3000"
	DefaultShutdownTimeout = 5 * time.Second
	readHeaderTimeout      = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr            string
	Strict          bool
	ShutdownTimeout time.Duration
}

// Server serves the fruits controller, static assets, health and metrics.
type Server struct {
	cup     types.Cupboard
	opts    Options
	log     *zap.Logger
	metrics *Metrics
	http    *http.Server
}

// NewServer wires the fruits table of an attached cupboard into an HTTP
// server.
func NewServer(cup types.Cupboard, opts Options, log *zap.Logger) (*Server, error) {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}

	fruits, err := cup.GetTable(types.TableFruits)
	if err != nil {
		return nil, fmt.Errorf("getting fruits table: %w", err)
	}
	views, err := NewViews()
	if err != nil {
		return nil, err
	}

	s := &Server{cup: cup, opts: opts, log: log, metrics: NewMetrics()}
	h := NewHandler(fruits, views, log)
	h.Metrics = s.metrics
	h.Strict = opts.Strict

	mux := http.NewServeMux()
	h.Register(mux)
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /healthz", s.healthz)
	mux.Handle("GET /{$}", http.RedirectHandler(collectionPath, http.StatusFound))

	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           observe(log, s.metrics, methodOverride(mux)),
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          zap.NewStdLog(log),
	}
	return s, nil
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// healthz reports 200 while the cupboard is attached.
func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	if _, err := s.cup.GetTable(types.TableFruits); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully, waiting up to ShutdownTimeout for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", ln.Addr().String()), zap.Bool("strict_errors", s.opts.Strict))
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		s.log.Info("shutting down", zap.Duration("timeout", s.opts.ShutdownTimeout))
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
