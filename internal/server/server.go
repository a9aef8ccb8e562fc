// Package server serves the browser viewer for `reasontree serve`.
//
// Each browser tab opens a websocket at /ws and gets its own session. The
// session's view draws through the Graphviz engine onto a websocket-backed
// surface: rendered SVG frames and panel state are pushed to the page, and
// the page sends node clicks and dismissals back.
//
// Routes:
//
//	GET    /                          viewer page
//	GET    /healthz                   liveness probe
//	GET    /ws                        session websocket
//	GET    /api/sessions/{id}         session state
//	POST   /api/sessions/{id}/tree    load a tree document (raw JSON body)
//	DELETE /api/sessions/{id}/selection
//	GET    /api/sessions/{id}/export.{format}
//	POST   /api/render?format=svg     stateless render of a tree document
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/reasontree/pkg/observability"
	"github.com/matzehuels/reasontree/pkg/pipeline"
	"github.com/matzehuels/reasontree/pkg/render/nodelink"
	"github.com/matzehuels/reasontree/pkg/session"
	"github.com/matzehuels/reasontree/pkg/view"
)

// Config configures a Server.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SessionTTL   time.Duration
	MaxUpload    int64
	View         view.Options
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:8080"
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.MaxUpload <= 0 {
		c.MaxUpload = 8 << 20
	}
	c.View.SetDefaults()
}

// Server is the viewer's HTTP server.
type Server struct {
	cfg    Config
	logger *log.Logger
	runner *pipeline.Runner
	engine view.Engine
	store  *session.Store
	router chi.Router
}

// New creates a server. Rendered SVG shares the runner's cache.
func New(cfg Config, runner *pipeline.Runner, logger *log.Logger) *Server {
	cfg.setDefaults()
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{
		cfg:    cfg,
		logger: logger,
		runner: runner,
		engine: nodelink.NewEngine(runner.Cache, runner.Keyer, logger),
		store:  session.NewStore(cfg.SessionTTL, logger),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Store returns the session store.
func (s *Server) Store() *session.Store { return s.store }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.handleWebsocket)

	r.Route("/api", func(r chi.Router) {
		r.Post("/render", s.handleRender)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleState)
			r.Post("/tree", s.handleLoad)
			r.Delete("/selection", s.handleDismiss)
			r.Get("/export.{format}", s.handleExport)
		})
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully
// and closes every session.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.store.Run(janitorCtx, time.Minute)

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("serving viewer", "addr", "http://"+ln.Addr().String())

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("shutdown", "err", err)
	}
	s.store.CloseAll()
	return ctx.Err()
}

// logRequests logs each request and reports it to the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, dur)
		s.logger.Debug("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", dur,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
