// Package server exposes a chart over HTTP.
//
// The API mirrors the interactive editor: markers are added and removed,
// and dragged with a begin/move/drop sequence. The layout endpoint returns
// the frame a client needs to draw the chart itself; chart.svg and
// chart.png return it drawn.
//
//	GET    /api/markers              list
//	POST   /api/markers              add {label, progress?, position?}
//	DELETE /api/markers              clear
//	DELETE /api/markers/{id}         remove
//	POST   /api/markers/{id}/drag    begin drag
//	POST   /api/drag/move            move {position | progress}
//	POST   /api/markers/{id}/drop    end drag
//	POST   /api/markers/{id}/nudge   nudge {delta}
//	GET    /api/layout               frame JSON
//	GET    /api/alignments           alignment memory
//	GET    /api/chart.svg            SVG
//	GET    /api/chart.png            PNG (needs rsvg-convert)
//	GET    /api/export?format=csv    export
//	GET    /healthz                  health check
//
// Errors are JSON objects {"code": ..., "message": ...} with a status
// derived from the error code.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/hillchart/pkg/cache"
	"github.com/matzehuels/hillchart/pkg/chart"
	"github.com/matzehuels/hillchart/pkg/render/sink"
)

// DefaultProgress is where markers added without a position start.
const DefaultProgress = 0.1

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithArtifactCache caches PNG renders.
func WithArtifactCache(c cache.Cache, k cache.Keyer) Option {
	return func(s *Server) { s.cache, s.keyer = c, k }
}

// WithSVGOptions sets the options used for chart.svg and chart.png.
func WithSVGOptions(opts ...sink.SVGOption) Option {
	return func(s *Server) { s.svg = opts }
}

// WithTimeouts sets the HTTP read and write timeouts.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) { s.readTimeout, s.writeTimeout = read, write }
}

// Server serves one chart.
type Server struct {
	chart  *chart.Chart
	logger *log.Logger
	cache  cache.Cache
	keyer  cache.Keyer
	svg    []sink.SVGOption
	router chi.Router

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// New builds the router for c.
func New(c *chart.Chart, opts ...Option) *Server {
	s := &Server{
		chart:        c,
		logger:       log.Default(),
		cache:        cache.NewNullCache(),
		keyer:        cache.NewDefaultKeyer(),
		readTimeout:  10 * time.Second,
		writeTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/markers", func(r chi.Router) {
			r.Get("/", s.handleList)
			r.Post("/", s.handleAdd)
			r.Delete("/", s.handleClear)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", s.handleRemove)
				r.Post("/drag", s.handleBeginDrag)
				r.Post("/drop", s.handleDrop)
				r.Post("/nudge", s.handleNudge)
			})
		})
		r.Post("/drag/move", s.handleMove)
		r.Get("/layout", s.handleLayout)
		r.Get("/alignments", s.handleAlignments)
		r.Get("/chart.svg", s.handleSVG)
		r.Get("/chart.png", s.handlePNG)
		r.Get("/export", s.handleExport)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadTimeout:       s.readTimeout,
		ReadHeaderTimeout: s.readTimeout,
		WriteTimeout:      s.writeTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving chart", "chart", s.chart.Name(), "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
