// Package web provides the HTTP conversion service: delimited text in,
// structured XML out.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shapestone/shape-csvxml/internal/config"
	"github.com/shapestone/shape-csvxml/pkg/csvxml"
	"github.com/shapestone/shape-csvxml/pkg/source"
)

// Server is the HTTP server for the conversion service.
type Server struct {
	cfg      *config.Config
	log      *slog.Logger
	metrics  *Metrics
	pool     *csvxml.Pool
	resolver *source.Mux
	registry *prometheus.Registry
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, log *slog.Logger, reg *prometheus.Registry) (*Server, error) {
	pool, err := csvxml.NewPool(csvxml.DefaultOptions())
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		log:      log,
		metrics:  NewMetrics(reg),
		pool:     pool,
		resolver: buildResolver(cfg.Convert),
		registry: reg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// buildResolver wires the URI schemes the service may fetch. HTTP and
// HTTPS are always available; file sources must be enabled explicitly
// and stay confined to the configured root.
func buildResolver(cfg config.ConvertConfig) *source.Mux {
	mux := source.NewMux()
	web := &source.HTTPResolver{}
	mux.Handle("http", web)
	mux.Handle("https", web)
	if cfg.AllowFileSources {
		files := &source.FileResolver{Root: cfg.FileRoot}
		mux.Handle("file", files)
		mux.SetDefault(files)
	}
	return mux
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.Convert.RequestTimeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.router.Post("/convert", s.handleConvertBody)
	s.router.Get("/convert", s.handleConvertSource)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Serve runs the server until ctx is canceled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("starting server", "addr", s.server.Addr)
		errc <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// logRequests writes one line per request, carrying the chi request ID
// so entries can be correlated with handler logs.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ErrorResponse is the JSON body returned for failed conversions.
type ErrorResponse struct {
	Error        string `json:"error"`
	ConversionID string `json:"conversion_id"`
}

func (s *Server) writeError(w http.ResponseWriter, convID string, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Conversion-Id", convID)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error(), ConversionID: convID})
}
