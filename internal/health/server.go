package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dealhawk/dealhawk/internal/monitor"
)

const serviceName = "Buying Group Monitor"

// checkTimeout bounds every component check a request triggers.
const checkTimeout = 5 * time.Second

// Monitor is the view of the running monitor the endpoints read.
type Monitor interface {
	Running() bool
	Status(ctx context.Context) monitor.Status
}

// Pinger reports whether backing storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the HTTP server settings.
type Config struct {
	Port        int
	MetricsPath string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:        8000,
		MetricsPath: "/metrics",
	}
}

// Server exposes the monitor's operational endpoints:
//
//	GET /health     liveness with component checks
//	GET /status     monitor status snapshot
//	GET /metrics    Prometheus metrics (path configurable)
//	GET /ws/events  live event feed, when a feed handler is wired
type Server struct {
	cfg     Config
	monitor Monitor
	store   Pinger
	logger  *slog.Logger

	feed     http.Handler
	gatherer prometheus.Gatherer

	srv *http.Server
}

// NewServer creates the server. A nil logger falls back to slog.Default().
func NewServer(cfg Config, mon Monitor, st Pinger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Port <= 0 {
		cfg.Port = DefaultConfig().Port
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = DefaultConfig().MetricsPath
	}

	s := &Server{
		cfg:     cfg,
		monitor: mon,
		store:   st,
		logger:  logger,
	}
	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.routes(),
	}
	return s
}

// SetFeedHandler mounts a live event feed at /ws/events. Must be called
// before ListenAndServe.
func (s *Server) SetFeedHandler(h http.Handler) {
	s.feed = h
	s.srv.Handler = s.routes()
}

// SetGatherer mounts Prometheus metrics at the configured path. Must be
// called before ListenAndServe.
func (s *Server) SetGatherer(g prometheus.Gatherer) {
	s.gatherer = g
	s.srv.Handler = s.routes()
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	if s.gatherer != nil {
		mux.Handle(s.cfg.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	if s.feed != nil {
		mux.Handle("/ws/events", s.feed)
	}
	return mux
}

// ListenAndServe blocks until Shutdown or a listener failure. A shut-down
// server returns nil.
func (s *Server) ListenAndServe() error {
	s.logger.Info("health server listening", "port", s.cfg.Port)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	health := struct {
		Status     string         `json:"status"`
		Timestamp  int64          `json:"timestamp"`
		Service    string         `json:"service"`
		Components map[string]any `json:"components"`
	}{
		Status:     "healthy",
		Timestamp:  time.Now().Unix(),
		Service:    serviceName,
		Components: make(map[string]any),
	}

	if err := s.store.Ping(ctx); err != nil {
		health.Status = "unhealthy"
		health.Components["deal_store"] = map[string]string{
			"status": "disconnected",
			"error":  err.Error(),
		}
	} else {
		health.Components["deal_store"] = "connected"
	}

	if s.monitor.Running() {
		health.Components["monitor"] = "running"
	} else {
		health.Components["monitor"] = "stopped"
		if health.Status == "healthy" {
			health.Status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Status == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.monitor.Status(ctx))
}
