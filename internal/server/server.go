// Package server exposes one simulator over HTTP. Every tick committed through
// the API is pushed to websocket clients and exported as prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/san-kum/popsim/internal/sim"
)

const DefaultMaxFastForward = 10000

// PresetFunc resolves a preset name to a scenario.
type PresetFunc func(name string) (sim.Scenario, error)

type Config struct {
	Scenario sim.Scenario
	Presets  PresetFunc
	Options  sim.Options
	Logger   *slog.Logger
	// Registry defaults to a fresh registry so that several servers can live
	// in one process.
	Registry       *prometheus.Registry
	MaxFastForward int
}

type Server struct {
	mu      sync.Mutex
	sim     *sim.Simulator
	presets PresetFunc
	opts    sim.Options
	maxFF   int

	hub      *Hub
	metrics  *Metrics
	registry *prometheus.Registry
	logger   *slog.Logger
	mux      *http.ServeMux
}

func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.MaxFastForward <= 0 {
		cfg.MaxFastForward = DefaultMaxFastForward
	}
	if cfg.Options.Logger == nil {
		cfg.Options.Logger = cfg.Logger
	}

	s := &Server{
		presets:  cfg.Presets,
		opts:     cfg.Options,
		maxFF:    cfg.MaxFastForward,
		hub:      NewHub(cfg.Logger),
		metrics:  NewMetrics(cfg.Registry),
		registry: cfg.Registry,
		logger:   cfg.Logger,
	}

	simulator, err := s.build(cfg.Scenario)
	if err != nil {
		s.hub.Close()
		return nil, err
	}
	s.sim = simulator
	s.metrics.Set(simulator.Snapshot())

	s.routes()
	return s, nil
}

func (s *Server) build(sc sim.Scenario) (*sim.Simulator, error) {
	simulator, err := sim.New(sc, s.opts)
	if err != nil {
		return nil, err
	}
	simulator.AddObserver(s.metrics)
	simulator.AddObserver(sim.ObserverFunc(s.publish))
	return simulator, nil
}

// publish runs under s.mu as part of a committed tick.
func (s *Server) publish(snap sim.Snapshot) {
	msg, err := json.Marshal(tickMessage{Type: "tick", Snapshot: snap})
	if err != nil {
		s.logger.Error("encode tick", "err", err)
		return
	}
	s.hub.Broadcast(msg)
}

type tickMessage struct {
	Type     string       `json:"type"`
	Snapshot sim.Snapshot `json:"snapshot"`
}

func (s *Server) routes() {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("GET /history", s.handleHistory)
	mux.HandleFunc("POST /step", s.handleStep)
	mux.HandleFunc("POST /fastforward", s.handleFastForward)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("POST /preset/{name}", s.handlePreset)
	mux.HandleFunc("POST /inject", s.handleInject)
	mux.HandleFunc("POST /population", s.handlePopulation)
	mux.HandleFunc("POST /refresh", s.handleRefresh)
	mux.Handle("GET /ws", s.hub)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.mux = mux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	s.mux.ServeHTTP(w, r)
	s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
}

func (s *Server) Hub() *Hub { return s.hub }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.hub.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) Close() error {
	return s.hub.Close()
}
