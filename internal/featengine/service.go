// Package featengine is the incremental feature compute service. It keeps
// the persisted feature store up to date per (ticker, timeframe) via a
// periodic sweep and an event-driven compute-request listener, both backed by
// the same coordinator.
package featengine

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/mandeep1729/algomatic-state/internal/bus/redisbus"
	"github.com/mandeep1729/algomatic-state/internal/feature"
	"github.com/mandeep1729/algomatic-state/internal/metrics"
	"github.com/mandeep1729/algomatic-state/internal/model"
	"github.com/mandeep1729/algomatic-state/internal/store/postgres"
	"github.com/mandeep1729/algomatic-state/internal/store/sqlite"
)

// Service wires the store, bus, pipeline and coordinator, and runs the
// configured trigger loops.
type Service struct {
	cfg   Config
	store model.BarStore
	bus   model.MessageBus // nil when running in service mode without Redis
	coord *Coordinator
	prom  *metrics.Metrics
}

// New connects all collaborators. An unreachable store is fatal. An
// unreachable bus is fatal only for the listener modes; the sweep-only mode
// degrades to running without events.
func New(ctx context.Context, cfg Config) (*Service, error) {
	svc := &Service{cfg: cfg, prom: metrics.New()}

	var err error
	switch cfg.StoreBackend {
	case "postgres":
		svc.store, err = postgres.New(ctx, cfg.PostgresDSN())
	case "sqlite":
		svc.store, err = sqlite.New(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, fmt.Errorf("store init: %w", err)
	}
	if err := svc.store.Ping(ctx); err != nil {
		svc.store.Close()
		return nil, fmt.Errorf("store ping: %w", err)
	}

	bus, err := redisbus.New(redisbus.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   cfg.ChannelPrefix,
	})
	if err != nil {
		if cfg.Mode != ModeService {
			svc.store.Close()
			return nil, fmt.Errorf("bus init (required for mode %s): %w", cfg.Mode, err)
		}
		log.Printf("[featengine] WARNING: redis unavailable, continuing without bus: %v", err)
	} else {
		svc.bus = bus
	}

	pipeline := feature.NewPipeline(cfg.Session, cfg.BankEnabled)
	svc.coord = NewCoordinator(svc.store, pipeline, cfg.FeatureVersion, svc.prom)
	return svc, nil
}

// Run starts the loops for the configured mode and blocks until ctx is
// cancelled. An in-flight coordinator invocation always runs to completion;
// cancellation is observed at loop boundaries.
func (s *Service) Run(ctx context.Context) error {
	log.Printf("[featengine] starting feature engine (mode=%s, backend=%s, version=%s)",
		s.cfg.Mode, s.cfg.StoreBackend, s.cfg.FeatureVersion)
	s.startHTTP()

	var err error
	switch s.cfg.Mode {
	case ModeService:
		s.runSweep(ctx)
	case ModeListener:
		err = s.runListener(ctx)
	case ModeBoth:
		go s.runSweep(ctx)
		err = s.runListener(ctx)
	}

	s.shutdown()
	return err
}

func (s *Service) shutdown() {
	log.Println("[featengine] shutting down...")
	if s.bus != nil {
		s.bus.Close()
	}
	if err := s.store.Close(); err != nil {
		log.Printf("[featengine] store close: %v", err)
	}
	log.Println("[featengine] shutdown complete.")
}

// startHTTP launches the HTTP server for /healthz and /metrics.
func (s *Service) startHTTP() {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if err := s.store.Ping(r.Context()); err != nil {
				http.Error(w, "store unreachable", http.StatusServiceUnavailable)
				return
			}
			fmt.Fprintf(w, "ok")
		})
		log.Printf("[featengine] HTTP server on %s (/healthz, /metrics)", s.cfg.HTTPAddr)
		if err := http.ListenAndServe(s.cfg.HTTPAddr, mux); err != nil {
			log.Printf("[featengine] HTTP server error: %v", err)
		}
	}()
}
