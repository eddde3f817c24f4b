package app

import (
	"context"
	"fmt"

	"github.com/wrenchworks/dispatch/config"
	"github.com/wrenchworks/dispatch/core/attendance"
	"github.com/wrenchworks/dispatch/core/balance"
	"github.com/wrenchworks/dispatch/core/matching"
	"github.com/wrenchworks/dispatch/infra/logger"
	"github.com/wrenchworks/dispatch/infra/metrics"
	"github.com/wrenchworks/dispatch/infra/mqtt"
	"github.com/wrenchworks/dispatch/infra/store/memory"
	"github.com/wrenchworks/dispatch/infra/store/sqlite"
	"github.com/wrenchworks/dispatch/internal/eventbus"
)

// Service wires the attendance tracker, matching engine and workload balancer
// behind one lifecycle. The Fixture supplies the directory, skill, schedule
// and workload sources; attendance persistence is selected by the store
// configuration.
type Service struct {
	Tracker  *attendance.Tracker
	Ranker   *matching.Ranker
	Balancer *balance.Balancer
	Data     *memory.Fixture

	cfg       *config.Config
	bus       eventbus.EventBus
	log       logger.Logger
	forwarder *mqtt.Forwarder
	closeStor func() error
}

// New creates a Service from the configuration. data may be pre-seeded; the
// demo commands add technicians and centers to it before calling operations.
func New(cfg *config.Config, data *memory.Fixture) (*Service, error) {
	logg := logger.New("service")

	sink, err := metrics.FromConfig(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	bus := eventbus.New()

	var store attendance.Store
	closeStore := func() error { return nil }
	switch cfg.Store.Backend {
	case "sqlite":
		st, err := sqlite.New(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite store: %w", err)
		}
		store = st
		closeStore = st.Close
	case "memory":
		store = memory.NewAttendanceStore()
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}

	tracker := attendance.NewTracker(store, data, cfg.Attendance, logg, bus, sink)
	filter := matching.NewFilter(data, data, data, data, cfg.Matching, logg)
	ranker := matching.NewRanker(filter, cfg.Matching, logg, sink)
	balancer := balance.NewBalancer(data, data, cfg.Balance, logg, sink)

	svc := &Service{
		Tracker:   tracker,
		Ranker:    ranker,
		Balancer:  balancer,
		Data:      data,
		cfg:       cfg,
		bus:       bus,
		log:       logg,
		closeStor: closeStore,
	}
	if cfg.MQTT.Enabled {
		fwd, err := mqtt.NewForwarder(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt forwarder: %w", err)
		}
		svc.forwarder = fwd
	}
	return svc, nil
}

// Run starts the background consumers and blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.forwarder != nil {
		go s.forwarder.Run(ctx, s.bus)
	}
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.ServePrometheus(s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prometheus server: %v", err)
			}
		}()
	}
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.forwarder != nil {
		s.forwarder.Close()
	}
	return s.closeStor()
}
