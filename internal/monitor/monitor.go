// Package monitor runs the poll loop: fetch both addresses, hand them to
// the reconciler, wait, repeat.
package monitor

import (
	"context"
	"sync"
	"time"

	"wanwatch/internal/source"
	"wanwatch/internal/types"

	"go.uber.org/zap"
)

// Cycler evaluates one observation
type Cycler interface {
	Cycle(ctx context.Context, obs types.Observation) types.CycleResult
}

// Config represents poll loop settings
type Config struct {
	Hostname        string
	InstanceID      string
	Interval        time.Duration
	MilestoneCycles int
}

// Monitor handles the poll loop. Cycles run strictly one after another on
// the goroutine calling Run.
type Monitor struct {
	config     Config
	router     source.Source
	dns        source.Source
	reconciler Cycler
	logger     *zap.Logger

	mu        sync.RWMutex
	startTime time.Time
	cycles    uint64
	last      *types.CycleResult
}

// NewMonitor creates a new Monitor instance
func NewMonitor(cfg Config, router, dns source.Source, reconciler Cycler, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	return &Monitor{
		config:     cfg,
		router:     router,
		dns:        dns,
		reconciler: reconciler,
		logger:     logger,
		startTime:  time.Now(),
	}
}

// Run performs a cycle immediately and then one per interval until ctx is
// cancelled. Cancellation is observed only between cycles; a running cycle
// is never interrupted.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Info("Starting monitor loop",
		zap.String("hostname", m.config.Hostname),
		zap.String("router_source", m.router.Name()),
		zap.String("dns_source", m.dns.Name()),
		zap.Duration("interval", m.config.Interval))

	m.mu.Lock()
	m.startTime = time.Now()
	m.mu.Unlock()

	cycleCtx := context.WithoutCancel(ctx)

	timer := time.NewTimer(m.config.Interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			m.logger.Info("Monitor loop stopped")
			return nil
		}

		m.RunOnce(cycleCtx)

		timer.Reset(m.config.Interval)
		select {
		case <-ctx.Done():
			m.logger.Info("Monitor loop stopped")
			return nil
		case <-timer.C:
		}
	}
}

// RunOnce performs a single cycle and records its result
func (m *Monitor) RunOnce(ctx context.Context) types.CycleResult {
	routerIP, haveRouter := m.router.Lookup(ctx)
	dnsIP, haveDNS := m.dns.Lookup(ctx)

	res := m.reconciler.Cycle(ctx, types.NewObservation(routerIP, haveRouter, dnsIP, haveDNS))

	m.mu.Lock()
	m.cycles++
	cycles := m.cycles
	m.last = &res
	m.mu.Unlock()

	if n := m.config.MilestoneCycles; n > 0 && cycles%uint64(n) == 0 {
		m.logger.Info("Monitor still running",
			zap.Duration("elapsed", time.Duration(n)*m.config.Interval),
			zap.Uint64("cycles", cycles),
			zap.Bool("alert_active", res.State.Active))
	}

	return res
}

// Status returns a copy of the loop progress
func (m *Monitor) Status() types.MonitorStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := types.MonitorStatus{
		InstanceID: m.config.InstanceID,
		Hostname:   m.config.Hostname,
		Interval:   m.config.Interval,
		StartTime:  m.startTime,
		Cycles:     m.cycles,
	}
	if m.last != nil {
		last := *m.last
		status.LastCycle = &last
	}
	return status
}
