package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// HealthChecker checks the REST backend.
type HealthChecker interface {
	CheckHealth(ctx context.Context) bool
}

// Pinger pings durable session storage.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReachabilitySink receives every backend check outcome.
type ReachabilitySink interface {
	SetBackendReachable(ok bool)
}

// Monitor polls the backend and storage on a cron schedule and pushes the
// backend outcome into the session.
type Monitor struct {
	backend HealthChecker
	storage Pinger
	sink    ReachabilitySink

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

func New(backend HealthChecker, storage Pinger, sink ReachabilitySink, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval < time.Second {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		backend:  backend,
		storage:  storage,
		sink:     sink,
		interval: interval,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
	}

	_ = m.schedule(fmt.Sprintf("@every %ds", int(interval.Seconds())))
	return m
}

// schedule registers the periodic check. A rejected spec is logged and
// leaves the monitor with on-demand Refresh only.
func (m *Monitor) schedule(spec string) error {
	_, err := m.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.interval)
		defer cancel()
		m.Refresh(ctx)
	})
	if err != nil {
		m.logger.Error("failed to schedule connection checks",
			zap.String("schedule", spec),
			zap.Error(err),
		)
	}
	return err
}

// Start runs a first check synchronously and then launches the scheduler.
func (m *Monitor) Start(ctx context.Context) {
	m.Refresh(ctx)
	m.cron.Start()
	m.logger.Info("connection monitor started", zap.Duration("interval", m.interval))
}

// Stop waits for a running check to finish or ctx to expire.
func (m *Monitor) Stop(ctx context.Context) error {
	stopCtx := m.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	m.logger.Info("connection monitor stopped")
	return nil
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Backend
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Refresh checks everything now and returns the new status.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := Status{
		Backend:   m.checkBackend(ctx),
		Storage:   m.checkStorage(ctx),
		LastCheck: time.Now().UTC(),
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if m.sink != nil {
		m.sink.SetBackendReachable(status.Backend)
	}
	if !previous.LastCheck.IsZero() && previous.Backend != status.Backend {
		if status.Backend {
			m.logger.Info("backend reachable again")
		} else {
			m.logger.Warn("backend unreachable, serving demo data")
		}
	}
	return status
}

func (m *Monitor) checkBackend(ctx context.Context) bool {
	if m.backend == nil {
		return false
	}
	return m.backend.CheckHealth(ctx)
}

func (m *Monitor) checkStorage(ctx context.Context) bool {
	if m.storage == nil {
		return false
	}
	if err := m.storage.Ping(ctx); err != nil {
		m.logger.Warn("session storage check failed", zap.Error(err))
		return false
	}
	return true
}
