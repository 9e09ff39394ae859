package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger is satisfied by a pgx pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts clients whose ping does not return a bare error, like go-redis.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Sizer is satisfied by the snapshot store.
type Sizer interface {
	Size() (int, error)
}

// Monitor periodically pings the backing stores and caches the result.
type Monitor struct {
	pg        Pinger
	redis     Pinger
	snapshots Sizer

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(pg Pinger, redis Pinger, snapshots Sizer, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		pg:        pg,
		redis:     redis,
		snapshots: snapshots,
		interval:  interval,
		stopCh:    make(chan struct{}),
		logger:    logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	return m.GetStatus().Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh()
	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh pings every store once and publishes the result.
func (m *Monitor) Refresh() {
	snapshotsOK, snapshotCount := m.checkSnapshots()
	status := Status{
		PostgreSQL:    m.ping("postgres", m.pg, 3*time.Second),
		Redis:         m.ping("redis", m.redis, 2*time.Second),
		Snapshots:     snapshotsOK,
		SnapshotCount: snapshotCount,
		LastCheck:     time.Now(),
	}

	m.mu.Lock()
	previous := m.status
	m.status = status
	m.mu.Unlock()

	if !previous.LastCheck.IsZero() && previous.Healthy() != status.Healthy() {
		m.logger.Warn("store availability changed",
			zap.Bool("online", status.Healthy()),
			zap.Bool("postgresql", status.PostgreSQL),
			zap.Bool("redis", status.Redis))
	}
}

func (m *Monitor) ping(name string, p Pinger, timeout time.Duration) bool {
	if p == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		m.logger.Debug("ping failed", zap.String("store", name), zap.Error(err))
		return false
	}
	return true
}

func (m *Monitor) checkSnapshots() (bool, int) {
	if m.snapshots == nil {
		return false, 0
	}
	size, err := m.snapshots.Size()
	if err != nil {
		m.logger.Warn("snapshot store check failed", zap.Error(err))
		return false, size
	}
	return true, size
}
