package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dealhawk/dealhawk/internal/commit"
	"github.com/dealhawk/dealhawk/internal/metrics"
	"github.com/dealhawk/dealhawk/internal/model"
	"github.com/dealhawk/dealhawk/internal/notify"
	"github.com/dealhawk/dealhawk/internal/store"
)

// Config holds reconciliation loop settings.
type Config struct {
	Interval           time.Duration
	AutoCommit         bool
	AutoCommitQuantity int
}

// DefaultConfig returns sensible defaults. Auto-commit stays off until
// explicitly enabled.
func DefaultConfig() Config {
	return Config{
		Interval:           5 * time.Minute,
		AutoCommit:         false,
		AutoCommitQuantity: 1,
	}
}

// Fetcher obtains one snapshot of the site's current listings.
type Fetcher interface {
	FetchListings(ctx context.Context) ([]model.Listing, error)
}

// Monitor runs the reconciliation loop: fetch a snapshot, diff it against
// the deal store, auto-commit new listings when enabled, persist what
// changed, and notify. Exactly one cycle runs at a time.
type Monitor struct {
	cfg      Config
	fetcher  Fetcher
	store    store.Store
	notifier notify.Notifier
	logger   *slog.Logger

	committer *commit.Controller
	submit    commit.CommitFunc
	metrics   *metrics.Metrics

	mu         sync.RWMutex
	running    bool
	startedAt  time.Time
	cyclesRun  uint64
	lastReport *model.CycleReport

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a monitor. A nil logger falls back to slog.Default().
func New(cfg Config, fetcher Fetcher, st store.Store, notifier notify.Notifier, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.AutoCommitQuantity <= 0 {
		cfg.AutoCommitQuantity = DefaultConfig().AutoCommitQuantity
	}

	return &Monitor{
		cfg:       cfg,
		fetcher:   fetcher,
		store:     st,
		notifier:  notifier,
		logger:    logger,
		committer: commit.NewController(logger),
	}
}

// SetCommitFunc wires the remote submission used for auto-commit. Without
// one the monitor never attempts commitments, even when Config.AutoCommit
// is set.
func (m *Monitor) SetCommitFunc(fn commit.CommitFunc) {
	m.submit = fn
}

// SetMetrics attaches Prometheus collectors. A nil value leaves metrics
// disabled.
func (m *Monitor) SetMetrics(mx *metrics.Metrics) {
	m.metrics = mx
}

// Start verifies the deal store is reachable, announces the monitor, and
// begins the cycle loop in the background.
func (m *Monitor) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	// A dead store at startup is a configuration problem, not a cycle
	// failure.
	if err := m.store.Ping(m.ctx); err != nil {
		m.cancel()
		return fmt.Errorf("deal store unreachable: %w", err)
	}

	if err := m.notifier.Startup(m.ctx); err != nil {
		m.metrics.CountNotifyError()
		m.logger.Warn("startup notification failed", "err", err)
	}

	m.mu.Lock()
	m.running = true
	m.startedAt = time.Now()
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.loop(m.ctx)
	}()

	m.logger.Info("monitor started",
		"interval", m.cfg.Interval,
		"auto_commit", m.autoCommitEnabled(),
	)

	return nil
}

// Stop gracefully shuts down. An in-flight cycle finishes its current
// step; ctx bounds how long Stop waits for that.
func (m *Monitor) Stop(ctx context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		m.logger.Info("monitor stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the cycle loop is active.
func (m *Monitor) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastReport returns a copy of the most recent cycle report, or nil before
// the first cycle completes.
func (m *Monitor) LastReport() *model.CycleReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastReport == nil {
		return nil
	}
	cp := *m.lastReport
	return &cp
}

// Status is a point-in-time view of the monitor for the status endpoint.
type Status struct {
	Running    bool               `json:"running"`
	StartedAt  int64              `json:"started_at,omitempty"` // µs since epoch, zero until started
	Interval   string             `json:"interval"`
	AutoCommit bool               `json:"auto_commit"`
	CyclesRun  uint64             `json:"cycles_run"`
	LastReport *model.CycleReport `json:"last_report,omitempty"`
	Store      *store.Stats       `json:"store,omitempty"`
}

// Status snapshots the monitor state, including deal store totals when the
// store is reachable.
func (m *Monitor) Status(ctx context.Context) Status {
	m.mu.RLock()
	s := Status{
		Running:    m.running,
		Interval:   m.cfg.Interval.String(),
		AutoCommit: m.autoCommitEnabled(),
		CyclesRun:  m.cyclesRun,
	}
	if m.running {
		s.StartedAt = m.startedAt.UnixMicro()
	}
	if m.lastReport != nil {
		cp := *m.lastReport
		s.LastReport = &cp
	}
	m.mu.RUnlock()

	if stats, err := m.store.Stats(ctx); err == nil {
		s.Store = &stats
	} else {
		m.metrics.CountStoreError()
		m.logger.Debug("store stats unavailable", "err", err)
	}

	return s
}

// autoCommitEnabled is immutable once Start has been called.
func (m *Monitor) autoCommitEnabled() bool {
	return m.cfg.AutoCommit && m.submit != nil
}

// loop runs the first cycle immediately, then one per tick. A cycle must
// finish before the next tick is honored, so cycles never overlap.
func (m *Monitor) loop(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	m.runAndRecord(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runAndRecord(ctx)
		}
	}
}

func (m *Monitor) runAndRecord(ctx context.Context) {
	// The cycle runs detached from shutdown cancellation so an in-flight
	// store write or commitment finishes cleanly. Stop's own context
	// bounds how long callers wait.
	report := m.runCycle(context.WithoutCancel(ctx))

	m.mu.Lock()
	m.cyclesRun++
	m.lastReport = &report
	m.mu.Unlock()

	m.metrics.ObserveCycle(string(report.State), time.Duration(report.DurationMS)*time.Millisecond)
}
