// Package monitor polls the alert compiler for a configured set of
// provinces and pushes freshly raised alerts through the worker pool to
// live stream subscribers.
package monitor

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mhtran-dev/go-flood-risk/internal/config"
	"github.com/mhtran-dev/go-flood-risk/internal/models"
	"github.com/mhtran-dev/go-flood-risk/internal/stream"
	"github.com/mhtran-dev/go-flood-risk/internal/worker"
)

// Compiler produces the current alert report for a province.
type Compiler interface {
	Compile(ctx context.Context, province string) (*models.AlertReport, error)
}

type Monitor struct {
	cfg         *config.Config
	compiler    Compiler
	broadcaster *stream.Broadcaster
	pool        *worker.Pool
	wg          sync.WaitGroup

	mu   sync.Mutex
	seen map[string]models.AlertSeverity
}

func New(cfg *config.Config, compiler Compiler, broadcaster *stream.Broadcaster) *Monitor {
	return &Monitor{
		cfg:         cfg,
		compiler:    compiler,
		broadcaster: broadcaster,
		seen:        make(map[string]models.AlertSeverity),
	}
}

func (m *Monitor) Start(ctx context.Context) {
	processor := func(ctx context.Context, alert models.Alert) error {
		if m.broadcaster != nil {
			m.broadcaster.Broadcast(alert)
		}
		slog.Info("alert broadcast", "type", alert.Type, "location", alert.Location, "severity", alert.Severity)
		return nil
	}

	m.pool = worker.NewPool(m.cfg.Worker.Count, m.cfg.Worker.BufferSize, processor)
	m.pool.Start(ctx)

	for _, province := range m.cfg.Monitor.Provinces {
		m.wg.Add(1)
		go m.runPoller(ctx, province, m.cfg.Monitor.PollInterval)
	}
}

func (m *Monitor) runPoller(ctx context.Context, province string, interval time.Duration) {
	defer m.wg.Done()
	slog.Info("starting alert poller", "province", province, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial poll
	m.poll(ctx, province)

	for {
		select {
		case <-ctx.Done():
			slog.Info("alert poller shutting down", "province", province)
			return
		case <-ticker.C:
			m.poll(ctx, province)
		}
	}
}

func (m *Monitor) poll(ctx context.Context, province string) {
	slog.Debug("compiling alerts", "province", province)

	report, err := m.compiler.Compile(ctx, province)
	if err != nil {
		slog.Error("alert compilation failed", "province", province, "error", err)
		return
	}

	fresh := 0
	for _, alert := range report.Alerts {
		if !shouldBroadcast(alert) {
			continue
		}
		if !m.markSeen(province, alert) {
			continue
		}
		m.pool.Submit(alert)
		fresh++
	}
	m.clearResolved(province, report)

	slog.Debug("poll complete", "province", province, "alerts", len(report.Alerts), "fresh", fresh)
}

func (m *Monitor) Stop() {
	m.wg.Wait()
	m.pool.Stop()
	slog.Info("alert monitor stopped")
}

// markSeen records the alert and reports whether subscribers should hear
// about it: the type is new for this province or its severity escalated
// since the last poll.
func (m *Monitor) markSeen(province string, alert models.Alert) bool {
	key := province + "|" + alert.Type

	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.seen[key]
	if ok && severityRank(alert.Severity) <= severityRank(prev) {
		return false
	}
	m.seen[key] = alert.Severity
	return true
}

// clearResolved drops tracking for alert types absent from the current
// report so a later re-breach broadcasts again.
func (m *Monitor) clearResolved(province string, report *models.AlertReport) {
	active := make(map[string]bool, len(report.Alerts))
	for _, alert := range report.Alerts {
		active[alert.Type] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := province + "|"
	for key := range m.seen {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if !active[strings.TrimPrefix(key, prefix)] {
			delete(m.seen, key)
		}
	}
}

// shouldBroadcast returns true if the alert warrants a live push.
// Low severity advisories stay in the report but are not streamed.
func shouldBroadcast(a models.Alert) bool {
	return a.Severity == models.AlertSeverityHigh || a.Severity == models.AlertSeverityMedium
}

func severityRank(s models.AlertSeverity) int {
	switch s {
	case models.AlertSeverityHigh:
		return 2
	case models.AlertSeverityMedium:
		return 1
	default:
		return 0
	}
}
