package reconciler

import (
	"slices"
	"sync"
	"time"

	"healthsync/internal/cvconfig"
	"healthsync/pkg/logging"
)

// Metrics tracks reconciliation outcomes per data source type.
type Metrics struct {
	mu sync.RWMutex

	perType map[cvconfig.DataSourceType]*typeMetrics

	totalPasses   int64
	totalFailures int64
}

type typeMetrics struct {
	passes        int64
	failures      int64
	added         int64
	updated       int64
	deleted       int64
	lastPassAt    time.Time
	lastFailureAt time.Time
}

// NewMetrics creates an empty Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		perType: make(map[cvconfig.DataSourceType]*typeMetrics),
	}
}

func (m *Metrics) getOrCreate(t cvconfig.DataSourceType) *typeMetrics {
	if tm, ok := m.perType[t]; ok {
		return tm
	}
	tm := &typeMetrics{}
	m.perType[t] = tm
	return tm
}

// RecordPass records a successful reconciliation pass and its mutation counts.
func (m *Metrics) RecordPass(t cvconfig.DataSourceType, identifier string, result MutationSet) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tm := m.getOrCreate(t)
	tm.passes++
	tm.added += int64(len(result.Added))
	tm.updated += int64(len(result.Updated))
	tm.deleted += int64(len(result.Deleted))
	tm.lastPassAt = time.Now()
	m.totalPasses++

	logging.Debug("ReconcilerMetrics", "Pass for %s/%s: +%d ~%d -%d",
		t, identifier, len(result.Added), len(result.Updated), len(result.Deleted))
}

// RecordFailure records a pass that stopped before reconciling, for example
// on a validation or mapping error.
func (m *Metrics) RecordFailure(t cvconfig.DataSourceType, identifier string, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tm := m.getOrCreate(t)
	tm.failures++
	tm.lastFailureAt = time.Now()
	m.totalFailures++

	logging.Warn("ReconcilerMetrics", "Pass failure for %s/%s: %s (failures: %d)",
		t, identifier, reason, tm.failures)
}

// TypeMetricView is a read-only view of the metrics of one data source type.
type TypeMetricView struct {
	Type          cvconfig.DataSourceType `json:"type"`
	Passes        int64                   `json:"passes"`
	Failures      int64                   `json:"failures"`
	Added         int64                   `json:"added"`
	Updated       int64                   `json:"updated"`
	Deleted       int64                   `json:"deleted"`
	LastPassAt    time.Time               `json:"last_pass_at,omitempty"`
	LastFailureAt time.Time               `json:"last_failure_at,omitempty"`
}

// MetricsSummary summarises all recorded passes.
type MetricsSummary struct {
	TotalPasses   int64            `json:"total_passes"`
	TotalFailures int64            `json:"total_failures"`
	FailureRate   float64          `json:"failure_rate"`
	PerType       []TypeMetricView `json:"per_type"`
}

func (tm *typeMetrics) view(t cvconfig.DataSourceType) TypeMetricView {
	return TypeMetricView{
		Type:          t,
		Passes:        tm.passes,
		Failures:      tm.failures,
		Added:         tm.added,
		Updated:       tm.updated,
		Deleted:       tm.deleted,
		LastPassAt:    tm.lastPassAt,
		LastFailureAt: tm.lastFailureAt,
	}
}

// GetTypeMetrics returns the metrics of one type, if any pass was recorded.
func (m *Metrics) GetTypeMetrics(t cvconfig.DataSourceType) (TypeMetricView, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tm, ok := m.perType[t]
	if !ok {
		return TypeMetricView{}, false
	}
	return tm.view(t), true
}

// GetSummary returns a snapshot of all metrics, ordered by type.
func (m *Metrics) GetSummary() MetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summary := MetricsSummary{
		TotalPasses:   m.totalPasses,
		TotalFailures: m.totalFailures,
		PerType:       make([]TypeMetricView, 0, len(m.perType)),
	}
	if attempts := m.totalPasses + m.totalFailures; attempts > 0 {
		summary.FailureRate = float64(m.totalFailures) / float64(attempts)
	}
	for t, tm := range m.perType {
		summary.PerType = append(summary.PerType, tm.view(t))
	}
	slices.SortFunc(summary.PerType, func(a, b TypeMetricView) int {
		if a.Type < b.Type {
			return -1
		}
		if a.Type > b.Type {
			return 1
		}
		return 0
	})
	return summary
}

// Reset clears all recorded metrics.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.perType = make(map[cvconfig.DataSourceType]*typeMetrics)
	m.totalPasses = 0
	m.totalFailures = 0
}

var (
	globalMetrics     *Metrics
	globalMetricsOnce sync.Once
)

// GetMetrics returns the process-wide metrics instance.
func GetMetrics() *Metrics {
	globalMetricsOnce.Do(func() {
		globalMetrics = NewMetrics()
	})
	return globalMetrics
}
