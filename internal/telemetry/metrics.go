package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetricsMeterName is the name used for the sync metrics meter
const SyncMetricsMeterName = "github.com/pawsitivecheck/syncconsole/sync"

// SyncMetrics holds the instruments for sync job metrics
type SyncMetrics struct {
	syncDuration metric.Float64Histogram
	syncRuns     metric.Int64Counter
	rejected     metric.Int64Counter
	statusFetch  metric.Int64Counter
}

// NewSyncMetrics creates the sync instruments. A nil provider yields nil (no-op) metrics.
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	syncDuration, err := meter.Float64Histogram(
		"pawsitive_sync_duration_seconds",
		metric.WithDescription("Duration of sync jobs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600),
	)
	if err != nil {
		return nil, err
	}

	syncRuns, err := meter.Int64Counter(
		"pawsitive_sync_runs_total",
		metric.WithDescription("Settled sync jobs by job and outcome"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	rejected, err := meter.Int64Counter(
		"pawsitive_sync_rejected_total",
		metric.WithDescription("Sync starts rejected because a job was already running"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	statusFetch, err := meter.Int64Counter(
		"pawsitive_sync_status_fetches_total",
		metric.WithDescription("Sync status fetches by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		syncDuration: syncDuration,
		syncRuns:     syncRuns,
		rejected:     rejected,
		statusFetch:  statusFetch,
	}, nil
}

// RecordSync records the duration and outcome of one settled job
func (m *SyncMetrics) RecordSync(ctx context.Context, job string, duration time.Duration, success bool) {
	if m == nil || m.syncDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("job", job),
		attribute.String("outcome", outcome(success)),
	)
	m.syncDuration.Record(ctx, duration.Seconds(), attrs)
	m.syncRuns.Add(ctx, 1, attrs)
}

// RecordRejected counts a start refused while another job was active
func (m *SyncMetrics) RecordRejected(ctx context.Context, job string) {
	if m == nil || m.rejected == nil {
		return
	}
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("job", job)))
}

// RecordStatusFetch counts one status snapshot fetch
func (m *SyncMetrics) RecordStatusFetch(ctx context.Context, success bool) {
	if m == nil || m.statusFetch == nil {
		return
	}
	m.statusFetch.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome(success))))
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
