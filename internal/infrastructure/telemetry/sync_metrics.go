package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
)

// SyncMetrics records provider traffic and import runs. It is the request
// observer of the provider client and the run observer of every syncer.
type SyncMetrics struct {
	requests        *Counter
	requestDuration *Histogram
	runs            *Counter
	records         *Counter
	runDuration     *Histogram
}

// NewSyncMetrics registers the instruments on meter.
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	if meter == nil {
		return nil, errors.New("telemetry: meter is required")
	}
	m := &SyncMetrics{}
	var err error
	if m.requests, err = NewCounter(meter, "fiscal_provider_requests_total",
		"Provider API calls by endpoint and status", "{request}"); err != nil {
		return nil, err
	}
	if m.requestDuration, err = NewHistogram(meter, "fiscal_provider_request_duration_seconds",
		"Provider API call latency", "s", ProviderDurationBuckets); err != nil {
		return nil, err
	}
	if m.runs, err = NewCounter(meter, "fiscal_import_runs_total",
		"Finished import runs by entity and status", "{run}"); err != nil {
		return nil, err
	}
	if m.records, err = NewCounter(meter, "fiscal_import_records_total",
		"Local records created or updated by imports", "{record}"); err != nil {
		return nil, err
	}
	if m.runDuration, err = NewHistogram(meter, "fiscal_import_run_duration_seconds",
		"Import run duration", "s", ImportDurationBuckets); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveRequest records one provider call.
func (m *SyncMetrics) ObserveRequest(ctx context.Context, method, endpoint string, status int, latency time.Duration) {
	attrs := []attribute.KeyValue{
		AttrHTTPMethod.String(method),
		AttrEndpoint.String(EndpointRoute(endpoint)),
		AttrStatusClass.String(statusClass(status)),
	}
	m.requests.Inc(ctx, attrs...)
	m.requestDuration.RecordDuration(ctx, latency, attrs...)
}

// ObserveRun records a finished import run.
func (m *SyncMetrics) ObserveRun(ctx context.Context, run *fiscalsync.SyncRun) {
	entity := AttrEntity.String(run.Entity)
	m.runs.Inc(ctx, entity, AttrStatus.String(string(run.Status)))
	m.records.Add(ctx, int64(run.Created), entity, AttrRecordKind.String("created"))
	m.records.Add(ctx, int64(run.Updated), entity, AttrRecordKind.String("updated"))
	if run.FinishedAt != nil {
		m.runDuration.RecordDuration(ctx, run.FinishedAt.Sub(run.StartedAt), entity)
	}
}

// EndpointRoute replaces numeric path segments with ":id" so record ids do
// not become metric labels.
func EndpointRoute(endpoint string) string {
	parts := strings.Split(strings.Trim(endpoint, "/"), "/")
	for i, p := range parts {
		if _, err := strconv.ParseUint(p, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

func statusClass(status int) string {
	if status <= 0 {
		return "transport_error"
	}
	return strconv.Itoa(status/100) + "xx"
}

// RegisterDBPoolMetrics reports the connection pool of db as gauges on
// every collection.
func RegisterDBPoolMetrics(meter metric.Meter, db *sql.DB) error {
	open, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Database connections by state"), metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for"), metric.WithUnit("{wait}"))
	if err != nil {
		return err
	}
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := db.Stats()
		o.ObserveInt64(open, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(open, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(open, int64(stats.MaxOpenConnections), metric.WithAttributes(AttrDBState.String("max")))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, waits)
	return err
}
