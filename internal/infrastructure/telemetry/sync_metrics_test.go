package telemetry

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/erp/fiscalsync/internal/domain/fiscalsync"
)

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return reader, provider
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumFor(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestNewSyncMetrics_NilMeter(t *testing.T) {
	_, err := NewSyncMetrics(nil)
	assert.Error(t, err)
}

func TestSyncMetrics_ObserveRequest(t *testing.T) {
	reader, provider := newTestMeter(t)
	m, err := NewSyncMetrics(provider.Meter("test"))
	require.NoError(t, err)
	ctx := context.Background()

	m.ObserveRequest(ctx, "GET", "clients/12/", 200, 30*time.Millisecond)
	m.ObserveRequest(ctx, "GET", "clients/99/", 200, 20*time.Millisecond)
	m.ObserveRequest(ctx, "POST", "documents/", 0, time.Second)

	metrics := collect(t, reader)
	requests := metrics["fiscal_provider_requests_total"]
	assert.Equal(t, int64(2), sumFor(t, requests,
		AttrHTTPMethod.String("GET"), AttrEndpoint.String("clients/:id"), AttrStatusClass.String("2xx")))
	assert.Equal(t, int64(1), sumFor(t, requests,
		AttrHTTPMethod.String("POST"), AttrEndpoint.String("documents"), AttrStatusClass.String("transport_error")))

	hist, ok := metrics["fiscal_provider_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	assert.Len(t, hist.DataPoints, 2)
}

func TestSyncMetrics_ObserveRun(t *testing.T) {
	reader, provider := newTestMeter(t)
	m, err := NewSyncMetrics(provider.Meter("test"))
	require.NoError(t, err)

	run, err := fiscalsync.NewSyncRun(uuid.New(), "products", false, uuid.Nil)
	require.NoError(t, err)
	require.NoError(t, run.Complete(4, 1))
	m.ObserveRun(context.Background(), run)

	metrics := collect(t, reader)
	entity := AttrEntity.String("products")
	assert.Equal(t, int64(1), sumFor(t, metrics["fiscal_import_runs_total"], entity, AttrStatus.String("SUCCESS")))
	assert.Equal(t, int64(4), sumFor(t, metrics["fiscal_import_records_total"], entity, AttrRecordKind.String("created")))
	assert.Equal(t, int64(1), sumFor(t, metrics["fiscal_import_records_total"], entity, AttrRecordKind.String("updated")))
	assert.Contains(t, metrics, "fiscal_import_run_duration_seconds")
}

func TestEndpointRoute(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"clients/", "clients"},
		{"clients/12/", "clients/:id"},
		{"documents/901/pdf/", "documents/:id/pdf"},
		{"account/", "account"},
		{"products/units/3", "products/units/:id"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EndpointRoute(tt.in))
		})
	}
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "transport_error", statusClass(0))
	assert.Equal(t, "2xx", statusClass(201))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "5xx", statusClass(503))
}

func TestRegisterDBPoolMetrics(t *testing.T) {
	reader, provider := newTestMeter(t)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	var sqlDB *sql.DB
	sqlDB, err = db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(3)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, RegisterDBPoolMetrics(provider.Meter("test"), sqlDB))

	metrics := collect(t, reader)
	gauge, ok := metrics["db_pool_connections"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	want := attribute.NewSet(AttrDBState.String("max"))
	var found bool
	for _, dp := range gauge.DataPoints {
		if dp.Attributes.Equals(&want) {
			found = true
			assert.Equal(t, int64(3), dp.Value)
		}
	}
	assert.True(t, found)
	assert.Contains(t, metrics, "db_pool_wait_total")
}
