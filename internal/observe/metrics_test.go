package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns a Metrics instance backed by a ManualReader for
// programmatic metric inspection.
func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

// collect gathers all metric data from the reader.
func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name across all scope metrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetricsCreatesAllInstruments(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m.TellDuration == nil || m.GenerationDuration == nil ||
		m.TellsProcessed == nil || m.ProviderRequests == nil ||
		m.ProviderErrors == nil || m.HTTPRequestDuration == nil {
		t.Fatal("NewMetrics left instruments nil")
	}
}

func TestRecordProviderRequestOK(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordProviderRequest(context.Background(), "gemini", "ok")

	rm := collect(t, reader)
	reqs := findMetric(rm, "teal.provider.requests")
	if reqs == nil {
		t.Fatal("teal.provider.requests not recorded")
	}
	sum, ok := reqs.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 {
		t.Fatalf("unexpected requests data: %+v", reqs.Data)
	}
	dp := sum.DataPoints[0]
	if dp.Value != 1 {
		t.Errorf("requests = %d, want 1", dp.Value)
	}
	if v, _ := dp.Attributes.Value(attribute.Key("provider")); v.AsString() != "gemini" {
		t.Errorf("provider attribute = %q, want %q", v.AsString(), "gemini")
	}

	if errs := findMetric(rm, "teal.provider.errors"); errs != nil {
		t.Error("error counter bumped for an ok request")
	}
}

func TestRecordProviderRequestError(t *testing.T) {
	m, reader := newTestMetrics(t)
	m.RecordProviderRequest(context.Background(), "openai", "error")

	rm := collect(t, reader)
	errs := findMetric(rm, "teal.provider.errors")
	if errs == nil {
		t.Fatal("teal.provider.errors not recorded")
	}
	sum, ok := errs.Data.(metricdata.Sum[int64])
	if !ok || len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Fatalf("unexpected errors data: %+v", errs.Data)
	}
}
