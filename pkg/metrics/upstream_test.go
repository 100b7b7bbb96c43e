package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestUpstreamMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewUpstreamMetrics(reg)
	metrics.Observe("woocommerce", "list_products", 200, 250*time.Millisecond, nil)
	metrics.Observe("woocommerce", "list_products", 502, 10*time.Millisecond, errors.New("bad gateway"))
	metrics.Observe("airwallex", "", 0, time.Millisecond, errors.New("timeout"))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "upstream_request_success", map[string]string{"operation": "list_products"}); err != nil {
		t.Fatalf("fetch success: %v", err)
	} else if got != 1 {
		t.Fatalf("expected success=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "upstream_request_failure", map[string]string{"operation": "list_products", "status": "5xx"}); err != nil {
		t.Fatalf("fetch failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failure=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "upstream_request_failure", map[string]string{"service": "airwallex", "operation": "unknown", "status": "transport"}); err != nil {
		t.Fatalf("fetch transport failure: %v", err)
	} else if got != 1 {
		t.Fatalf("expected transport failure=1, got %f", got)
	}

	mf := findMetricFamily(mfs, "upstream_request_duration_seconds")
	if mf == nil {
		t.Fatalf("duration histogram missing")
	}
	var sum float64
	for _, metric := range mf.GetMetric() {
		sum += metric.GetHistogram().GetSampleSum()
	}
	if sum <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", sum)
	}
}

func TestUpstreamMetricsNilSafe(t *testing.T) {
	var metrics *UpstreamMetrics
	metrics.Observe("woocommerce", "get_product", 200, time.Second, nil)
	NewUpstreamMetrics(nil).Observe("woocommerce", "get_product", 200, time.Second, nil)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if value, ok := want[pair.GetName()]; ok {
			if pair.GetValue() != value {
				return false
			}
			matched++
		}
	}
	return matched == len(want)
}
