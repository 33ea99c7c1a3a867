package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestStoreMetricsCheckoutOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)

	m.ObserveCheckout(120*time.Millisecond, "")
	m.ObserveCheckout(10*time.Millisecond, ReasonEmptyCart)
	m.IncCartMutation("add")
	m.IncCartMutation("add")
	m.AddStatusChanges("shipped", 3)
	m.AddStatusChanges("shipped", 0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got := counterTotal(findMetricFamily(mfs, "storefront_orders_created_total")); got != 1 {
		t.Fatalf("expected orders_created=1, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "storefront_checkout_failures_total", "reason", ReasonEmptyCart); err != nil || got != 1 {
		t.Fatalf("expected empty_cart failure=1, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "storefront_cart_mutations_total", "op", "add"); err != nil || got != 2 {
		t.Fatalf("expected add mutations=2, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "storefront_order_status_changes_total", "status", "shipped"); err != nil || got != 3 {
		t.Fatalf("expected shipped changes=3, got %f err=%v", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "storefront_checkout_duration_seconds", "outcome", "success"); err != nil || got <= 0 {
		t.Fatalf("expected success duration > 0, got %f err=%v", got, err)
	}
}

func TestNilRecordersAreNoops(t *testing.T) {
	var m *StoreMetrics
	m.ObserveCheckout(time.Second, "")
	m.IncCartMutation("add")

	empty := NewStoreMetrics(nil)
	empty.AddStatusChanges("delivered", 1)

	var h *HTTPMetrics
	h.Observe("/cart/", "GET", 200, time.Millisecond)
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewHTTPMetrics(reg)
	h.Observe("/cart/count", "GET", 200, 5*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "storefront_http_requests_total", "route", "/cart/count"); err != nil || got != 1 {
		t.Fatalf("expected one request, got %f err=%v", got, err)
	}
}

func counterTotal(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, metric := range mf.GetMetric() {
		total += metric.GetCounter().GetValue()
	}
	return total
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
