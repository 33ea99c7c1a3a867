package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout failure reasons.
const (
	ReasonEmptyCart = "empty_cart"
	ReasonError     = "error"
)

// StoreMetrics records cart and checkout activity.
type StoreMetrics struct {
	checkoutDuration *prometheus.HistogramVec
	ordersCreated    prometheus.Counter
	checkoutFailures *prometheus.CounterVec
	cartMutations    *prometheus.CounterVec
	statusChanges    *prometheus.CounterVec
}

// NewStoreMetrics registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_checkout_duration_seconds",
		Help:    "Duration of checkout transactions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_created_total",
		Help: "Orders committed by checkout.",
	})
	checkoutFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_failures_total",
		Help: "Checkouts that did not produce an order.",
	}, []string{"reason"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_mutations_total",
		Help: "Cart add, remove and update operations.",
	}, []string{"op"})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_status_changes_total",
		Help: "Orders moved into a status.",
	}, []string{"status"})
	reg.MustRegister(checkoutDuration, ordersCreated, checkoutFailures, cartMutations, statusChanges)
	return &StoreMetrics{
		checkoutDuration: checkoutDuration,
		ordersCreated:    ordersCreated,
		checkoutFailures: checkoutFailures,
		cartMutations:    cartMutations,
		statusChanges:    statusChanges,
	}
}

// ObserveCheckout records a checkout attempt. An empty reason marks success.
func (m *StoreMetrics) ObserveCheckout(duration time.Duration, reason string) {
	if m == nil || m.checkoutDuration == nil {
		return
	}
	if reason == "" {
		m.checkoutDuration.WithLabelValues("success").Observe(duration.Seconds())
		m.ordersCreated.Inc()
		return
	}
	m.checkoutDuration.WithLabelValues("failure").Observe(duration.Seconds())
	m.checkoutFailures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncCartMutation counts a cart write.
func (m *StoreMetrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// AddStatusChanges counts orders moved into status.
func (m *StoreMetrics) AddStatusChanges(status string, n int64) {
	if m == nil || m.statusChanges == nil || n <= 0 {
		return
	}
	m.statusChanges.WithLabelValues(normalizeLabel(status)).Add(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
