package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request-level counters and latencies.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	reg.MustRegister(requests, duration)
	return &HTTPMetrics{requests: requests, duration: duration}
}

// ObserveRequest records one completed request.
func (h *HTTPMetrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	if h == nil || h.requests == nil {
		return
	}
	method = normalizeLabel(method)
	route = normalizeLabel(route)
	h.requests.WithLabelValues(method, route, status).Inc()
	h.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// CheckoutMetrics counts the quote-submission and discount-redemption outcomes.
type CheckoutMetrics struct {
	ordersSubmitted *prometheus.CounterVec
	codesRedeemed   prometheus.Counter
	codesRejected   *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	submitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_orders_submitted_total",
		Help: "Quote order submissions by outcome.",
	}, []string{"outcome"})
	redeemed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "discount_codes_redeemed_total",
		Help: "Discount codes consumed by committed orders.",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discount_codes_rejected_total",
		Help: "Discount code validations rejected, by reason.",
	}, []string{"reason"})
	reg.MustRegister(submitted, redeemed, rejected)
	return &CheckoutMetrics{
		ordersSubmitted: submitted,
		codesRedeemed:   redeemed,
		codesRejected:   rejected,
	}
}

// IncOrderSubmitted counts one submission result: "accepted", or the
// lowercased error code of the rejection.
func (c *CheckoutMetrics) IncOrderSubmitted(outcome string) {
	if c == nil || c.ordersSubmitted == nil {
		return
	}
	c.ordersSubmitted.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncCodeRedeemed counts one consumed discount code.
func (c *CheckoutMetrics) IncCodeRedeemed() {
	if c == nil || c.codesRedeemed == nil {
		return
	}
	c.codesRedeemed.Inc()
}

// IncCodeRejected counts one rejected validation attempt.
func (c *CheckoutMetrics) IncCodeRejected(reason string) {
	if c == nil || c.codesRejected == nil {
		return
	}
	c.codesRejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
