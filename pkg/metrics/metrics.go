// Package metrics holds the prometheus collectors of the service. Every
// type is nil-safe so callers can run without a registry.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request counts and latencies per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

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
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	reg.MustRegister(requests, duration)
	return &HTTPMetrics{requests: requests, duration: duration}
}

func (m *HTTPMetrics) Observe(method, route string, status int, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	route = normalizeLabel(route)
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// StorefrontMetrics counts session lifecycle and cart activity.
type StorefrontMetrics struct {
	sessionsCreated prometheus.Counter
	sessionsSwept   prometheus.Counter
	cartAdds        *prometheus.CounterVec
	checkoutSends   *prometheus.CounterVec
}

func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	m := &StorefrontMetrics{
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_sessions_created_total",
			Help: "Storefront sessions opened.",
		}),
		sessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_sessions_swept_total",
			Help: "Idle storefront sessions removed by the sweeper.",
		}),
		cartAdds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_cart_adds_total",
			Help: "Units added to carts, by origin (quick_add, modal).",
		}, []string{"origin"}),
		checkoutSends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_checkout_sends_total",
			Help: "Checkout send attempts by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.sessionsCreated, m.sessionsSwept, m.cartAdds, m.checkoutSends)
	return m
}

func (m *StorefrontMetrics) IncSessionsCreated() {
	if m == nil || m.sessionsCreated == nil {
		return
	}
	m.sessionsCreated.Inc()
}

func (m *StorefrontMetrics) AddSessionsSwept(n int) {
	if m == nil || m.sessionsSwept == nil || n <= 0 {
		return
	}
	m.sessionsSwept.Add(float64(n))
}

func (m *StorefrontMetrics) AddCartUnits(origin string, units int) {
	if m == nil || m.cartAdds == nil || units <= 0 {
		return
	}
	m.cartAdds.WithLabelValues(normalizeLabel(origin)).Add(float64(units))
}

// IncCheckoutSend records a send outcome: ok, cart_empty or fields_required.
func (m *StorefrontMetrics) IncCheckoutSend(result string) {
	if m == nil || m.checkoutSends == nil {
		return
	}
	m.checkoutSends.WithLabelValues(normalizeLabel(result)).Inc()
}

// JobMetrics records scheduled job runs.
type JobMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

func NewJobMetrics(reg prometheus.Registerer) *JobMetrics {
	if reg == nil {
		return &JobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Duration of scheduled jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_success_total",
		Help: "Successful scheduled job runs.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_failure_total",
		Help: "Failed scheduled job runs.",
	}, []string{"job"})
	reg.MustRegister(duration, success, failure)
	return &JobMetrics{duration: duration, success: success, failure: failure}
}

// Record observes one run of job.
func (m *JobMetrics) Record(job string, elapsed time.Duration, err error) {
	if m == nil || m.duration == nil {
		return
	}
	job = normalizeLabel(job)
	m.duration.WithLabelValues(job).Observe(elapsed.Seconds())
	if err != nil {
		m.failure.WithLabelValues(job).Inc()
		return
	}
	m.success.WithLabelValues(job).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
