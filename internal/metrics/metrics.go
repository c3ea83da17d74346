package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "order_notifier"

// Outcome labels for a single notify invocation
const (
	OutcomePreflight        = "preflight"
	OutcomeDelivered        = "delivered"
	OutcomeMethodNotAllowed = "rejected_method"
	OutcomeNotConfigured    = "rejected_config"
	OutcomeBadRequest       = "rejected_bad_request"
	OutcomeDeliveryFailed   = "rejected_delivery"
	OutcomeInternalError    = "rejected_internal"
)

// Metrics groups the collectors exported by the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Requests        *prometheus.CounterVec
	LatencyMS       *prometheus.HistogramVec
	Outcomes        *prometheus.CounterVec
	DeliveryLatency *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"method"}),
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Terminal outcomes of order notification requests.",
		}, []string{"outcome"}),
		DeliveryLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_duration_ms",
			Help:      "Latency of Telegram sendMessage calls in milliseconds.",
			Buckets:   []float64{25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"result"}),
	}

	reg.MustRegister(m.Requests, m.LatencyMS, m.Outcomes, m.DeliveryLatency)
	return m
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.LatencyMS.WithLabelValues(method).Observe(float64(d.Milliseconds()))
}

// ObserveOutcome records the terminal outcome of a notify invocation
func (m *Metrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(outcome).Inc()
}

// ObserveDelivery records the latency of one outbound call
func (m *Metrics) ObserveDelivery(err error, d time.Duration) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.DeliveryLatency.WithLabelValues(result).Observe(float64(d.Milliseconds()))
}

// Handler exposes the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
