package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CommissionMetrics records commission decisions and gateway calls.
type CommissionMetrics struct {
	decisions       *prometheus.CounterVec
	clamped         *prometheus.CounterVec
	splitApplied    *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	gatewayFailures *prometheus.CounterVec
}

// NewCommissionMetrics registers the commission metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCommissionMetrics(reg prometheus.Registerer) *CommissionMetrics {
	if reg == nil {
		return &CommissionMetrics{}
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commission_decisions_total",
		Help: "Commission decisions by winning tier and gateway.",
	}, []string{"source", "gateway"})
	clamped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commission_clamped_total",
		Help: "Decisions whose commission was clamped into [0, total].",
	}, []string{"gateway"})
	splitApplied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "commission_split_applied_total",
		Help: "Gateway requests with and without a split attached.",
	}, []string{"gateway", "applied"})
	gatewayDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_request_duration_seconds",
		Help:    "Duration of payment gateway calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"gateway", "operation"})
	gatewayFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_request_failures_total",
		Help: "Failed payment gateway calls.",
	}, []string{"gateway", "operation"})
	reg.MustRegister(decisions, clamped, splitApplied, gatewayDuration, gatewayFailures)
	return &CommissionMetrics{
		decisions:       decisions,
		clamped:         clamped,
		splitApplied:    splitApplied,
		gatewayDuration: gatewayDuration,
		gatewayFailures: gatewayFailures,
	}
}

// ObserveDecision counts one resolved decision.
func (m *CommissionMetrics) ObserveDecision(source, gateway string, clamped bool) {
	if m == nil || m.decisions == nil {
		return
	}
	gateway = normalizeLabel(gateway)
	m.decisions.WithLabelValues(normalizeLabel(source), gateway).Inc()
	if clamped {
		m.clamped.WithLabelValues(gateway).Inc()
	}
}

// ObserveSplit counts whether a split was attached to a gateway request.
func (m *CommissionMetrics) ObserveSplit(gateway string, applied bool) {
	if m == nil || m.splitApplied == nil {
		return
	}
	m.splitApplied.WithLabelValues(normalizeLabel(gateway), strconv.FormatBool(applied)).Inc()
}

// ObserveGatewayCall records the latency of a gateway call and counts failures.
func (m *CommissionMetrics) ObserveGatewayCall(gateway, operation string, duration time.Duration, err error) {
	if m == nil || m.gatewayDuration == nil {
		return
	}
	gateway, operation = normalizeLabel(gateway), normalizeLabel(operation)
	m.gatewayDuration.WithLabelValues(gateway, operation).Observe(duration.Seconds())
	if err != nil {
		m.gatewayFailures.WithLabelValues(gateway, operation).Inc()
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
