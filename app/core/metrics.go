package core

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/quka-ai/workbench/pkg/metrics"
	"github.com/quka-ai/workbench/pkg/types"
)

type Metrics struct {
	apiResponseTime  *prometheus.HistogramVec
	apiErrorCounter  *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	dispatchErrors   *prometheus.CounterVec
	relayConnections *prometheus.GaugeVec
}

func NewMetrics(ns, system string) *Metrics {
	// setup metric
	metrics.SetupMetricsManager(ns, system, prometheus.NewRegistry())

	m := &Metrics{
		apiResponseTime:  metrics.NewHistogramVec("api_response_time", []string{"api"}),
		apiErrorCounter:  metrics.NewCounterVec("api_error", []string{"method", "api", "status"}),
		dispatchDuration: metrics.NewHistogramVec("dispatch_duration", []string{"strategy"}),
		dispatchErrors:   metrics.NewCounterVec("dispatch_errors", []string{"strategy"}),
		relayConnections: metrics.NewGaugeVec("relay_connections", nil),
	}

	return m
}

func (m *Metrics) ApiErrorInc(method, api string, status int) {
	m.apiErrorCounter.WithLabelValues(method, api, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ApiResponseTimer(api string) *prometheus.Timer {
	return prometheus.NewTimer(m.apiResponseTime.WithLabelValues(api))
}

func (m *Metrics) DispatchTimer(strategy types.DispatchStrategy) *prometheus.Timer {
	return prometheus.NewTimer(m.dispatchDuration.WithLabelValues(string(strategy)))
}

func (m *Metrics) DispatchErrorInc(strategy types.DispatchStrategy) {
	m.dispatchErrors.WithLabelValues(string(strategy)).Inc()
}

func (m *Metrics) RelayConnections() prometheus.Gauge {
	return m.relayConnections.WithLabelValues()
}
