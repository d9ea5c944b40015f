// Package metrics holds the Prometheus collectors of the checker and the
// status app. Each constructor registers on the registerer it is given so
// tests can use a fresh registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hamed0406/timewatch/internal/domain"
)

const namespace = "timewatch"

type Check struct {
	Runs        *prometheus.CounterVec
	Failures    *prometheus.CounterVec
	Alerts      *prometheus.CounterVec
	Duration    prometheus.Histogram
	LastStatus  prometheus.Gauge
	LastChecked prometheus.Gauge
}

func NewCheck(reg prometheus.Registerer) *Check {
	m := &Check{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_runs_total",
			Help:      "Completed check runs by final status.",
		}, []string{"status"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_failures_total",
			Help:      "Failures observed during checks by kind.",
		}, []string{"kind"}),
		Alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alert publish attempts by result.",
		}, []string{"result"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Wall time of one check run.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}),
		LastStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_status",
			Help:      "Status of the last check: 0 unknown, 1 ok, 2 failed, 3 degraded.",
		}),
		LastChecked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_check_timestamp_seconds",
			Help:      "Unix time the last check finished.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.Failures, m.Alerts, m.Duration, m.LastStatus, m.LastChecked)
	}
	return m
}

// ObserveRun records the end of a run. Safe on a nil *Check.
func (m *Check) ObserveRun(status domain.Status, seconds float64, finishedUnix float64) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(status.String()).Inc()
	m.Duration.Observe(seconds)
	m.LastStatus.Set(float64(status))
	m.LastChecked.Set(finishedUnix)
}

func (m *Check) ObserveFailure(kind domain.FailureKind) {
	if m == nil {
		return
	}
	m.Failures.WithLabelValues(string(kind)).Inc()
}

func (m *Check) ObserveAlert(sent bool) {
	if m == nil {
		return
	}
	result := "sent"
	if !sent {
		result = "failed"
	}
	m.Alerts.WithLabelValues(result).Inc()
}

type Web struct {
	PageViews *prometheus.CounterVec
}

func NewWeb(reg prometheus.Registerer) *Web {
	m := &Web{
		PageViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_views_total",
			Help:      "Status page and API reads by outcome (record, empty, error).",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.PageViews)
	}
	return m
}

func (m *Web) ObserveView(outcome string) {
	if m == nil {
		return
	}
	m.PageViews.WithLabelValues(outcome).Inc()
}

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
