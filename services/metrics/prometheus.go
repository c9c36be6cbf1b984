// Package metricsvc exposes the dashboard metrics to Prometheus.
package metricsvc

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/gradebook/core/report"
)

const namespace = "gradebook"

// Metrics holds the collectors of one registry; a fresh registry per instance keeps tests isolated.
type Metrics struct {
	registry        *prometheus.Registry
	snapshotLoads   *prometheus.CounterVec
	loadDuration    prometheus.Histogram
	orphanedGrades  prometheus.Gauge
	orphanedRecords prometheus.Gauge
	requests        *prometheus.CounterVec
}

var _ report.Recorder = (*Metrics)(nil) // interface compliance check

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		snapshotLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "snapshot_loads_total",
			Help:      "Number of report snapshot loads, by result.",
		}, []string{"result"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "snapshot_load_seconds",
			Help:      "Time taken to load a report snapshot.",
			Buckets:   prometheus.DefBuckets,
		}),
		orphanedGrades: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "orphaned_grades",
			Help:      "Grades referencing a missing student or assignment, in the last snapshot.",
		}),
		orphanedRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "report",
			Name:      "orphaned_attendance_records",
			Help:      "Attendance records referencing a missing student, in the last snapshot.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Number of HTTP requests handled, by method, route and status code.",
		}, []string{"method", "route", "code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.snapshotLoads,
		m.loadDuration,
		m.orphanedGrades,
		m.orphanedRecords,
		m.requests,
	)
	return m
}

func (m *Metrics) ObserveLoad(elapsed time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.snapshotLoads.WithLabelValues(result).Inc()
	m.loadDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveOrphans(grades, records int) {
	m.orphanedGrades.Set(float64(grades))
	m.orphanedRecords.Set(float64(records))
}

// ObserveRequest counts a handled HTTP request. route is the route pattern, not the raw path.
func (m *Metrics) ObserveRequest(method, route string, code int) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
