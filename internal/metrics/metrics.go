// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns a prometheus.Registry and every collector registered on it.
// Tests build their own with New so counters never leak between them.
type Registry struct {
	reg *prometheus.Registry

	ReqCount          *prometheus.CounterVec
	ReqDuration       *prometheus.HistogramVec
	TargetResolutions *prometheus.CounterVec
	MilestonesAwarded *prometheus.CounterVec
	MilestoneFailures prometheus.Counter
}

func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		ReqCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		ReqDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Request duration seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		TargetResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nutrition_target_resolutions_total",
				Help: "Nutrition target resolutions by the tier that answered",
			},
			[]string{"source"},
		),
		MilestonesAwarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "milestones_awarded_total",
				Help: "Milestone credits written",
			},
			[]string{"type"},
		),
		MilestoneFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "milestone_check_failures_total",
				Help: "Milestone checks that failed after a workout was logged",
			},
		),
	}
	r.reg.MustRegister(
		r.ReqCount,
		r.ReqDuration,
		r.TargetResolutions,
		r.MilestonesAwarded,
		r.MilestoneFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
