// Package metrics exposes projection results as Prometheus gauges so a run can
// be scraped from a node_exporter textfile.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/SscSPs/majik_runway/internal/core/domain"
)

const metricPrefix = "runway_"

var statuses = []domain.HealthStatus{domain.HealthHealthy, domain.HealthWarning, domain.HealthCritical}

// Recorder holds the gauges of one process. It owns its registry, so several
// recorders never collide.
type Recorder struct {
	registry *prometheus.Registry

	projections  *prometheus.CounterVec
	runwayMonths *prometheus.GaugeVec
	endingCash   *prometheus.GaugeVec
	burn         *prometheus.GaugeVec
	netBurn      *prometheus.GaugeVec
	health       *prometheus.GaugeVec
}

// NewRecorder registers every runway metric on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		projections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "projections_total",
				Help: "Total projection runs by scenario",
			},
			[]string{"scenario"},
		),
		runwayMonths: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "months",
				Help: "Months until cash first reaches zero, or the horizon length",
			},
			[]string{"model", "scenario"},
		),
		endingCash: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "ending_cash",
				Help: "Cash at the end of the horizon in major units",
			},
			[]string{"model", "scenario", "currency"},
		),
		burn: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "average_monthly_burn",
				Help: "Average monthly outflow including taxes",
			},
			[]string{"model", "currency"},
		),
		netBurn: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "average_net_burn",
				Help: "Average monthly outflow not covered by revenue",
			},
			[]string{"model", "currency"},
		),
		health: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "health",
				Help: "1 for the current health status of the model, 0 otherwise",
			},
			[]string{"model", "status"},
		),
	}
	r.registry.MustRegister(r.projections, r.runwayMonths, r.endingCash, r.burn, r.netBurn, r.health)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveDashboard records the headline figures of the base projection.
func (r *Recorder) ObserveDashboard(model string, s domain.DashboardSnapshot) {
	r.projections.WithLabelValues("base").Inc()
	r.runwayMonths.WithLabelValues(model, "base").Set(float64(s.RunwayMonths))
	r.endingCash.WithLabelValues(model, "base", s.Currency).Set(s.EndingCash.ToMajor())
	r.burn.WithLabelValues(model, s.Currency).Set(s.AverageMonthlyBurn.ToMajor())
	r.netBurn.WithLabelValues(model, s.Currency).Set(s.AverageNetBurn.ToMajor())
	for _, status := range statuses {
		v := 0.0
		if status == s.Health.Status {
			v = 1
		}
		r.health.WithLabelValues(model, string(status)).Set(v)
	}
}

// ObserveScenario records the runway of one what-if run.
func (r *Recorder) ObserveScenario(model, scenario string, runwayMonths int, cashflows []domain.Cashflow) {
	r.projections.WithLabelValues(scenario).Inc()
	r.runwayMonths.WithLabelValues(model, scenario).Set(float64(runwayMonths))
	if len(cashflows) == 0 {
		return
	}
	last := cashflows[len(cashflows)-1].EndingCash
	r.endingCash.WithLabelValues(model, scenario, last.Currency()).Set(last.ToMajor())
}

// WriteTextfile writes every metric to path in the Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
