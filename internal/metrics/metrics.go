// Package metrics holds the Prometheus collectors of the continue-watching service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Slot read outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeMissing   = "missing"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
)

var (
	SlotReadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "continue_watching",
		Name:      "records_slot_reads_total",
		Help:      "Persisted record reads by slot and outcome.",
	}, []string{"slot", "outcome"})

	ResumeEntries = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "continue_watching",
		Name:      "resume_entries",
		Help:      "Number of resume entries produced per reconciliation pass.",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	FramesRenderedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "continue_watching",
		Name:      "frames_rendered_total",
		Help:      "Carousel frames handed to the carousel by trigger.",
	}, []string{"trigger"})

	ActivePresenters = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "continue_watching",
		Name:      "active_presenters",
		Help:      "Number of live carousel presenters.",
	})
)

// Register adds every collector to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		SlotReadsTotal,
		ResumeEntries,
		FramesRenderedTotal,
		ActivePresenters,
	)
}
