package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// framesTotal counts completed passes.
	framesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fasten",
		Subsystem: "scheduler",
		Name:      "frames_total",
		Help:      "Total frames run by the scheduler",
	})

	// ownerVisits counts owners entered by phase walks.
	// Labels: phase (resize, compute, layout, animate, render)
	ownerVisits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fasten",
		Subsystem: "scheduler",
		Name:      "owner_visits_total",
		Help:      "Total owners visited per phase",
	}, []string{"phase"})

	// callbackErrors counts hook failures recovered at the owner boundary.
	// Labels: phase (a phase name or dispatch)
	callbackErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fasten",
		Subsystem: "scheduler",
		Name:      "callback_errors_total",
		Help:      "Total recovered callback errors and panics per phase",
	}, []string{"phase"})

	// frameDuration measures the wall time of each pass.
	frameDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fasten",
		Subsystem: "scheduler",
		Name:      "frame_duration_seconds",
		Help:      "Wall time of a scheduler pass in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.033, 0.1},
	})
)
