package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess         = "success"
	OutcomeValidationError = "validation_error"
	OutcomeGenerationError = "generation_error"
	OutcomeStorageError    = "storage_error"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	generations          *prometheus.CounterVec
	enhancementFallbacks prometheus.Counter
	generationDuration   prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "image_generations_total",
			Help: "Image generation requests by outcome.",
		}, []string{"outcome"}),
		enhancementFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prompt_enhancement_fallbacks_total",
			Help: "Generations that used the original prompt because enhancement failed.",
		}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "image_generation_duration_seconds",
			Help:    "Time spent in the image generation call.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		}),
	}

	reg.MustRegister(m.generations, m.enhancementFallbacks, m.generationDuration)

	return m
}

func (m *Metrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}

	m.generations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveEnhancementFallback() {
	if m == nil {
		return
	}

	m.enhancementFallbacks.Inc()
}

func (m *Metrics) ObserveGenerationDuration(d time.Duration) {
	if m == nil {
		return
	}

	m.generationDuration.Observe(d.Seconds())
}
