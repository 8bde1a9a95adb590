package evolution

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports per-method progress as Prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	generations        *prometheus.CounterVec
	evaluations        *prometheus.CounterVec
	failures           *prometheus.CounterVec
	bestFitness        *prometheus.GaugeVec
	meanFitness        *prometheus.GaugeVec
	temperature        *prometheus.GaugeVec
	transitionDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creature_evolution_generations_total",
			Help: "Generations completed by method",
		}, []string{"method"}),
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creature_evolution_evaluations_total",
			Help: "Physics trials run by method",
		}, []string{"method"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creature_evolution_failed_transitions_total",
			Help: "Generation transitions that returned an error, by method",
		}, []string{"method"}),
		bestFitness: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "creature_evolution_best_fitness",
			Help: "Best fitness of the last evaluated generation",
		}, []string{"method"}),
		meanFitness: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "creature_evolution_mean_fitness",
			Help: "Mean fitness of the last evaluated generation",
		}, []string{"method"}),
		temperature: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "creature_evolution_temperature",
			Help: "Annealing temperature used by the last transition",
		}, []string{"method"}),
		transitionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "creature_evolution_transition_duration_seconds",
			Help:    "Duration of one generation transition in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"method"}),
	}
}

func (m *Metrics) observeTransition(method string, stats GenerationStats, evaluations int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(method).Inc()
	m.evaluations.WithLabelValues(method).Add(float64(evaluations))
	m.bestFitness.WithLabelValues(method).Set(stats.Best)
	m.meanFitness.WithLabelValues(method).Set(stats.Mean)
	m.transitionDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) observeFailure(method string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(method).Inc()
}

func (m *Metrics) observeTemperature(method string, t float64) {
	if m == nil {
		return
	}
	m.temperature.WithLabelValues(method).Set(t)
}
