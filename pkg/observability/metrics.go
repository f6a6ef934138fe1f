package observability

import (
	"context"

	"github.com/aretw0/automaton/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "automaton"

// Metrics holds the collectors fed by engine hooks.
type Metrics struct {
	Runs        *prometheus.CounterVec
	Steps       *prometheus.CounterVec
	Rejections  *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
	InputLength *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "runs_total",
				Help:      "Total number of finished runs by verdict",
			},
			[]string{"automaton", "verdict"},
		),
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "steps_total",
				Help:      "Total number of transitions taken",
			},
			[]string{"automaton"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "unrecognized_symbols_total",
				Help:      "Runs halted by a symbol outside the alphabet",
			},
			[]string{"automaton"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of simulation runs",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"automaton"},
		),
		InputLength: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "input_symbols",
				Help:      "Number of symbols consumed per run",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"automaton"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.Steps, m.Rejections, m.RunDuration, m.InputLength)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			m.Steps.WithLabelValues(e.AutomatonID).Inc()
		},
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			if e.Result == nil {
				return
			}
			m.Runs.WithLabelValues(e.AutomatonID, string(e.Result.Verdict())).Inc()
			if e.Result.Rejected != nil {
				m.Rejections.WithLabelValues(e.AutomatonID).Inc()
			}
			m.RunDuration.WithLabelValues(e.AutomatonID).Observe(e.Duration.Seconds())
			m.InputLength.WithLabelValues(e.AutomatonID).Observe(float64(len(e.Result.Trace)))
		},
	}
}
