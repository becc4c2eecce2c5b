// Package observe turns composition mutations into log records and
// Prometheus counters.
package observe

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/inamate/heraldry/internal/engine"
)

// Logger writes one debug record per mutation.
type Logger struct {
	log *slog.Logger
}

// NewLogger returns an observer logging to l, or to slog.Default when l
// is nil.
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{log: l}
}

func (o *Logger) OnMutation(m engine.Mutation) {
	if !o.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	o.log.Debug("mutation", "op", m.Op, "layers", len(m.Layers), "uuids", m.Layers)
}

// Metrics counts mutations by operation name and the layers they touched.
type Metrics struct {
	mutations *prometheus.CounterVec
	layers    *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg. A nil
// registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coa",
			Name:      "mutations_total",
			Help:      "Composition mutations by operation.",
		}, []string{"op"}),
		layers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coa",
			Name:      "mutated_layers_total",
			Help:      "Layers touched by composition mutations, by operation.",
		}, []string{"op"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.mutations, m.layers} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) OnMutation(mu engine.Mutation) {
	m.mutations.WithLabelValues(mu.Op).Inc()
	if n := len(mu.Layers); n > 0 {
		m.layers.WithLabelValues(mu.Op).Add(float64(n))
	}
}

// Mutations returns the per-operation mutation counter.
func (m *Metrics) Mutations() *prometheus.CounterVec { return m.mutations }

// Layers returns the per-operation touched-layer counter.
func (m *Metrics) Layers() *prometheus.CounterVec { return m.layers }

// Multi fans a mutation out to several observers in order.
type Multi []engine.Observer

func (m Multi) OnMutation(mu engine.Mutation) {
	for _, o := range m {
		if o != nil {
			o.OnMutation(mu)
		}
	}
}
