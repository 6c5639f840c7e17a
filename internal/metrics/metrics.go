// Package metrics exposes run progress as Prometheus metrics.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/specialistvlad/unitgrid/internal/description"
	"github.com/specialistvlad/unitgrid/internal/event"
)

const namespace = "unitgrid"

// Listener is a bus listener that records every event into its own
// registry.
type Listener struct {
	// EventsTotal counts events.
	// Labels: kind (system, group, unit), status (started, passed, ...)
	EventsTotal *prometheus.CounterVec

	// UnitDurationSeconds measures the time between a unit's start and its
	// terminal event.
	// Labels: status
	UnitDurationSeconds *prometheus.HistogramVec

	// UnitsInFlight tracks units that started but have not finished.
	UnitsInFlight prometheus.Gauge

	registry *prometheus.Registry

	mu      sync.Mutex
	started map[description.Key]int64
}

// New creates a listener with a fresh registry. The registry also carries the
// Go runtime and process collectors.
func New() *Listener {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Listener{
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Lifecycle events delivered, by description kind and status.",
		}, []string{"kind", "status"}),
		UnitDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unit_duration_seconds",
			Help:      "Time from unit start to its outcome.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
		}, []string{"status"}),
		UnitsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "units_in_flight",
			Help:      "Units started but not yet finished.",
		}),
		registry: reg,
		started:  make(map[description.Key]int64),
	}
}

// HandleEvent implements bus.Listener.
func (l *Listener) HandleEvent(ev event.Event) {
	l.EventsTotal.WithLabelValues(ev.Description.Kind.String(), ev.Status.String()).Inc()
	if ev.Description.Kind != description.Unit {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := ev.Description.Key()
	if ev.Status == event.Started {
		l.started[key] = ev.Nanos
		l.UnitsInFlight.Inc()
		return
	}
	start, ok := l.started[key]
	if !ok {
		return
	}
	delete(l.started, key)
	l.UnitsInFlight.Dec()
	l.UnitDurationSeconds.WithLabelValues(ev.Status.String()).Observe(time.Duration(ev.Nanos - start).Seconds())
}

// Registry returns the registry the metrics live in.
func (l *Listener) Registry() *prometheus.Registry {
	return l.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (l *Listener) Handler() http.Handler {
	return promhttp.HandlerFor(l.registry, promhttp.HandlerOpts{Registry: l.registry})
}
