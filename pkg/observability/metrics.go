package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/pkg/domain"
)

// Metrics holds the patchbay collectors. One Metrics value serves any
// number of desks; series are labelled by desk name.
type Metrics struct {
	events       *prometheus.CounterVec
	masterLevel  *prometheus.GaugeVec
	activeRoutes *prometheus.GaugeVec
	commandTime  *prometheus.HistogramVec
}

// New creates the collectors and registers them. A nil registerer falls
// back to prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "patchbay_events_total",
			Help: "Accepted matrix mutations by event kind.",
		}, []string{"desk", "kind"}),
		masterLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "patchbay_master_level_db",
			Help: "Current master level in dB.",
		}, []string{"desk"}),
		activeRoutes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "patchbay_active_routes",
			Help: "Crosspoints currently passing signal.",
		}, []string{"desk"}),
		commandTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "patchbay_command_duration_seconds",
			Help:    "Command execution time by command name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"command"}),
	}

	collectors := []prometheus.Collector{m.events, m.masterLevel, m.activeRoutes, m.commandTime}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return m, nil
}

// Observer returns a change observer that keeps one desk's series
// current. Attach it with Matrix.OnChange or patchbay.WithObserver.
//
// Series are keyed by the desk's name at event time, so a renamed desk
// leaves its old series behind; Forget drops them.
func (m *Metrics) Observer(desk *patchbay.Matrix) domain.Observer {
	m.sync(desk)
	return func(e domain.Event) {
		m.events.WithLabelValues(desk.Name(), string(e.Kind)).Inc()
		m.sync(desk)
	}
}

func (m *Metrics) sync(desk *patchbay.Matrix) {
	name := desk.Name()
	m.masterLevel.WithLabelValues(name).Set(desk.MainLevel())
	m.activeRoutes.WithLabelValues(name).Set(float64(len(desk.ActiveRoutes())))
}

// ObserveCommand records one command execution. Its signature matches
// the command processor's latency hook.
func (m *Metrics) ObserveCommand(command string, elapsed time.Duration) {
	m.commandTime.WithLabelValues(command).Observe(elapsed.Seconds())
}

// Forget drops every series for the named desk. Call it when a desk is
// deleted or renamed.
func (m *Metrics) Forget(desk string) {
	labels := prometheus.Labels{"desk": desk}
	m.events.DeletePartialMatch(labels)
	m.masterLevel.Delete(labels)
	m.activeRoutes.Delete(labels)
}
