package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Command outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// EditorMetrics records quote editor activity.
type EditorMetrics struct {
	commands *prometheus.CounterVec
	saves    *prometheus.HistogramVec
	sessions prometheus.Gauge
}

// NewEditorMetrics registers the editor metrics on the provided registerer.
// A nil registerer yields a recorder that drops everything.
func NewEditorMetrics(reg prometheus.Registerer) *EditorMetrics {
	if reg == nil {
		return &EditorMetrics{}
	}
	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_editor_commands_total",
		Help: "Editor commands handled, by command and outcome.",
	}, []string{"command", "outcome"})
	saves := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_editor_save_duration_seconds",
		Help:    "Time spent persisting a quote's line items.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "quote_editor_sessions",
		Help: "Editor sessions currently open.",
	})
	reg.MustRegister(commands, saves, sessions)
	return &EditorMetrics{
		commands: commands,
		saves:    saves,
		sessions: sessions,
	}
}

// ObserveCommand counts one handled command.
func (m *EditorMetrics) ObserveCommand(command, outcome string) {
	if m == nil || m.commands == nil {
		return
	}
	m.commands.WithLabelValues(normalizeLabel(command), normalizeLabel(outcome)).Inc()
}

// ObserveSave records how long a save took.
func (m *EditorMetrics) ObserveSave(outcome string, d time.Duration) {
	if m == nil || m.saves == nil {
		return
	}
	m.saves.WithLabelValues(normalizeLabel(outcome)).Observe(d.Seconds())
}

func (m *EditorMetrics) SessionOpened() {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.Inc()
}

func (m *EditorMetrics) SessionClosed() {
	if m == nil || m.sessions == nil {
		return
	}
	m.sessions.Dec()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
