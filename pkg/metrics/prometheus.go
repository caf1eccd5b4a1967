package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements repository.Metrics on Prometheus.
type Recorder struct {
	collaboratorCalls *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	plans             *prometheus.CounterVec
	chatTurns         *prometheus.CounterVec
	eventsPublished   *prometheus.CounterVec
	latency           *prometheus.HistogramVec
}

// New registers the collectors on reg; nil means the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		collaboratorCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neofin_collaborator_calls_total",
				Help: "Calls to external collaborators by service and outcome",
			},
			[]string{"service", "outcome"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neofin_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		plans: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neofin_plans_total",
				Help: "Goal plans by risk profile and outcome",
			},
			[]string{"profile", "outcome"},
		),
		chatTurns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neofin_chat_turns_total",
				Help: "Chat turns by response mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		eventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "neofin_plan_events_total",
				Help: "Plan audit events by backend and outcome",
			},
			[]string{"backend", "outcome"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "neofin_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordCollaboratorCall(service string, err error) {
	r.collaboratorCalls.WithLabelValues(service, outcome(err)).Inc()
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordPlan(profile, result string) {
	r.plans.WithLabelValues(profile, result).Inc()
}

func (r *Recorder) RecordChatTurn(mode string, err error) {
	r.chatTurns.WithLabelValues(mode, outcome(err)).Inc()
}

func (r *Recorder) RecordEventPublished(backend string, err error) {
	r.eventsPublished.WithLabelValues(backend, outcome(err)).Inc()
}

func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
