package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes the fitting engine's observability counters through
// Prometheus: trials by outcome, failures by typed reason, candidates by
// diagnostic status and session durations. Numerical failures never surface
// as errors, so these counters are the only place they are visible.
type Recorder struct {
	trialsTotal     *prometheus.CounterVec
	failuresTotal   *prometheus.CounterVec
	candidatesTotal *prometheus.CounterVec
	sessionsTotal   *prometheus.CounterVec
	sessionDuration *prometheus.HistogramVec
}

// New creates a Recorder registered on the default registry.
func New() *Recorder {
	return &Recorder{
		trialsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lppl_trials_total",
				Help: "Total optimizer trials by outcome",
			},
			[]string{"outcome"},
		),
		failuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lppl_trial_failures_total",
				Help: "Failed optimizer trials by typed reason",
			},
			[]string{"reason"},
		),
		candidatesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lppl_candidates_total",
				Help: "Converged candidates by diagnostic status",
			},
			[]string{"status"},
		),
		sessionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lppl_sessions_total",
				Help: "Completed fitting sessions by strategy and result",
			},
			[]string{"strategy", "result"},
		),
		sessionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lppl_session_duration_seconds",
				Help:    "Wall-clock duration of fitting sessions",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
			},
			[]string{"strategy"},
		),
	}
}

// RecordTrial counts one trial outcome ("success" or "failure").
func (r *Recorder) RecordTrial(outcome string) {
	r.trialsTotal.WithLabelValues(outcome).Inc()
}

// RecordFailure counts one typed trial failure.
func (r *Recorder) RecordFailure(reason string) {
	r.failuresTotal.WithLabelValues(reason).Inc()
}

// RecordCandidate counts one converged candidate by diagnostic status.
func (r *Recorder) RecordCandidate(status string) {
	r.candidatesTotal.WithLabelValues(status).Inc()
}

// RecordSession counts a completed session ("ok" or "no_usable_fit") and its
// duration.
func (r *Recorder) RecordSession(strategy, result string, seconds float64) {
	r.sessionsTotal.WithLabelValues(strategy, result).Inc()
	r.sessionDuration.WithLabelValues(strategy).Observe(seconds)
}
