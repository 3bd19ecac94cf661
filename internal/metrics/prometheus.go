package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder publishes rollout, training and HTTP metrics to Prometheus.
// A nil *Recorder discards everything.
type Recorder struct {
	episodes        *prometheus.CounterVec
	episodeReward   *prometheus.HistogramVec
	steps           *prometheus.CounterVec
	trainingUpdates prometheus.Counter
	httpDuration    *prometheus.HistogramVec
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer
// for the process-wide /metrics endpoint.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		episodes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fuelrl_episodes_total",
				Help: "Episodes completed, by policy and outcome (win or loss)",
			},
			[]string{"policy", "outcome"},
		),
		episodeReward: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fuelrl_episode_reward",
				Help:    "Cumulative reward per episode in pence/litre",
				Buckets: []float64{-500, -100, -50, -10, -1, 0, 1, 10, 50, 100, 500},
			},
			[]string{"policy"},
		),
		steps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fuelrl_steps_total",
				Help: "Environment steps taken, by policy",
			},
			[]string{"policy"},
		),
		trainingUpdates: f.NewCounter(
			prometheus.CounterOpts{
				Name: "fuelrl_training_updates_total",
				Help: "Transitions consumed by learners",
			},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fuelrl_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"route", "method", "status"},
		),
	}
}

// RecordEpisode records a finished episode.
func (r *Recorder) RecordEpisode(policy string, reward float64, steps int) {
	if r == nil {
		return
	}
	outcome := "loss"
	if reward > 0 {
		outcome = "win"
	}
	r.episodes.WithLabelValues(policy, outcome).Inc()
	r.episodeReward.WithLabelValues(policy).Observe(reward)
	r.steps.WithLabelValues(policy).Add(float64(steps))
}

func (r *Recorder) RecordTrainingUpdates(n int) {
	if r == nil {
		return
	}
	r.trainingUpdates.Add(float64(n))
}

// RecordRequest records HTTP latency. Use templated routes, not raw URLs.
func (r *Recorder) RecordRequest(route, method, status string, seconds float64) {
	if r == nil {
		return
	}
	r.httpDuration.WithLabelValues(route, method, status).Observe(seconds)
}
