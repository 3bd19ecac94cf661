package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordEpisode(t *testing.T) {
	r := New(prometheus.NewRegistry())

	r.RecordEpisode("hold", 0, 10)
	r.RecordEpisode("oracle", 12.5, 10)
	r.RecordEpisode("oracle", 3, 4)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.episodes.WithLabelValues("hold", "loss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.episodes.WithLabelValues("oracle", "win")))
	assert.Equal(t, 14.0, testutil.ToFloat64(r.steps.WithLabelValues("oracle")))
}

func TestRecordTrainingUpdates(t *testing.T) {
	r := New(prometheus.NewRegistry())
	r.RecordTrainingUpdates(100)
	r.RecordTrainingUpdates(5)
	assert.Equal(t, 105.0, testutil.ToFloat64(r.trainingUpdates))
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RecordEpisode("hold", 0, 1)
		r.RecordTrainingUpdates(1)
		r.RecordRequest("/health", "GET", "200", 0.01)
	})
}
