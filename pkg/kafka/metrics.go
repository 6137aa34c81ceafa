package kafka

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Publish outcomes recorded in the result label.
const (
	resultOK    = "ok"
	resultError = "error"
)

var (
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodstore",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Events handed to Kafka, by topic and result.",
		},
		[]string{"topic", "result"},
	)

	publishLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "foodstore",
			Subsystem: "events",
			Name:      "publish_duration_seconds",
			Help:      "Time spent writing one event to Kafka.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"topic"},
	)
)

// observePublish records one publish attempt.
func observePublish(topic string, start time.Time, err error) {
	publishLatency.WithLabelValues(topic).Observe(time.Since(start).Seconds())
	result := resultOK
	if err != nil {
		result = resultError
	}
	eventsPublished.WithLabelValues(topic, result).Inc()
}
