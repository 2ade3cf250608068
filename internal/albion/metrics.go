package albion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gameinfoCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "albion_gameinfo_calls_total",
		Help: "Total number of gameinfo API calls by endpoint",
	}, []string{"endpoint"})

	gameinfoRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "albion_gameinfo_retries_total",
		Help: "Total number of retried gameinfo API requests",
	})

	gameinfoRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "albion_gameinfo_request_duration_seconds",
		Help:    "Duration of gameinfo API requests",
		Buckets: prometheus.DefBuckets,
	})

	feedCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "albion_feed_cache_lookups_total",
		Help: "Feed cache lookups by result",
	}, []string{"result"})
)
