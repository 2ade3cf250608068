package processing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aggregateCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "albion_aggregate_cache_lookups_total",
		Help: "Aggregate cache lookups by result",
	}, []string{"result"})

	aggregationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "albion_aggregation_duration_seconds",
		Help:    "Duration of aggregate computations on a cache miss",
		Buckets: prometheus.DefBuckets,
	}, []string{"function"})

	datasetVersion = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "albion_dataset_version",
		Help: "Version of the installed battle dataset",
	})

	datasetBattles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "albion_dataset_battles",
		Help: "Number of battles in the installed dataset",
	})

	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "albion_refresh_cycles_total",
		Help: "Refresh cycles by result",
	}, []string{"result"})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "albion_refresh_cycle_duration_seconds",
		Help:    "Duration of a full refresh cycle",
		Buckets: prometheus.DefBuckets,
	})

	publishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "albion_publish_failures_total",
		Help: "Failed publications by output",
	}, []string{"output"})

	lastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "albion_last_successful_refresh_timestamp_seconds",
		Help: "Unix time of the last successful refresh cycle",
	})
)
