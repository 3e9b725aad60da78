package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DatasetLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_dataset_loads_total",
		Help: "The total number of dataset loads by source and status",
	}, []string{"source", "status"})

	DatasetLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulse_dataset_load_duration_seconds",
		Help:    "Duration of dataset loads including parsing and normalization",
		Buckets: prometheus.DefBuckets,
	})

	DatasetRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulse_dataset_rows",
		Help: "Number of rows in the most recently loaded table",
	})

	DatasetCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_dataset_cache_hits_total",
		Help: "The total number of load cache hits",
	})

	DatasetCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pulse_dataset_cache_misses_total",
		Help: "The total number of load cache misses",
	})

	RefreshRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_refresh_runs_total",
		Help: "The total number of refresh runs by status",
	}, []string{"status"})

	RefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pulse_refresh_duration_seconds",
		Help:    "Duration of a full refresh run (load, pipeline, presentation)",
		Buckets: prometheus.DefBuckets,
	})

	FilteredPosts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulse_filtered_posts",
		Help: "Number of posts passing the current filters",
	})

	MeanTrendingScore = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulse_mean_trending_score",
		Help: "Mean trending score of filtered posts",
	})

	SelectedCommunities = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pulse_selected_communities",
		Help: "Number of communities covered by the current filters",
	})

	UploadsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pulse_uploads_total",
		Help: "The total number of CSV uploads by status",
	}, []string{"status"})
)
