package ingester

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	latestBlockGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "railgun_ingester",
		Name:      "latest_block_number",
		Help:      "The latest known block number for the chain",
	})
	ingestedBlockGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "railgun_ingester",
		Name:      "ingested_block_number",
		Help:      "The highest block number whose chunk was persisted",
	})
	chunkSizeGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "railgun_ingester",
		Name:      "chunk_size",
		Help:      "The current block range size chosen by the scheduler",
	})
	retryQueueGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "railgun_ingester",
		Name:      "retry_queue_size",
		Help:      "The number of block ranges waiting to be refetched",
	})
	pendingChunksGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "railgun_ingester",
		Name:      "pending_chunks",
		Help:      "Fetched chunks buffered until the preceding ranges are handled",
	})
	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "railgun_ingester",
		Name:      "chunk_fetch_duration_seconds",
		Help:      "Duration of fetching one block range",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"provider", "ok", "retryable", "rate_limited"})
	fetchedLogs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "railgun_ingester",
		Name:      "fetched_logs_total",
		Help:      "Number of contract logs fetched",
	}, []string{"provider"})
	providerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "railgun_ingester",
		Name:      "provider_failures_total",
		Help:      "Number of failures reported against a provider",
	}, []string{"provider"})
	chunkHandleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "railgun_ingester",
		Name:      "chunk_handle_duration_seconds",
		Help:      "Duration of decoding and persisting one chunk",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})
)

func observeFetch(provider string, outcome Outcome) {
	fetchDuration.WithLabelValues(
		provider,
		strconv.FormatBool(outcome.OK),
		strconv.FormatBool(outcome.Retryable),
		strconv.FormatBool(outcome.RateLimited),
	).Observe(outcome.Duration.Seconds())
	if outcome.OK {
		fetchedLogs.WithLabelValues(provider).Add(float64(len(outcome.Result.Logs)))
	}
}
