package postgres

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	persistDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "railgun_ingester",
		Name:      "persist_duration_seconds",
		Help:      "Duration of writing one decoded batch",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})
	rowsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "railgun_ingester",
		Name:      "rows_written_total",
		Help:      "Number of rows upserted by table",
	}, []string{"table"})
	checkpointBlockGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "railgun_ingester",
		Name:      "checkpoint_block_number",
		Help:      "The block number of the last saved checkpoint",
	})
)
