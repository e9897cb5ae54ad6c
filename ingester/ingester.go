package ingester

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-errors/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/railgun-community/railgun-ingester/lib/rangequeue"
	"github.com/railgun-community/railgun-ingester/models"
)

type Ingester interface {
	// Run fetches block ranges from startBlock onwards with Config.Concurrency workers and passes every
	// fetched chunk to handler, one at a time and in ascending block order.
	// It blocks until:
	//	- the context is cancelled
	//	- Cancel is called
	//	- the range ending at Config.TargetBlock has been handled
	//	- a fatal error occurs
	Run(ctx context.Context, startBlock int64, handler ChunkHandler) error

	// Cancel asks the workers to stop at the top of their next iteration. In-flight fetches complete.
	Cancel()

	Info() models.IngestProgress

	Close() error
}

// ChunkHandler decodes and persists one fetched chunk. A returned error stops the run.
type ChunkHandler func(ctx context.Context, chunk models.ChunkResult) error

const (
	defaultReportProgressInterval = 30 * time.Second
	minIdleDelay                  = 500 * time.Millisecond
	minProviderWait               = 250 * time.Millisecond
)

var ErrFinished = errors.New("reached target block")

type Config struct {
	ChainID         int64
	Concurrency     int
	ContractAddress string
	Topics          []string
	// TargetBlock is the last block to ingest; zero or negative follows the chain tip forever.
	TargetBlock            int64
	Retry                  RetryPolicy
	RateLimitBackoff       time.Duration
	ReportProgressInterval time.Duration
}

type ingester struct {
	log       *slog.Logger
	cfg       Config
	pool      *ProviderPool
	scheduler *Scheduler
	fetcher   *Fetcher
	workers   *ants.Pool
	info      *Info
	cancelled atomic.Bool

	// mu guards the cursor and the retry queue
	mu        sync.Mutex
	nextBlock int64
	retries   *rangequeue.Queue[models.BlockRange]
}

func New(log *slog.Logger, pool *ProviderPool, scheduler *Scheduler, cfg Config) (Ingester, error) {
	if cfg.Concurrency <= 0 {
		return nil, errors.Errorf("concurrency must be > 0")
	}
	if pool.Size() == 0 {
		return nil, errors.Errorf("at least one provider is required")
	}
	if cfg.ReportProgressInterval == 0 {
		cfg.ReportProgressInterval = defaultReportProgressInterval
	}
	workers, err := ants.NewPool(cfg.Concurrency * 4)
	if err != nil {
		return nil, errors.Errorf("failed to create fetch worker pool: %w", err)
	}
	return &ingester{
		log:       log.With("module", "ingester"),
		cfg:       cfg,
		pool:      pool,
		scheduler: scheduler,
		fetcher:   NewFetcher(cfg.ContractAddress, cfg.Topics, cfg.Retry, workers),
		workers:   workers,
		info:      NewInfo(cfg.ChainID),
		retries:   rangequeue.New[models.BlockRange](),
	}, nil
}

func (i *ingester) Cancel() {
	i.cancelled.Store(true)
}

func (i *ingester) Info() models.IngestProgress {
	return i.info.ToProgressReport()
}

func (i *ingester) Close() error {
	i.log.Info("Closing providers", "ingestedBlockNumber", i.info.IngestedBlockNumber.Load())
	i.workers.Release()
	return i.pool.Close()
}

func (c Config) hasTarget() bool {
	return c.TargetBlock > 0
}
