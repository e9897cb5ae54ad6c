package ingester

import (
	"context"
	"fmt"
	"time"

	"github.com/go-errors/errors"
	"github.com/railgun-community/railgun-ingester/lib/rangequeue"
	"github.com/railgun-community/railgun-ingester/models"
	"golang.org/x/sync/errgroup"
)

// Run fetches block ranges and hands them in order to the chunk handler.
//
// workerLoop x Concurrency (chunks channel) -> SendChunks -> handler
//
// Every worker pulls its own range under the cursor lock, so no range is handed out twice.
// Fetched chunks may complete out of order; SendChunks buffers them by first block
// until they can be handled contiguously.
func (i *ingester) Run(ctx context.Context, startBlock int64, handler ChunkHandler) error {
	if i.cfg.hasTarget() && startBlock > i.cfg.TargetBlock {
		i.log.Info("Nothing to ingest", "startBlockNumber", startBlock, "targetBlockNumber", i.cfg.TargetBlock)
		return nil
	}
	i.mu.Lock()
	i.nextBlock = startBlock
	i.mu.Unlock()
	i.info.IngestedBlockNumber.Store(startBlock - 1)
	ingestedBlockGauge.Set(float64(startBlock - 1))

	errGroup, ctx := errgroup.WithContext(ctx)
	progressCtx, stopProgress := context.WithCancel(ctx)
	defer stopProgress()

	// Buffered so that fetching continues while the handler persists a chunk,
	// small so that a stuck range exerts backpressure on the workers.
	chunks := make(chan models.ChunkResult, i.cfg.Concurrency)

	workerGroup, workerCtx := errgroup.WithContext(ctx)
	for w := range i.cfg.Concurrency {
		workerGroup.Go(func() error {
			return i.workerLoop(workerCtx, w, chunks)
		})
	}
	errGroup.Go(func() error {
		defer close(chunks)
		return workerGroup.Wait()
	})
	errGroup.Go(func() error {
		err := i.SendChunks(ctx, chunks, startBlock, handler)
		if err == nil {
			// all workers have stopped
			stopProgress()
		}
		return err
	})
	errGroup.Go(func() error {
		err := i.ReportProgress(progressCtx)
		if ctx.Err() == nil {
			return nil
		}
		return err
	})

	i.log.Info("Starting ingester",
		"runForever", !i.cfg.hasTarget(),
		"startBlockNumber", startBlock,
		"targetBlockNumber", i.cfg.TargetBlock,
		"concurrency", i.cfg.Concurrency,
		"providers", i.pool.Size(),
	)

	err := errGroup.Wait()
	switch {
	case errors.Is(err, ErrFinished):
		i.log.Info("Reached target block", "targetBlockNumber", i.cfg.TargetBlock)
		return nil
	case err == nil:
		i.log.Info("Ingester cancelled", "ingestedBlockNumber", i.info.IngestedBlockNumber.Load())
	}
	return err
}

// workerLoop repeatedly acquires a provider, pulls a range and fetches it. It runs in Concurrency goroutines.
func (i *ingester) workerLoop(ctx context.Context, worker int, chunks chan<- models.ChunkResult) error {
	idleDelay := max(minIdleDelay, i.cfg.Retry.RetryDelay)
	log := i.log.With("worker", worker)
	for {
		if i.cancelled.Load() {
			log.Debug("workerLoop: cancelled, stopping")
			return nil
		}
		provider, err := i.waitForProvider(ctx)
		if err != nil {
			return err
		}
		if provider == nil {
			log.Debug("workerLoop: cancelled while waiting for a provider, stopping")
			return nil
		}

		latest, err := provider.Client.LatestBlockNumber(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			i.pool.ReportFailure(provider, 0)
			i.info.Errors.ObserveRPCError(ErrorInfo{Provider: provider.Label, Error: err})
			log.Warn("Failed to get latest block number", "provider", provider.Label, "error", err)
			if err := sleep(ctx, i.cfg.Retry.RetryDelay); err != nil {
				return err
			}
			continue
		}
		i.observeLatestBlock(latest)

		item, ok := i.pullRange(latest)
		if !ok {
			i.pool.ReportSuccess(provider)
			log.Debug("workerLoop: idle", "provider", provider.Label, "nextBlock", i.cursor(), "latestBlockNumber", latest)
			if err := sleep(ctx, idleDelay); err != nil {
				return err
			}
			continue
		}
		rng := item.Value
		log.Debug("Fetching range",
			"provider", provider.Label,
			"fromBlock", rng.FromBlock,
			"toBlock", rng.ToBlock,
			"latestBlockNumber", latest,
		)

		outcome := i.fetcher.FetchChunk(ctx, provider.Client, rng)
		i.scheduler.Feedback(outcome.Duration, outcome.OK)
		if outcome.OK {
			i.pool.ReportSuccess(provider)
			log.Info("Fetched range",
				"provider", provider.Label,
				"fromBlock", rng.FromBlock,
				"toBlock", rng.ToBlock,
				"durationMs", outcome.Duration.Milliseconds(),
				"logs", len(outcome.Result.Logs),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case chunks <- outcome.Result:
			}
			continue
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		var cooldown time.Duration
		if outcome.RateLimited {
			cooldown = i.cfg.RateLimitBackoff
		}
		i.pool.ReportFailure(provider, cooldown)
		i.info.Errors.ObserveRPCError(ErrorInfo{
			BlockNumbers: rangeString(rng),
			Provider:     provider.Label,
			Error:        outcome.Err,
		})
		log.Warn("Failed to fetch range",
			"provider", provider.Label,
			"consecutiveFailures", i.pool.ConsecutiveFailures(provider),
			"fromBlock", rng.FromBlock,
			"toBlock", rng.ToBlock,
			"retries", item.Retries,
			"retryable", outcome.Retryable,
			"rateLimited", outcome.RateLimited,
			"error", outcome.Err,
		)
		if err := i.handleFailure(item, outcome); err != nil {
			log.Error("Fatal fetch error, stopping", "error", err)
			return err
		}
	}
}

// handleFailure requeues a retryable range at the front, split in halves no smaller than the
// scheduler minimum.
func (i *ingester) handleFailure(item rangequeue.Item[models.BlockRange], outcome Outcome) error {
	rng := item.Value
	if !outcome.Retryable {
		return errors.Errorf("fetching blocks %d-%d: %w", rng.FromBlock, rng.ToBlock, outcome.Err)
	}
	reducedSize := max(i.scheduler.Min(), rng.Size()/2)
	i.requeueFront(item.Retries+1, rng.Split(reducedSize)...)
	return nil
}

// pullRange returns the next range to fetch: a requeued one if any, else a fresh range carved from the
// cursor and capped at min(target, latest).
func (i *ingester) pullRange(latest int64) (rangequeue.Item[models.BlockRange], bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if item, ok := i.retries.PopFront(); ok {
		retryQueueGauge.Set(float64(i.retries.Size()))
		return item, true
	}
	upper := latest
	if i.cfg.hasTarget() {
		upper = min(upper, i.cfg.TargetBlock)
	}
	if i.nextBlock > upper {
		return rangequeue.Item[models.BlockRange]{}, false
	}
	from := i.nextBlock
	to := min(upper, from+i.scheduler.Next()-1)
	i.nextBlock = to + 1
	return rangequeue.Item[models.BlockRange]{Value: models.BlockRange{FromBlock: from, ToBlock: to}}, true
}

func (i *ingester) requeueFront(retries int, ranges ...models.BlockRange) {
	items := make([]rangequeue.Item[models.BlockRange], len(ranges))
	for j, r := range ranges {
		items[j] = rangequeue.Item[models.BlockRange]{Value: r, Retries: retries}
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.retries.PushFront(items...)
	retryQueueGauge.Set(float64(i.retries.Size()))
}

func (i *ingester) cursor() int64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.nextBlock
}

// waitForProvider polls the pool until a provider leaves cooldown. It returns a nil provider
// once the ingester is cancelled.
func (i *ingester) waitForProvider(ctx context.Context) (*Provider, error) {
	wait := max(minProviderWait, i.cfg.Retry.RetryDelay)
	for {
		if i.cancelled.Load() {
			return nil, nil
		}
		if provider := i.pool.Acquire(); provider != nil {
			return provider, nil
		}
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func (i *ingester) observeLatestBlock(latest int64) {
	for {
		current := i.info.LatestBlockNumber.Load()
		if latest <= current {
			return
		}
		if i.info.LatestBlockNumber.CompareAndSwap(current, latest) {
			latestBlockGauge.Set(float64(latest))
			return
		}
	}
}

func (i *ingester) ReportProgress(ctx context.Context) error {
	timer := time.NewTicker(i.cfg.ReportProgressInterval)
	defer timer.Stop()

	previousTime := time.Now()
	previousHoursToCatchUp := float64(0)
	previousIngested := i.info.IngestedBlockNumber.Load()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tNow := <-timer.C:
			latest := i.info.LatestBlockNumber.Load()
			lastIngested := i.info.IngestedBlockNumber.Load()

			blocksPerSec := float64(lastIngested-previousIngested) / tNow.Sub(previousTime).Seconds()
			newDistance := latest - lastIngested

			fields := []interface{}{
				"blocksPerSec", fmt.Sprintf("%.2f", blocksPerSec),
				"latestBlockNumber", latest,
				"ingestedBlockNumber", lastIngested,
				"chunkSize", i.scheduler.Next(),
			}
			if newDistance > 1 && blocksPerSec > 0 {
				etaHours := time.Duration(float64(newDistance) / blocksPerSec * float64(time.Second)).Hours()
				fields = append(fields, "hoursToCatchUp", fmt.Sprintf("%.1f", etaHours))
				if previousHoursToCatchUp < (0.8 * etaHours) {
					fields = append(fields, "fallingBehind", true)
				}
				previousHoursToCatchUp = etaHours
			}
			rpcErrors, persistErrors := i.info.Errors.Counts()
			if rpcErrors > 0 {
				fields = append(fields, "rpcErrors", rpcErrors)
			}
			if persistErrors > 0 {
				fields = append(fields, "persistErrors", persistErrors)
			}

			i.log.Info("PROGRESS REPORT", fields...)
			previousIngested = lastIngested
			previousTime = tNow
			i.info.ResetErrors()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
