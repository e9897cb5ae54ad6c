package ingester

import (
	"context"
	"time"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/go-errors/errors"
	"github.com/railgun-community/railgun-ingester/models"
)

// SendChunks hands fetched chunks to the handler. We receive chunks from the workerLoop goroutines,
// potentially out of order, and buffer them keyed by first block until there is no gap before them.
// The handler is never called concurrently.
func (i *ingester) SendChunks(
	ctx context.Context, chunks <-chan models.ChunkResult, startBlock int64, handler ChunkHandler,
) error {
	// Buffer for chunks that arrived before the range preceding them
	pending := treemap.NewWith(utils.Int64Comparator)
	nextBlock := startBlock

	i.log.Debug("SendChunks: Starting to receive chunks")
	for {
		select {
		case <-ctx.Done():
			i.log.Debug("SendChunks: Context canceled, stopping")
			return ctx.Err()
		case chunk, ok := <-chunks:
			if !ok {
				i.log.Debug("SendChunks: Channel is closed, returning", "pendingChunks", pending.Size())
				return nil
			}
			pending.Put(chunk.Range.FromBlock, chunk)
			i.log.Debug("SendChunks: Received chunk",
				"fromBlock", chunk.Range.FromBlock,
				"toBlock", chunk.Range.ToBlock,
				"bufferSize", pending.Size(),
			)
			var err error
			nextBlock, err = i.trySendCompletedChunks(ctx, pending, nextBlock, handler)
			pendingChunksGauge.Set(float64(pending.Size()))
			if err != nil {
				return err
			}
		}
	}
}

// trySendCompletedChunks handles every buffered chunk that continues at nextBlock and returns the
// block after the last handled one.
func (i *ingester) trySendCompletedChunks(
	ctx context.Context, pending *treemap.Map, nextBlock int64, handler ChunkHandler,
) (int64, error) {
	for {
		value, ok := pending.Get(nextBlock)
		if !ok {
			return nextBlock, nil
		}
		chunk := value.(models.ChunkResult)
		pending.Remove(nextBlock)

		startTime := time.Now()
		if err := handler(ctx, chunk); err != nil {
			if errors.Is(err, context.Canceled) {
				i.log.Info("SendChunks: Context canceled, stopping")
				return nextBlock, err
			}
			i.info.Errors.ObservePersistError(ErrorInfo{
				BlockNumbers: rangeString(chunk.Range),
				Error:        err,
			})
			i.log.Error("SendChunks: Failed to handle chunk, exiting",
				"fromBlock", chunk.Range.FromBlock,
				"toBlock", chunk.Range.ToBlock,
				"error", err,
			)
			return nextBlock, errors.Errorf("handle blocks %s: %w", rangeString(chunk.Range), err)
		}
		chunkHandleDuration.Observe(time.Since(startTime).Seconds())
		i.info.IngestedBlockNumber.Store(chunk.Range.ToBlock)
		ingestedBlockGauge.Set(float64(chunk.Range.ToBlock))
		i.log.Info("Handled chunk",
			"fromBlock", chunk.Range.FromBlock,
			"toBlock", chunk.Range.ToBlock,
			"logs", len(chunk.Logs),
			"elapsed", time.Since(startTime),
		)
		nextBlock = chunk.Range.ToBlock + 1

		if i.cfg.hasTarget() && chunk.Range.ToBlock >= i.cfg.TargetBlock {
			return nextBlock, ErrFinished
		}
	}
}
