package ingester

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-errors/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/railgun-community/railgun-ingester/client/jsonrpc"
	"github.com/railgun-community/railgun-ingester/models"
	"golang.org/x/sync/errgroup"
)

// FetchBatchSize is the number of blocks or transactions requested per batch call.
const FetchBatchSize = 50

type RetryPolicy struct {
	MaxRetries int
	RetryDelay time.Duration
}

// Outcome is the result of fetching one range. Duration is set on failure too.
type Outcome struct {
	Range       models.BlockRange
	Result      models.ChunkResult
	Duration    time.Duration
	OK          bool
	Err         error
	Retryable   bool
	RateLimited bool
}

// Classify reports whether err is worth retrying and whether it signals a rate limit.
func Classify(err error) (retryable bool, rateLimited bool) {
	if err == nil || errors.Is(err, context.Canceled) {
		return false, false
	}
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		switch rpcErr.Code {
		case -32005, -32016:
			return true, true
		case -32000, -32603:
			return true, false
		}
		return false, false
	}
	var httpErr *jsonrpc.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == 429:
			return true, true
		case httpErr.StatusCode >= 500:
			return true, false
		}
		return false, false
	}
	if errors.Is(err, jsonrpc.ErrTransport) {
		return true, false
	}
	return false, false
}

// executeWithRetries runs op until it succeeds, fails with a non-retryable error,
// or policy.MaxRetries retries are spent.
func executeWithRetries[T any](ctx context.Context, policy RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		res, err := op(ctx)
		if err == nil {
			return res, nil
		}
		if retryable, _ := Classify(err); !retryable || attempt >= policy.MaxRetries {
			return zero, err
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(policy.RetryDelay * time.Duration(max(1, attempt+1))):
		}
	}
}

// Fetcher downloads the logs of one contract for a block range, plus the blocks and
// transactions those logs reference.
type Fetcher struct {
	address string
	topics  []string
	retry   RetryPolicy
	workers *ants.Pool
}

// NewFetcher returns a fetcher; batch calls run on workers, or inline when workers is nil.
func NewFetcher(address string, topics []string, retry RetryPolicy, workers *ants.Pool) *Fetcher {
	return &Fetcher{address: address, topics: topics, retry: retry, workers: workers}
}

func (f *Fetcher) FetchChunk(ctx context.Context, client jsonrpc.BlockchainClient, rng models.BlockRange) Outcome {
	t0 := time.Now()
	result, err := f.fetch(ctx, client, rng)
	outcome := Outcome{Range: rng, Result: result, Duration: time.Since(t0), OK: err == nil, Err: err}
	if err != nil {
		outcome.Retryable, outcome.RateLimited = Classify(err)
	}
	observeFetch(client.Label(), outcome)
	return outcome
}

func (f *Fetcher) fetch(ctx context.Context, client jsonrpc.BlockchainClient, rng models.BlockRange) (models.ChunkResult, error) {
	filter := jsonrpc.LogFilter{
		FromBlock: rng.FromBlock,
		ToBlock:   rng.ToBlock,
		Address:   f.address,
		Topics:    f.topics,
	}
	logs, err := executeWithRetries(ctx, f.retry, func(ctx context.Context) ([]models.RawLog, error) {
		return client.GetLogs(ctx, filter)
	})
	if err != nil {
		return models.ChunkResult{}, errors.Errorf("eth_getLogs %d-%d: %w", rng.FromBlock, rng.ToBlock, err)
	}

	logs = slices.DeleteFunc(logs, func(l models.RawLog) bool { return l.Removed })
	blockNumbers, txHashes := referencedBy(logs)
	result := models.ChunkResult{
		Range:        rng,
		Logs:         logs,
		Blocks:       make(map[int64]models.RawBlock, len(blockNumbers)),
		Transactions: make(map[common.Hash]models.RawTransaction, len(txHashes)),
	}
	if len(logs) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	tasks := make([]func(context.Context) error, 0, len(blockNumbers)/FetchBatchSize+len(txHashes)/FetchBatchSize+2)
	for batch := range slices.Chunk(blockNumbers, FetchBatchSize) {
		tasks = append(tasks, func(ctx context.Context) error {
			blocks, err := executeWithRetries(ctx, f.retry, func(ctx context.Context) (map[int64]models.RawBlock, error) {
				return client.BlocksByNumber(ctx, batch)
			})
			if err != nil {
				return errors.Errorf("eth_getBlockByNumber %d..%d: %w", batch[0], batch[len(batch)-1], err)
			}
			mu.Lock()
			defer mu.Unlock()
			for n, b := range blocks {
				result.Blocks[n] = b
			}
			return nil
		})
	}
	for batch := range slices.Chunk(txHashes, FetchBatchSize) {
		tasks = append(tasks, func(ctx context.Context) error {
			txs, err := executeWithRetries(ctx, f.retry, func(ctx context.Context) (map[common.Hash]models.RawTransaction, error) {
				return client.TransactionsByHash(ctx, batch)
			})
			if err != nil {
				return errors.Errorf("eth_getTransactionByHash (%d hashes): %w", len(batch), err)
			}
			mu.Lock()
			defer mu.Unlock()
			for h, tx := range txs {
				result.Transactions[h] = tx
			}
			return nil
		})
	}
	if err := f.run(ctx, tasks); err != nil {
		return models.ChunkResult{}, err
	}
	for _, n := range blockNumbers {
		if _, ok := result.Blocks[n]; !ok {
			return models.ChunkResult{}, errors.Errorf("%w: block %d referenced by logs was not returned", jsonrpc.ErrTransport, n)
		}
	}
	for _, h := range txHashes {
		if _, ok := result.Transactions[h]; !ok {
			return models.ChunkResult{}, errors.Errorf("%w: transaction %s referenced by logs was not returned", jsonrpc.ErrTransport, h.Hex())
		}
	}
	return result, nil
}

// run executes tasks concurrently and returns the first error.
func (f *Fetcher) run(ctx context.Context, tasks []func(context.Context) error) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		if f.workers == nil {
			group.Go(func() error { return task(groupCtx) })
			continue
		}
		group.Go(func() error {
			done := make(chan error, 1)
			if err := f.workers.Submit(func() { done <- task(groupCtx) }); err != nil {
				return errors.Errorf("submit fetch task: %w", err)
			}
			return <-done
		})
	}
	return group.Wait()
}

// referencedBy returns the distinct block numbers (ascending) and transaction hashes
// (first-seen order) of logs.
func referencedBy(logs []models.RawLog) ([]int64, []common.Hash) {
	seenBlocks := make(map[int64]struct{}, len(logs))
	seenTxs := make(map[common.Hash]struct{}, len(logs))
	var blockNumbers []int64
	var txHashes []common.Hash
	for _, l := range logs {
		n := int64(l.BlockNumber)
		if _, ok := seenBlocks[n]; !ok {
			seenBlocks[n] = struct{}{}
			blockNumbers = append(blockNumbers, n)
		}
		if _, ok := seenTxs[l.TransactionHash]; !ok {
			seenTxs[l.TransactionHash] = struct{}{}
			txHashes = append(txHashes, l.TransactionHash)
		}
	}
	slices.Sort(blockNumbers)
	return blockNumbers, txHashes
}

func rangeString(r models.BlockRange) string {
	return strconv.FormatInt(r.FromBlock, 10) + "-" + strconv.FormatInt(r.ToBlock, 10)
}
