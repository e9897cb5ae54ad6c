package ingester_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/go-errors/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/railgun-community/railgun-ingester/client/jsonrpc"
	"github.com/railgun-community/railgun-ingester/ingester"
	jsonrpc_mock "github.com/railgun-community/railgun-ingester/mocks/jsonrpc"
	"github.com/railgun-community/railgun-ingester/models"
	"github.com/stretchr/testify/require"
)

const contract = "0xfa7093cdd9ee6932b4eb2c9e1cde7ce00b1fa4b9"

func TestClassify(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		retryable   bool
		rateLimited bool
	}{
		{"limit exceeded", &jsonrpc.RPCError{Code: -32005}, true, true},
		{"rate limited", &jsonrpc.RPCError{Code: -32016}, true, true},
		{"server error", &jsonrpc.RPCError{Code: -32000}, true, false},
		{"internal error", &jsonrpc.RPCError{Code: -32603}, true, false},
		{"invalid params", &jsonrpc.RPCError{Code: -32602}, false, false},
		{"wrapped rpc error", errors.Errorf("eth_getLogs: %w", &jsonrpc.RPCError{Code: -32005}), true, true},
		{"http 429", &jsonrpc.HTTPError{StatusCode: 429}, true, true},
		{"http 502", &jsonrpc.HTTPError{StatusCode: 502}, true, false},
		{"http 403", &jsonrpc.HTTPError{StatusCode: 403}, false, false},
		{"transport", errors.Errorf("%w: connection reset", jsonrpc.ErrTransport), true, false},
		{"missing batch entry", jsonrpc.ErrMissingBatchResponse, false, false},
		{"cancelled", context.Canceled, false, false},
		{"other", errors.New("abi: cannot unmarshal"), false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			retryable, rateLimited := ingester.Classify(tc.err)
			require.Equal(t, tc.retryable, retryable)
			require.Equal(t, tc.rateLimited, rateLimited)
		})
	}
}

func testLog(block int64, txIndex uint64, logIndex uint64, txHash common.Hash) models.RawLog {
	return models.RawLog{
		Address:          common.HexToAddress(contract),
		BlockNumber:      hexutil.Uint64(block),
		TransactionHash:  txHash,
		TransactionIndex: hexutil.Uint64(txIndex),
		LogIndex:         hexutil.Uint64(logIndex),
	}
}

func blocksFor(numbers []int64) map[int64]models.RawBlock {
	blocks := make(map[int64]models.RawBlock, len(numbers))
	for _, n := range numbers {
		blocks[n] = models.RawBlock{Number: hexutil.Uint64(n), Timestamp: hexutil.Uint64(1_700_000_000 + n)}
	}
	return blocks
}

func txsFor(hashes []common.Hash) map[common.Hash]models.RawTransaction {
	txs := make(map[common.Hash]models.RawTransaction, len(hashes))
	for _, h := range hashes {
		txs[h] = models.RawTransaction{Hash: h}
	}
	return txs
}

func TestFetchChunkBatchesReferencedBlocksAndTransactions(t *testing.T) {
	var logs []models.RawLog
	for n := int64(0); n < 60; n++ {
		txHash := common.BytesToHash([]byte{byte(n + 1)})
		// two logs per transaction
		logs = append(logs, testLog(1000+n, 0, 0, txHash), testLog(1000+n, 0, 1, txHash))
	}
	client := &jsonrpc_mock.BlockchainClientMock{
		LabelFunc: func() string { return "p1" },
		GetLogsFunc: func(_ context.Context, filter jsonrpc.LogFilter) ([]models.RawLog, error) {
			require.Equal(t, int64(1000), filter.FromBlock)
			require.Equal(t, int64(1999), filter.ToBlock)
			require.Equal(t, contract, filter.Address)
			return logs, nil
		},
		BlocksByNumberFunc: func(_ context.Context, numbers []int64) (map[int64]models.RawBlock, error) {
			require.LessOrEqual(t, len(numbers), ingester.FetchBatchSize)
			return blocksFor(numbers), nil
		},
		TransactionsByHashFunc: func(_ context.Context, hashes []common.Hash) (map[common.Hash]models.RawTransaction, error) {
			require.LessOrEqual(t, len(hashes), ingester.FetchBatchSize)
			return txsFor(hashes), nil
		},
	}
	workers, err := ants.NewPool(4)
	require.NoError(t, err)
	defer workers.Release()

	fetcher := ingester.NewFetcher(contract, []string{"0x01"}, ingester.RetryPolicy{}, workers)
	outcome := fetcher.FetchChunk(context.Background(), client, models.BlockRange{FromBlock: 1000, ToBlock: 1999})
	require.True(t, outcome.OK)
	require.NoError(t, outcome.Err)
	require.Len(t, outcome.Result.Logs, 120)
	require.Len(t, outcome.Result.Blocks, 60)
	require.Len(t, outcome.Result.Transactions, 60)
	require.Len(t, client.BlocksByNumberCalls(), 2)
	require.Len(t, client.TransactionsByHashCalls(), 2)
	require.Equal(t, models.BlockRange{FromBlock: 1000, ToBlock: 1999}, outcome.Result.Range)
}

func TestFetchChunkEmptyRange(t *testing.T) {
	client := &jsonrpc_mock.BlockchainClientMock{
		LabelFunc: func() string { return "p1" },
		GetLogsFunc: func(_ context.Context, _ jsonrpc.LogFilter) ([]models.RawLog, error) {
			return nil, nil
		},
	}
	fetcher := ingester.NewFetcher(contract, nil, ingester.RetryPolicy{}, nil)
	outcome := fetcher.FetchChunk(context.Background(), client, models.BlockRange{FromBlock: 1, ToBlock: 10})
	require.True(t, outcome.OK)
	require.Empty(t, outcome.Result.Logs)
	require.Empty(t, client.BlocksByNumberCalls())
	require.Empty(t, client.TransactionsByHashCalls())
}

func TestFetchChunkRetriesRetryableErrors(t *testing.T) {
	var calls atomic.Int32
	txHash := common.HexToHash("0xaa")
	client := &jsonrpc_mock.BlockchainClientMock{
		LabelFunc: func() string { return "p1" },
		GetLogsFunc: func(_ context.Context, _ jsonrpc.LogFilter) ([]models.RawLog, error) {
			if calls.Add(1) < 3 {
				return nil, &jsonrpc.RPCError{Code: -32000, Message: "timeout"}
			}
			return []models.RawLog{testLog(5, 1, 2, txHash)}, nil
		},
		BlocksByNumberFunc: func(_ context.Context, numbers []int64) (map[int64]models.RawBlock, error) {
			return blocksFor(numbers), nil
		},
		TransactionsByHashFunc: func(_ context.Context, hashes []common.Hash) (map[common.Hash]models.RawTransaction, error) {
			return txsFor(hashes), nil
		},
	}
	fetcher := ingester.NewFetcher(contract, nil, ingester.RetryPolicy{MaxRetries: 3, RetryDelay: time.Millisecond}, nil)
	outcome := fetcher.FetchChunk(context.Background(), client, models.BlockRange{FromBlock: 1, ToBlock: 10})
	require.True(t, outcome.OK)
	require.Equal(t, int32(3), calls.Load())
	require.Contains(t, outcome.Result.Transactions, txHash)
}

func TestFetchChunkRateLimitedAfterRetries(t *testing.T) {
	client := &jsonrpc_mock.BlockchainClientMock{
		LabelFunc: func() string { return "p1" },
		GetLogsFunc: func(_ context.Context, _ jsonrpc.LogFilter) ([]models.RawLog, error) {
			return nil, &jsonrpc.RPCError{Code: -32005, Message: "query returned more than 10000 results"}
		},
	}
	fetcher := ingester.NewFetcher(contract, nil, ingester.RetryPolicy{MaxRetries: 2, RetryDelay: time.Millisecond}, nil)
	outcome := fetcher.FetchChunk(context.Background(), client, models.BlockRange{FromBlock: 1, ToBlock: 10})
	require.False(t, outcome.OK)
	require.True(t, outcome.Retryable)
	require.True(t, outcome.RateLimited)
	require.True(t, outcome.Duration > 0)
	require.Len(t, client.GetLogsCalls(), 3)
}

func TestFetchChunkFatalErrorIsNotRetried(t *testing.T) {
	client := &jsonrpc_mock.BlockchainClientMock{
		LabelFunc: func() string { return "p1" },
		GetLogsFunc: func(_ context.Context, _ jsonrpc.LogFilter) ([]models.RawLog, error) {
			return nil, &jsonrpc.RPCError{Code: -32602, Message: "invalid params"}
		},
	}
	fetcher := ingester.NewFetcher(contract, nil, ingester.RetryPolicy{MaxRetries: 5, RetryDelay: time.Millisecond}, nil)
	outcome := fetcher.FetchChunk(context.Background(), client, models.BlockRange{FromBlock: 1, ToBlock: 10})
	require.False(t, outcome.OK)
	require.False(t, outcome.Retryable)
	require.Len(t, client.GetLogsCalls(), 1)
}

func TestFetchChunkMissingBlockIsRetryable(t *testing.T) {
	client := &jsonrpc_mock.BlockchainClientMock{
		LabelFunc: func() string { return "p1" },
		GetLogsFunc: func(_ context.Context, _ jsonrpc.LogFilter) ([]models.RawLog, error) {
			return []models.RawLog{testLog(5, 0, 0, common.HexToHash("0x01"))}, nil
		},
		BlocksByNumberFunc: func(_ context.Context, _ []int64) (map[int64]models.RawBlock, error) {
			return map[int64]models.RawBlock{}, nil
		},
		TransactionsByHashFunc: func(_ context.Context, hashes []common.Hash) (map[common.Hash]models.RawTransaction, error) {
			return txsFor(hashes), nil
		},
	}
	fetcher := ingester.NewFetcher(contract, nil, ingester.RetryPolicy{}, nil)
	outcome := fetcher.FetchChunk(context.Background(), client, models.BlockRange{FromBlock: 1, ToBlock: 10})
	require.False(t, outcome.OK)
	require.True(t, outcome.Retryable)
}
