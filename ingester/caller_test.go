package ingester_test

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/railgun-community/railgun-ingester/client/jsonrpc"
	"github.com/railgun-community/railgun-ingester/ingester"
	jsonrpc_mock "github.com/railgun-community/railgun-ingester/mocks/jsonrpc"
	"github.com/stretchr/testify/require"
)

func callClient(label string, out [][]byte, err error) *jsonrpc_mock.BlockchainClientMock {
	return &jsonrpc_mock.BlockchainClientMock{
		LabelFunc: func() string { return label },
		CallContractFunc: func(_ context.Context, _ common.Address, _ [][]byte) ([][]byte, error) {
			return out, err
		},
	}
}

func TestPoolCallerRotatesProviders(t *testing.T) {
	failing := callClient("p1", nil, &jsonrpc.RPCError{Code: -32005, Message: "rate limited"})
	healthy := callClient("p2", [][]byte{{0x2a}}, nil)
	pool := ingester.NewProviderPool([]jsonrpc.BlockchainClient{failing, healthy}, time.Second)
	caller := ingester.PoolCaller{
		Pool:             pool,
		Retry:            ingester.RetryPolicy{MaxRetries: 2, RetryDelay: time.Millisecond},
		RateLimitBackoff: time.Minute,
	}

	out, err := caller.CallContract(context.Background(), common.HexToAddress("0x01"), [][]byte{{0x01}})
	require.NoError(t, err)
	require.Equal(t, [][]byte{{0x2a}}, out)
	require.Len(t, failing.CallContractCalls(), 1)
	require.Len(t, healthy.CallContractCalls(), 1)
}

func TestPoolCallerFatalError(t *testing.T) {
	reverted := callClient("p1", nil, &jsonrpc.RPCError{Code: 3, Message: "execution reverted"})
	pool := ingester.NewProviderPool([]jsonrpc.BlockchainClient{reverted}, time.Millisecond)
	caller := ingester.PoolCaller{Pool: pool, Retry: ingester.RetryPolicy{MaxRetries: 3, RetryDelay: time.Millisecond}}

	_, err := caller.CallContract(context.Background(), common.HexToAddress("0x01"), [][]byte{{0x01}})
	require.Error(t, err)
	require.Len(t, reverted.CallContractCalls(), 1)
}
