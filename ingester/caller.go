package ingester

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-errors/errors"
)

// PoolCaller runs eth_call batches through the provider pool, acquiring a provider for every attempt.
type PoolCaller struct {
	Pool             *ProviderPool
	Retry            RetryPolicy
	RateLimitBackoff time.Duration
}

func (c PoolCaller) CallContract(ctx context.Context, to common.Address, calldata [][]byte) ([][]byte, error) {
	wait := max(minProviderWait, c.Retry.RetryDelay)
	for attempt := 0; ; {
		provider := c.Pool.Acquire()
		if provider == nil {
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
			continue
		}
		out, err := provider.Client.CallContract(ctx, to, calldata)
		if err == nil {
			c.Pool.ReportSuccess(provider)
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		retryable, rateLimited := Classify(err)
		var cooldown time.Duration
		if rateLimited {
			cooldown = c.RateLimitBackoff
		}
		c.Pool.ReportFailure(provider, cooldown)
		if !retryable || attempt >= c.Retry.MaxRetries {
			return nil, errors.Errorf("eth_call to %s via %s: %w", to.Hex(), provider.Label, err)
		}
		attempt++
		if err := sleep(ctx, c.Retry.RetryDelay*time.Duration(attempt)); err != nil {
			return nil, err
		}
	}
}
