package ingester

import (
	"sync"
	"time"

	"github.com/railgun-community/railgun-ingester/client/jsonrpc"
)

const DefaultProviderCooldown = 5 * time.Second

type Provider struct {
	Client jsonrpc.BlockchainClient
	Label  string

	cooldownUntil       time.Time
	consecutiveFailures int
}

// ProviderPool hands out endpoints round-robin, skipping those in cooldown.
type ProviderPool struct {
	mu        sync.Mutex
	providers []*Provider
	cursor    int
	cooldown  time.Duration
	now       func() time.Time
}

func NewProviderPool(clients []jsonrpc.BlockchainClient, cooldown time.Duration) *ProviderPool {
	if cooldown <= 0 {
		cooldown = DefaultProviderCooldown
	}
	providers := make([]*Provider, len(clients))
	for i, c := range clients {
		providers[i] = &Provider{Client: c, Label: c.Label()}
	}
	return &ProviderPool{providers: providers, cooldown: cooldown, now: time.Now}
}

// Acquire returns the next provider not in cooldown, or nil when all of them are cooling down.
func (p *ProviderPool) Acquire() *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for offset := range p.providers {
		idx := (p.cursor + offset) % len(p.providers)
		candidate := p.providers[idx]
		if candidate.cooldownUntil.After(now) {
			continue
		}
		p.cursor = idx + 1
		return candidate
	}
	return nil
}

func (p *ProviderPool) ReportSuccess(provider *Provider) {
	p.mu.Lock()
	defer p.mu.Unlock()
	provider.consecutiveFailures = 0
	provider.cooldownUntil = time.Time{}
}

// ReportFailure puts the provider in cooldown. A zero override uses the pool default.
func (p *ProviderPool) ReportFailure(provider *Provider, override time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cooldown := p.cooldown
	if override > 0 {
		cooldown = override
	}
	provider.consecutiveFailures++
	provider.cooldownUntil = p.now().Add(cooldown)
	providerFailures.WithLabelValues(provider.Label).Inc()
}

func (p *ProviderPool) ConsecutiveFailures(provider *Provider) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return provider.consecutiveFailures
}

func (p *ProviderPool) Size() int {
	return len(p.providers)
}

func (p *ProviderPool) Close() error {
	var firstErr error
	for _, provider := range p.providers {
		if err := provider.Client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
