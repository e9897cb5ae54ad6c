package ingester

import "time"

// WithClock replaces the pool's time source.
func (p *ProviderPool) WithClock(now func() time.Time) *ProviderPool {
	p.now = now
	return p
}
