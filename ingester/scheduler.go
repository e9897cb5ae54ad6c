package ingester

import (
	"math"
	"sync"
	"time"
)

type SchedulerConfig struct {
	Initial           int64
	Min               int64
	Max               int64
	TargetDuration    time.Duration
	BackoffMultiplier float64
	GrowthMultiplier  float64
}

// Scheduler sizes block ranges so that one fetch takes roughly TargetDuration.
// It is shared by all workers.
type Scheduler struct {
	mu      sync.Mutex
	cfg     SchedulerConfig
	current float64
}

func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Min < 1 {
		cfg.Min = 1
	}
	if cfg.Max < cfg.Min {
		cfg.Max = cfg.Min
	}
	s := &Scheduler{cfg: cfg, current: float64(cfg.Initial)}
	s.current = s.clamp(s.current)
	return s
}

// Next returns the size of the next range to carve from the cursor.
func (s *Scheduler) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(s.clamp(math.Floor(s.current)))
}

func (s *Scheduler) Min() int64 {
	return s.cfg.Min
}

// Feedback adjusts the size after a fetch that took d.
func (s *Scheduler) Feedback(d time.Duration, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	minSize, maxSize := float64(s.cfg.Min), float64(s.cfg.Max)
	target := float64(s.cfg.TargetDuration)
	switch {
	case !success:
		s.current = math.Max(minSize, math.Floor(s.current*s.cfg.BackoffMultiplier))
	case float64(d) > target*1.3:
		s.current = math.Max(minSize, math.Floor(s.current*math.Max(0.9, s.cfg.BackoffMultiplier)))
	case float64(d) < target*0.7:
		s.current = math.Min(maxSize, math.Floor(s.current*s.cfg.GrowthMultiplier))
	default:
		s.current = s.clamp(s.current)
	}
	chunkSizeGauge.Set(s.current)
}

func (s *Scheduler) clamp(v float64) float64 {
	return math.Max(float64(s.cfg.Min), math.Min(float64(s.cfg.Max), v))
}
