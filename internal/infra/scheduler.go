package infra

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"wbtxdash/internal/domain"
)

// CacheSweeper evicts expired entries from an in-process cache
type CacheSweeper interface {
	Sweep() int
}

// FencePruner drops request generation counters idle since before a cutoff
type FencePruner interface {
	Prune(before time.Time) int
}

// Scheduler runs the housekeeping jobs: expired session tokens, cached
// queries and abandoned fence counters are removed every minute
type Scheduler struct {
	cron      *cron.Cron
	tokens    domain.TokenStore
	cache     CacheSweeper
	fence     FencePruner
	fenceIdle time.Duration
	log       logrus.FieldLogger
}

// NewScheduler creates a scheduler. cache may be nil when the query cache
// lives in Redis. Fence counters untouched for longer than fenceIdle belong
// to sessions that can no longer be valid.
func NewScheduler(tokens domain.TokenStore, cache CacheSweeper, fence FencePruner, fenceIdle time.Duration, logger logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		tokens:    tokens,
		cache:     cache,
		fence:     fence,
		fenceIdle: fenceIdle,
		log:       logger.WithField("component", "scheduler"),
	}
}

// Start registers the jobs and starts the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@every 1m", s.RunNow); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Scheduler started: janitor every 1m")
	return nil
}

// RunNow performs one janitor pass
func (s *Scheduler) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()
	removed, err := s.tokens.DeleteExpired(ctx, now)
	if err != nil {
		s.log.WithError(err).Error("Expired token sweep failed")
	}

	evicted := 0
	if s.cache != nil {
		evicted = s.cache.Sweep()
	}

	pruned := 0
	if s.fence != nil && s.fenceIdle > 0 {
		pruned = s.fence.Prune(now.Add(-s.fenceIdle))
	}

	if removed > 0 || evicted > 0 || pruned > 0 {
		s.log.WithFields(logrus.Fields{
			"tokens":  removed,
			"queries": evicted,
			"fences":  pruned,
		}).Debug("Janitor pass")
	}
}

// Stop stops the scheduler gracefully, waiting for a running job
func (s *Scheduler) Stop() {
	s.log.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}
