// Package cleanup runs the periodic guest-account sweep: guest users inactive
// past the retention window are deleted with their posts, likes, comments,
// and notifications.
package cleanup

import (
	"context"
	"time"

	"github.com/peerwave/backend/internal/logger"
	"github.com/peerwave/backend/internal/metrics"
	"github.com/peerwave/backend/internal/social"
	"go.uber.org/zap"
)

// Service sweeps stale guest accounts on a fixed interval. Failures are
// logged and never stop the schedule.
type Service struct {
	engine    *social.Engine
	interval  time.Duration
	retention time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewService creates a sweeper. interval is how often it runs (6h in
// production); retention is how long an inactive guest account survives (24h).
func NewService(engine *social.Engine, interval, retention time.Duration) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		engine:    engine,
		interval:  interval,
		retention: retention,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins the periodic sweep in the background.
func (s *Service) Start() {
	logger.Log.Info("starting guest cleanup service",
		zap.Duration("interval", s.interval),
		zap.Duration("retention", s.retention),
	)
	go s.run()
}

// Stop cancels the schedule.
func (s *Service) Stop() {
	s.cancel()
}

func (s *Service) run() {
	// Sweep once at startup, then on the interval.
	s.Sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.ctx.Done():
			return
		}
	}
}

// Sweep runs one cleanup pass. Exported so the admin CLI can trigger it.
func (s *Service) Sweep() {
	start := time.Now()
	cutoff := time.Now().UTC().Add(-s.retention)

	deleted, err := s.engine.CleanupGuests(s.ctx, cutoff)
	if err != nil {
		logger.Log.Error("guest cleanup failed", zap.Error(err))
		return
	}
	if deleted > 0 {
		metrics.Get().GuestAccountsDeleted.Add(float64(deleted))
		logger.Log.Info("guest cleanup completed",
			zap.Int64("deleted", deleted),
			zap.Duration("took", time.Since(start)),
		)
	}
}
