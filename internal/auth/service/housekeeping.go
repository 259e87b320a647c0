package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/diyageorge33/minipro/internal/auth/store"
)

// HousekeepingService periodically deletes expired sessions so the sessions
// table does not grow without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background worker. It is non-blocking; call Stop to
// shut the worker down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-progress cleanup has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce performs a single cleanup pass and returns the number of sessions
// removed.
func (s *HousekeepingService) RunOnce(ctx context.Context) int64 {
	n, err := s.Store.Sessions().DeleteExpiredSessions(ctx, s.Now().UTC())
	if err != nil {
		s.Logger.Error("failed to delete expired sessions", "error", err)
		return 0
	}
	s.Logger.Info("housekeeping cleanup completed", "expired_sessions", n)
	return n
}
