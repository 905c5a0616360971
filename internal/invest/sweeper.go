package invest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Subhash2005/equi-bridge/internal/storage"
)

// Sweeper handles periodic auto-investment for opted-in workers
type Sweeper struct {
	repo     storage.Repository
	interval time.Duration
}

// NewSweeper creates an auto-invest worker
func NewSweeper(repo storage.Repository, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &Sweeper{
		repo:     repo,
		interval: interval,
	}
}

// Start begins the sweeper in a goroutine
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
}

// run is the main loop for the sweeper
func (s *Sweeper) run(ctx context.Context) {
	slog.Info("auto-invest sweeper started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("auto-invest sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep invests one unit for every opted-in worker who can afford it
func (s *Sweeper) sweep(ctx context.Context) {
	slog.Debug("running auto-invest cycle")

	workers, err := s.repo.ListAutoInvestWorkers(ctx, UnitAmount)
	if err != nil {
		slog.Error("failed to list auto-invest workers", "error", err)
		return
	}

	if len(workers) == 0 {
		slog.Debug("no workers eligible for auto-invest")
		return
	}

	slog.Info("found auto-invest workers", "count", len(workers))

	invested := 0
	for _, w := range workers {
		if _, err := Execute(ctx, s.repo, w.UserEmail); err != nil {
			// A concurrent withdrawal can empty the balance between
			// the listing and the invest.
			if errors.Is(err, ErrInsufficientBalance) || errors.Is(err, storage.ErrConflict) {
				slog.Debug("skipping worker, balance changed", "email", w.UserEmail)
				continue
			}
			slog.Error("auto-invest failed", "email", w.UserEmail, "error", err)
			continue
		}
		invested++
	}

	slog.Info("auto-invest cycle complete", "invested", invested, "eligible", len(workers))
}
