package store

import (
	"context"
	"log/slog"
	"time"
)

const sweepInterval = 1 * time.Minute

// Sweeper is implemented by stores that need periodic reclamation of expired
// rows (Redis handles expiry natively).
type Sweeper interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// StartSweeper runs a background loop reclaiming expired sessions until the
// context is canceled.
func StartSweeper(ctx context.Context, s Sweeper) {
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Session sweeper stopped")
				return
			case <-ticker.C:
				deleted, err := s.CleanupExpired(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					slog.Error("Session sweep failed", "error", err)
					continue
				}
				if deleted > 0 {
					slog.Info("Expired sessions reclaimed", "count", deleted)
				}
			}
		}
	}()
}
