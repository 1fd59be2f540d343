package auth

import (
	"context"
	"time"

	"tijara.org/internal/obs"
)

// StartReaper sweeps expired invites on the given interval until ctx is
// cancelled. Invites are flagged within one interval of their deadline,
// never before it.
func (s *Service) StartReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := s.ExpireStale(ctx)
				if err != nil {
					obs.Error("invite reaper sweep failed", map[string]any{"error": err.Error()})
					continue
				}
				if n > 0 {
					obs.Info("expired invites reaped", map[string]any{"count": n})
				}
			}
		}
	}()
}
