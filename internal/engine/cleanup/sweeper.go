package cleanup

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"hookstash/internal/platform/repositories"
)

// Sweeper evicts webhook records older than the retention window. Deleting
// only strictly-older rows cannot race a concurrent insert, so no
// coordination with the web tier is needed.
type Sweeper struct {
	repo   *repositories.WebhookRepository
	maxAge time.Duration
}

func NewSweeper(repo *repositories.WebhookRepository, maxAge time.Duration) *Sweeper {
	if maxAge <= 0 {
		maxAge = 4 * time.Hour
	}
	return &Sweeper{repo: repo, maxAge: maxAge}
}

func (s *Sweeper) Sweep() error {
	cutoff := time.Now().Add(-s.maxAge).Unix()
	n, err := s.repo.DeleteOlderThan(cutoff)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info().Int64("deleted", n).Msg("expired webhooks swept")
	}
	return nil
}

// Run executes Sweep on a ticker until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Sweep(); err != nil {
				log.Error().Err(err).Msg("retention sweep failed")
			}
		case <-ctx.Done():
			return
		}
	}
}
