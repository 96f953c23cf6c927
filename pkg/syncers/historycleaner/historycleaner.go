// Package historycleaner prunes old query history in the background.
package historycleaner

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/insightpilot/insightpilot/pkg/service"
)

type Syncer struct {
	history  service.HistoryService
	keepDays int
	log      zerolog.Logger
}

func New(history service.HistoryService, keepDays int, log zerolog.Logger) *Syncer {
	return &Syncer{
		history:  history,
		keepDays: keepDays,
		log:      log,
	}
}

func (s *Syncer) Run(ctx context.Context, frequency time.Duration) {
	s.log.Info().Int("keep_days", s.keepDays).Msg("Starting history cleanup syncer")

	ticker := time.NewTicker(frequency)
	defer ticker.Stop()

	s.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

func (s *Syncer) RunOnce(ctx context.Context) {
	deleted, err := s.history.CleanupHistory(ctx, s.keepDays)
	if err != nil {
		s.log.Error().Err(err).Msg("cleaning up query history")
		return
	}

	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("pruned old query history")
	}
}
