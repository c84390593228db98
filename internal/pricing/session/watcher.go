package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RunAlertWatcher re-evaluates alerts on a fixed interval until the context
// is cancelled. Each tick works on a snapshot of the filtered records, so a
// concurrent filter change or upload is never observed half-applied.
func (s *Session) RunAlertWatcher(ctx context.Context, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			triggered := s.EvaluateAlerts()
			for _, t := range triggered {
				logger.Warn().
					Str("alert", t.AlertID).
					Str("facility", t.Facility).
					Str("condition", t.Condition).
					Int("latest", t.Latest).
					Msg(t.Message)
			}
			if len(triggered) == 0 {
				logger.Debug().Msg("alert sweep: nothing triggered")
			}
		}
	}
}
