package scheduler

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

const sessionPruneJob = "session_prune"

// RegisterSessionPrune schedules prune to run on cronExpr. prune reports how
// many sessions it removed.
func RegisterSessionPrune(s *Service, cronExpr string, prune func() int) error {
	if prune == nil {
		return fmt.Errorf("session prune job requires a prune func")
	}

	jobLogger := log.With().Str("component", "session_prune_job").Logger()
	_, err := s.AddJob(sessionPruneJob, cronExpr, func() {
		if removed := prune(); removed > 0 {
			jobLogger.Info().Int("removed", removed).Msg("Pruned expired sessions")
		}
	})
	if err != nil {
		return fmt.Errorf("register %s: %w", sessionPruneJob, err)
	}
	return nil
}
