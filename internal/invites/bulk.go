package invites

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// BulkResult reports what a bulk invite did. Created counts only invitations
// that did not exist before the call.
type BulkResult struct {
	Created        int     `json:"created"`
	AlreadyInvited []int64 `json:"alreadyInvited,omitempty"`
	UnknownPlayers []int64 `json:"unknownPlayers,omitempty"`
}

// BulkInvite invites every player in playerIDs to the event as pending.
//
// A missing event fails the whole call with a *ReferenceError. Players that
// are already invited or do not exist are skipped. Each invitation is its own
// atomic insert, so an interrupted call leaves a valid partial result.
func (l *Ledger) BulkInvite(ctx context.Context, eventID int64, playerIDs []int64) (BulkResult, error) {
	var result BulkResult

	exists, err := l.eventExists(ctx, eventID)
	if err != nil {
		return result, fmt.Errorf("check event: %w", err)
	}
	if !exists {
		return result, &ReferenceError{Entity: EntityEvent, ID: eventID}
	}

	logger := log.Ctx(ctx).With().Int64("event_id", eventID).Logger()

	for _, playerID := range uniqueIDs(playerIDs) {
		_, err := l.Create(ctx, playerID, eventID, StatusPending, "")
		if err == nil {
			result.Created++
			continue
		}

		var refErr *ReferenceError
		switch {
		case errors.Is(err, ErrDuplicateInvite):
			result.AlreadyInvited = append(result.AlreadyInvited, playerID)
		case errors.As(err, &refErr) && refErr.Entity == EntityPlayer:
			logger.Warn().Int64("player_id", playerID).Msg("Skipping bulk invite for unknown player")
			result.UnknownPlayers = append(result.UnknownPlayers, playerID)
		default:
			return result, fmt.Errorf("invite player %d: %w", playerID, err)
		}
	}

	logger.Debug().
		Int("created", result.Created).
		Int("already_invited", len(result.AlreadyInvited)).
		Int("unknown_players", len(result.UnknownPlayers)).
		Msg("Bulk invite completed")

	return result, nil
}

// uniqueIDs drops repeated ids, keeping the first occurrence.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
