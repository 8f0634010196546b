package eventdetail

import (
	"fmt"

	"github.com/a-h/templ"

	"github.com/codr1/clubconnect/internal/clothing"
	"github.com/codr1/clubconnect/internal/events"
	"github.com/codr1/clubconnect/internal/invites"
)

type Data struct {
	Event     events.Event
	Rule      *clothing.Rule
	Stats     invites.Stats
	Invites   []invites.EventInvite
	Uninvited []invites.PlayerSummary
	IsTrainer bool
	Notice    string
}

func statsLine(stats invites.Stats) string {
	return fmt.Sprintf(
		"%d invited: %d accepted, %d maybe, %d declined, %d pending",
		stats.Total, stats.Accepted, stats.Maybe, stats.Declined, stats.Pending,
	)
}

func invitePlayersURL(eventID int64) templ.SafeURL {
	return templ.URL(fmt.Sprintf("/events/%d/invites", eventID))
}

func inviteURL(eventID, playerID int64) templ.SafeURL {
	return templ.URL(fmt.Sprintf("/events/%d/invites/%d", eventID, playerID))
}
