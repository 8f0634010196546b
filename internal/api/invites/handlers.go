// internal/api/invites/handlers.go
package invites

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/clubconnect/internal/api/apiutil"
	appdb "github.com/codr1/clubconnect/internal/db"
	appevents "github.com/codr1/clubconnect/internal/events"
	appinvites "github.com/codr1/clubconnect/internal/invites"
	appplayers "github.com/codr1/clubconnect/internal/players"
)

const invitesQueryTimeout = 10 * time.Second

var (
	store        *appdb.DB
	location     *time.Location
	handlersOnce sync.Once
)

type eventInvitesResponse struct {
	EventID int64                    `json:"eventId"`
	Invites []appinvites.EventInvite `json:"invites"`
	Stats   appinvites.Stats         `json:"stats"`
}

type bulkInviteRequest struct {
	PlayerIDs []int64 `json:"playerIds"`
}

// bulkInviteError reports a bulk invite that stopped early together with the
// invitations it had already committed.
type bulkInviteError struct {
	Error string `json:"error"`
	appinvites.BulkResult
}

type inviteRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// InitHandlers must be called during server startup before handling requests.
// loc is the club's time zone, used to decide which events lie in the future.
func InitHandlers(database *appdb.DB, loc *time.Location) {
	if database == nil {
		return
	}
	handlersOnce.Do(func() {
		store = database
		location = loc
	})
}

func loadLedger() *appinvites.Ledger {
	if store == nil {
		return nil
	}
	return appinvites.NewLedger(store.Queries, appinvites.WithLocation(location))
}

// requireEvent writes a 404 and reports false when the event does not exist.
func requireEvent(ctx context.Context, w http.ResponseWriter, r *http.Request, eventID int64) bool {
	exists, err := appevents.NewStore(store.Queries).Exists(ctx, eventID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to check event")
		return false
	}
	if !exists {
		apiutil.WriteError(w, r, &appinvites.ReferenceError{Entity: appinvites.EntityEvent, ID: eventID}, "Event not found")
		return false
	}
	return true
}

// GET /api/v1/events/{id}/invites
func HandleListEventInvites(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ledger := loadLedger()
	if ledger == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid event ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), invitesQueryTimeout)
	defer cancel()

	if !requireEvent(ctx, w, r, eventID) {
		return
	}

	list, err := ledger.ListForEvent(ctx, eventID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to list invites")
		return
	}
	stats, err := ledger.StatsForEvent(ctx, eventID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to load invite stats")
		return
	}
	if list == nil {
		list = []appinvites.EventInvite{}
	}

	resp := eventInvitesResponse{EventID: eventID, Invites: list, Stats: stats}
	if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
		logger.Error().Err(err).Int64("event_id", eventID).Msg("Failed to write invites response")
	}
}

// GET /api/v1/events/{id}/invites/uninvited
func HandleListUninvited(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ledger := loadLedger()
	if ledger == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid event ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), invitesQueryTimeout)
	defer cancel()

	if !requireEvent(ctx, w, r, eventID) {
		return
	}

	players, err := ledger.UninvitedPlayers(ctx, eventID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to list uninvited players")
		return
	}
	if players == nil {
		players = []appinvites.PlayerSummary{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, players); err != nil {
		logger.Error().Err(err).Int64("event_id", eventID).Msg("Failed to write uninvited response")
	}
}

// POST /api/v1/events/{id}/invites
func HandleBulkInvite(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ledger := loadLedger()
	if ledger == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid event ID")
		return
	}

	var req bulkInviteRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "invalid JSON body", Err: err}, "Invalid bulk invite")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), invitesQueryTimeout)
	defer cancel()

	result, err := ledger.BulkInvite(ctx, eventID, req.PlayerIDs)
	if err != nil {
		writeBulkInviteError(w, r, eventID, result, err)
		return
	}

	logger.Info().
		Int64("event_id", eventID).
		Int("created", result.Created).
		Int("already_invited", len(result.AlreadyInvited)).
		Int("unknown_players", len(result.UnknownPlayers)).
		Msg("Players invited")
	if err := apiutil.WriteJSON(w, http.StatusOK, result); err != nil {
		logger.Error().Err(err).Int64("event_id", eventID).Msg("Failed to write bulk invite response")
	}
}

// writeBulkInviteError writes err with the partial result, since invitations
// created before the failure stay committed.
func writeBulkInviteError(w http.ResponseWriter, r *http.Request, eventID int64, result appinvites.BulkResult, err error) {
	logger := log.Ctx(r.Context())

	status := apiutil.ErrorStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Int64("event_id", eventID).Int("created", result.Created).Msg("Failed to bulk invite")
		message = http.StatusText(status)
	} else {
		logger.Warn().Err(err).Int64("event_id", eventID).Int("created", result.Created).Msg("Bulk invite stopped")
	}

	if writeErr := apiutil.WriteJSON(w, status, bulkInviteError{Error: message, BulkResult: result}); writeErr != nil {
		logger.Error().Err(writeErr).Int64("event_id", eventID).Msg("Failed to write bulk invite error")
	}
}

// POST /api/v1/events/{id}/invites/{playerId}
func HandleCreateInvite(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ledger := loadLedger()
	if ledger == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, playerID, err := inviteIDsFromRequest(r)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid invite path")
		return
	}

	var req inviteRequest
	if r.ContentLength != 0 {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "invalid JSON body", Err: err}, "Invalid invite")
			return
		}
	}

	status := appinvites.StatusPending
	if req.Status != "" {
		status, err = appinvites.ParseStatus(req.Status)
		if err != nil {
			apiutil.WriteError(w, r, err, "Invalid invite status")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), invitesQueryTimeout)
	defer cancel()

	if _, err := ledger.Create(ctx, playerID, eventID, status, req.Notes); err != nil {
		apiutil.WriteError(w, r, err, "Failed to create invite")
		return
	}
	invite, err := ledger.Get(ctx, playerID, eventID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to load invite")
		return
	}

	logger.Info().Int64("event_id", eventID).Int64("player_id", playerID).Str("status", string(status)).Msg("Player invited")
	if err := apiutil.WriteJSON(w, http.StatusCreated, invite); err != nil {
		logger.Error().Err(err).Msg("Failed to write invite response")
	}
}

// PUT /api/v1/events/{id}/invites/{playerId}
func HandleUpdateInvite(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ledger := loadLedger()
	if ledger == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, playerID, err := inviteIDsFromRequest(r)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid invite path")
		return
	}

	var req inviteRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "invalid JSON body", Err: err}, "Invalid invite")
		return
	}
	status, err := appinvites.ParseStatus(req.Status)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid invite status")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), invitesQueryTimeout)
	defer cancel()

	if err := ledger.UpdateStatus(ctx, playerID, eventID, status, req.Notes); err != nil {
		apiutil.WriteError(w, r, err, "Failed to update invite")
		return
	}
	invite, err := ledger.Get(ctx, playerID, eventID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to load invite")
		return
	}

	logger.Info().Int64("event_id", eventID).Int64("player_id", playerID).Str("status", string(status)).Msg("Invite status updated")
	if err := apiutil.WriteJSON(w, http.StatusOK, invite); err != nil {
		logger.Error().Err(err).Msg("Failed to write invite response")
	}
}

// GET /api/v1/players/{id}/invites
func HandleListPlayerInvites(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	ledger := loadLedger()
	if ledger == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	playerID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid player ID")
		return
	}
	includePast, err := apiutil.QueryBool(r, "all")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid all flag")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), invitesQueryTimeout)
	defer cancel()

	exists, err := appplayers.NewStore(store.Queries).Exists(ctx, playerID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to check player")
		return
	}
	if !exists {
		apiutil.WriteError(w, r, &appinvites.ReferenceError{Entity: appinvites.EntityPlayer, ID: playerID}, "Player not found")
		return
	}

	list, err := ledger.ListForPlayer(ctx, playerID, !includePast)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to list player invites")
		return
	}
	if list == nil {
		list = []appinvites.PlayerInvite{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, list); err != nil {
		logger.Error().Err(err).Int64("player_id", playerID).Msg("Failed to write player invites response")
	}
}

func inviteIDsFromRequest(r *http.Request) (int64, int64, error) {
	eventID, err := apiutil.PathID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	playerID, err := apiutil.PathID(r, "playerId")
	if err != nil {
		return 0, 0, err
	}
	return eventID, playerID, nil
}
