// internal/api/players/handlers.go
package players

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/clubconnect/internal/api/apiutil"
	appdb "github.com/codr1/clubconnect/internal/db"
	appplayers "github.com/codr1/clubconnect/internal/players"
)

const playersQueryTimeout = 5 * time.Second

var (
	store        *appdb.DB
	phoneRegion  string
	handlersOnce sync.Once
)

type activeRequest struct {
	Active *bool `json:"active"`
}

// InitHandlers must be called during server startup before handling requests.
// region is the default country for phone numbers without a prefix.
func InitHandlers(database *appdb.DB, region string) {
	if database == nil {
		return
	}
	handlersOnce.Do(func() {
		store = database
		phoneRegion = region
	})
}

func playerStore() *appplayers.Store {
	if store == nil {
		return nil
	}
	return appplayers.NewStore(store.Queries)
}

// GET /api/v1/players
func HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := playerStore()
	if s == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	onlyActive, err := apiutil.QueryBool(r, "active")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid active flag")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), playersQueryTimeout)
	defer cancel()

	list, err := s.List(ctx, onlyActive)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to list players")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, list); err != nil {
		logger.Error().Err(err).Msg("Failed to write players response")
	}
}

// GET /api/v1/players/{id}
func HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := playerStore()
	if s == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	playerID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid player ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), playersQueryTimeout)
	defer cancel()

	player, err := s.Get(ctx, playerID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to load player")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, player); err != nil {
		logger.Error().Err(err).Int64("player_id", playerID).Msg("Failed to write player response")
	}
}

// POST /api/v1/players
func HandleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := playerStore()
	if s == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	in, err := decodePlayerInput(r)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid player")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), playersQueryTimeout)
	defer cancel()

	player, err := s.Create(ctx, in)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to create player")
		return
	}

	logger.Info().Int64("player_id", player.ID).Msg("Player created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, player); err != nil {
		logger.Error().Err(err).Int64("player_id", player.ID).Msg("Failed to write player response")
	}
}

// PUT /api/v1/players/{id}
func HandleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := playerStore()
	if s == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	playerID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid player ID")
		return
	}

	in, err := decodePlayerInput(r)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid player")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), playersQueryTimeout)
	defer cancel()

	player, err := s.Update(ctx, playerID, in)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to update player")
		return
	}

	logger.Info().Int64("player_id", player.ID).Msg("Player updated")
	if err := apiutil.WriteJSON(w, http.StatusOK, player); err != nil {
		logger.Error().Err(err).Int64("player_id", player.ID).Msg("Failed to write player response")
	}
}

// PUT /api/v1/players/{id}/active
func HandleSetPlayerActive(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := playerStore()
	if s == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	playerID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid player ID")
		return
	}

	var req activeRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "invalid JSON body", Err: err}, "Invalid active request")
		return
	}
	if req.Active == nil {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "active", Reason: "is required"}, "Invalid active request")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), playersQueryTimeout)
	defer cancel()

	if err := s.SetActive(ctx, playerID, *req.Active); err != nil {
		apiutil.WriteError(w, r, err, "Failed to update player")
		return
	}
	player, err := s.Get(ctx, playerID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to load player")
		return
	}

	logger.Info().Int64("player_id", playerID).Bool("active", *req.Active).Msg("Player active flag changed")
	if err := apiutil.WriteJSON(w, http.StatusOK, player); err != nil {
		logger.Error().Err(err).Int64("player_id", playerID).Msg("Failed to write player response")
	}
}

// DELETE /api/v1/players/{id}
func HandleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	playerID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid player ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), playersQueryTimeout)
	defer cancel()

	if err := appplayers.Delete(ctx, store, playerID); err != nil {
		apiutil.WriteError(w, r, err, "Failed to delete player")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodePlayerInput(r *http.Request) (appplayers.Input, error) {
	var in appplayers.Input
	if err := apiutil.DecodeJSON(r, &in); err != nil {
		return appplayers.Input{}, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "invalid JSON body", Err: err}
	}
	return appplayers.Validate(in, phoneRegion)
}
