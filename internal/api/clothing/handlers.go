// internal/api/clothing/handlers.go
package clothing

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/clubconnect/internal/api/apiutil"
	appclothing "github.com/codr1/clubconnect/internal/clothing"
	appdb "github.com/codr1/clubconnect/internal/db"
	appevents "github.com/codr1/clubconnect/internal/events"
)

const clothingQueryTimeout = 5 * time.Second

var (
	queries     appdb.DBTX
	queriesOnce sync.Once
)

type ruleRequest struct {
	Description string `json:"description"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q appdb.DBTX) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

func ruleStore() *appclothing.Store {
	if queries == nil {
		return nil
	}
	return appclothing.NewStore(queries)
}

// GET /api/v1/clothing-rules
func HandleListRules(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := ruleStore()
	if s == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clothingQueryTimeout)
	defer cancel()

	rules, err := s.List(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to list clothing rules")
		return
	}
	if rules == nil {
		rules = []appclothing.Rule{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, rules); err != nil {
		logger.Error().Err(err).Msg("Failed to write clothing rules response")
	}
}

// GET /api/v1/clothing-rules/{type}
func HandleGetRule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := ruleStore()
	if s == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventType, err := appevents.ParseType(r.PathValue("type"))
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid event type")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clothingQueryTimeout)
	defer cancel()

	rule, err := s.ForType(ctx, eventType)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to load clothing rule")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, rule); err != nil {
		logger.Error().Err(err).Msg("Failed to write clothing rule response")
	}
}

// PUT /api/v1/clothing-rules/{type}
func HandlePutRule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := ruleStore()
	if s == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventType, err := appevents.ParseType(r.PathValue("type"))
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid event type")
		return
	}

	var req ruleRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "invalid JSON body", Err: err}, "Invalid clothing rule")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clothingQueryTimeout)
	defer cancel()

	rule, err := s.Upsert(ctx, eventType, req.Description)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to save clothing rule")
		return
	}

	logger.Info().Str("event_type", string(eventType)).Msg("Clothing rule saved")
	if err := apiutil.WriteJSON(w, http.StatusOK, rule); err != nil {
		logger.Error().Err(err).Msg("Failed to write clothing rule response")
	}
}

// DELETE /api/v1/clothing-rules/{type}
func HandleDeleteRule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := ruleStore()
	if s == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventType, err := appevents.ParseType(r.PathValue("type"))
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid event type")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), clothingQueryTimeout)
	defer cancel()

	if err := s.Delete(ctx, eventType); err != nil {
		apiutil.WriteError(w, r, err, "Failed to delete clothing rule")
		return
	}

	logger.Info().Str("event_type", string(eventType)).Msg("Clothing rule deleted")
	w.WriteHeader(http.StatusNoContent)
}
