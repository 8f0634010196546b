// internal/api/events/handlers.go
package events

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/clubconnect/internal/api/apiutil"
	appdb "github.com/codr1/clubconnect/internal/db"
	appevents "github.com/codr1/clubconnect/internal/events"
)

const (
	eventsQueryTimeout = 5 * time.Second
	defaultListLimit   = 50
	maxListLimit       = 200
)

var (
	store        *appdb.DB
	location     *time.Location
	handlersOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
// loc is the club's time zone, used to decide which events are upcoming.
func InitHandlers(database *appdb.DB, loc *time.Location) {
	if database == nil {
		return
	}
	handlersOnce.Do(func() {
		store = database
		location = loc
	})
}

func eventStore() *appevents.Store {
	if store == nil {
		return nil
	}
	return appevents.NewStore(store.Queries, appevents.WithLocation(location))
}

// GET /api/v1/events
func HandleListEvents(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := eventStore()
	if s == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	limit, err := apiutil.QueryInt(r, "limit", defaultListLimit, maxListLimit)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid limit")
		return
	}
	query := r.URL.Query().Get("query")

	ctx, cancel := context.WithTimeout(r.Context(), eventsQueryTimeout)
	defer cancel()

	list, err := s.Search(ctx, query, limit)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to list events")
		return
	}
	if list == nil {
		list = []appevents.Event{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, list); err != nil {
		logger.Error().Err(err).Msg("Failed to write events response")
	}
}

// GET /api/v1/events/{id}
func HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := eventStore()
	if s == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid event ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), eventsQueryTimeout)
	defer cancel()

	event, err := s.Get(ctx, eventID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to load event")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, event); err != nil {
		logger.Error().Err(err).Int64("event_id", eventID).Msg("Failed to write event response")
	}
}

// POST /api/v1/events
func HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := eventStore()
	if s == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	in, err := decodeEventInput(r)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid event")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), eventsQueryTimeout)
	defer cancel()

	event, err := s.Create(ctx, in)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to create event")
		return
	}

	logger.Info().Int64("event_id", event.ID).Str("type", string(event.Type)).Str("date", event.Date).Msg("Event created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, event); err != nil {
		logger.Error().Err(err).Int64("event_id", event.ID).Msg("Failed to write event response")
	}
}

// PUT /api/v1/events/{id}
func HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := eventStore()
	if s == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid event ID")
		return
	}

	in, err := decodeEventInput(r)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid event")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), eventsQueryTimeout)
	defer cancel()

	event, err := s.Update(ctx, eventID, in)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to update event")
		return
	}

	logger.Info().Int64("event_id", event.ID).Msg("Event updated")
	if err := apiutil.WriteJSON(w, http.StatusOK, event); err != nil {
		logger.Error().Err(err).Int64("event_id", event.ID).Msg("Failed to write event response")
	}
}

// DELETE /api/v1/events/{id}
func HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid event ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), eventsQueryTimeout)
	defer cancel()

	if err := appevents.Delete(ctx, store, eventID); err != nil {
		apiutil.WriteError(w, r, err, "Failed to delete event")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeEventInput(r *http.Request) (appevents.Input, error) {
	var in appevents.Input
	if err := apiutil.DecodeJSON(r, &in); err != nil {
		return appevents.Input{}, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "invalid JSON body", Err: err}
	}
	return appevents.Validate(in)
}
