// internal/api/pages/handlers.go
package pages

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/codr1/clubconnect/internal/api/apiutil"
	"github.com/codr1/clubconnect/internal/api/authz"
	"github.com/codr1/clubconnect/internal/api/htmx"
	"github.com/codr1/clubconnect/internal/clothing"
	"github.com/codr1/clubconnect/internal/config"
	appdb "github.com/codr1/clubconnect/internal/db"
	"github.com/codr1/clubconnect/internal/events"
	"github.com/codr1/clubconnect/internal/invites"
	"github.com/codr1/clubconnect/internal/news"
	"github.com/codr1/clubconnect/internal/templates/components/eventdetail"
	"github.com/codr1/clubconnect/internal/templates/components/home"
	"github.com/codr1/clubconnect/internal/templates/layouts"
)

const (
	pageQueryTimeout = 10 * time.Second
	homeEventLimit   = 20
	maxNewsPage      = 10000
)

var (
	store        *appdb.DB
	appConfig    *config.Config
	handlersOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, cfg *config.Config) {
	if database == nil || cfg == nil {
		return
	}
	handlersOnce.Do(func() {
		store = database
		appConfig = cfg
	})
}

func pageData(r *http.Request, title string) layouts.PageData {
	return layouts.PageData{
		Title:    title,
		ClubName: appConfig.App.ClubName,
		User:     authz.UserFromContext(r.Context()),
		Theme: layouts.Theme{
			Primary: appConfig.App.Theme.Primary,
			Accent:  appConfig.App.Theme.Accent,
		},
	}
}

func renderPage(w http.ResponseWriter, r *http.Request, title string, body templ.Component) {
	apiutil.RenderHTMLComponent(r.Context(), w, layouts.Base(pageData(r, title), body), nil,
		"Failed to render page", "Failed to render page")
}

// renderError answers an HTML request with the status ErrorStatus picks.
func renderError(w http.ResponseWriter, r *http.Request, err error, logMessage string) {
	status := apiutil.ErrorStatus(err)
	logger := log.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg(logMessage)
		http.Error(w, http.StatusText(status), status)
		return
	}
	logger.Debug().Err(err).Int("status", status).Msg(logMessage)
	http.Error(w, err.Error(), status)
}

func eventStore() *events.Store {
	return events.NewStore(store.Queries, events.WithLocation(appConfig.Location()))
}

func ledger() *invites.Ledger {
	return invites.NewLedger(store.Queries, invites.WithLocation(appConfig.Location()))
}

// GET /{$}
func HandleHome(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	pageNumber, err := apiutil.QueryInt(r, "page", 1, maxNewsPage)
	if err != nil {
		pageNumber = 1
	}

	ctx, cancel := context.WithTimeout(r.Context(), pageQueryTimeout)
	defer cancel()

	upcoming, err := eventStore().Search(ctx, query, homeEventLimit)
	if err != nil {
		renderError(w, r, err, "Failed to load upcoming events")
		return
	}

	newsPage, err := news.NewStore(store.Queries).PublishedPage(ctx, pageNumber)
	if err != nil {
		renderError(w, r, err, "Failed to load news")
		return
	}

	renderPage(w, r, "", home.Content(home.Data{Events: upcoming, Query: query, News: newsPage}))
}

// GET /events/{id}
func HandleEventPage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, err := apiutil.PathID(r, "id")
	if err != nil {
		renderError(w, r, err, "Invalid event ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pageQueryTimeout)
	defer cancel()

	data, err := loadEventDetail(ctx, r, eventID)
	if err != nil {
		renderError(w, r, err, "Failed to load event")
		return
	}

	if rule, err := clothing.NewStore(store.Queries).ForType(ctx, data.Event.Type); err == nil {
		data.Rule = &rule
	} else if !errors.Is(err, clothing.ErrRuleNotFound) {
		renderError(w, r, err, "Failed to load clothing rule")
		return
	}

	renderPage(w, r, data.Event.Title, eventdetail.Content(data))
}

// POST /events/{id}/invites
//
// Invites the checked players. htmx callers get the refreshed invitation
// section, plain form posts are redirected back to the event page.
func HandleInvitePlayers(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, err := apiutil.PathID(r, "id")
	if err != nil {
		renderError(w, r, err, "Invalid event ID")
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	playerIDs := make([]int64, 0, len(r.PostForm["player_id"]))
	for _, raw := range r.PostForm["player_id"] {
		playerID, err := apiutil.ParsePositiveInt64Field(raw, "player_id")
		if err != nil {
			renderError(w, r, err, "Invalid player ID")
			return
		}
		playerIDs = append(playerIDs, playerID)
	}

	ctx, cancel := context.WithTimeout(r.Context(), pageQueryTimeout)
	defer cancel()

	result, err := ledger().BulkInvite(ctx, eventID, playerIDs)
	if err != nil {
		logger.Warn().Err(err).Int64("event_id", eventID).Int("created", result.Created).Msg("Bulk invite stopped")
		renderError(w, r, err, "Failed to invite players")
		return
	}

	logger.Info().
		Int64("event_id", eventID).
		Int("created", result.Created).
		Msg("Players invited from event page")

	respondWithInvites(ctx, w, r, eventID, bulkNotice(result))
}

// POST /events/{id}/invites/{playerId}
func HandleUpdateInvite(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, err := apiutil.PathID(r, "id")
	if err != nil {
		renderError(w, r, err, "Invalid event ID")
		return
	}
	playerID, err := apiutil.PathID(r, "playerId")
	if err != nil {
		renderError(w, r, err, "Invalid player ID")
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	status, err := invites.ParseStatus(r.PostFormValue("status"))
	if err != nil {
		renderError(w, r, err, "Invalid invite status")
		return
	}
	notes := strings.TrimSpace(r.PostFormValue("notes"))

	ctx, cancel := context.WithTimeout(r.Context(), pageQueryTimeout)
	defer cancel()

	if err := ledger().UpdateStatus(ctx, playerID, eventID, status, notes); err != nil {
		renderError(w, r, err, "Failed to update invite")
		return
	}

	logger.Info().
		Int64("event_id", eventID).
		Int64("player_id", playerID).
		Str("status", string(status)).
		Msg("Invite updated from event page")

	respondWithInvites(ctx, w, r, eventID, "Invitation updated.")
}

func respondWithInvites(ctx context.Context, w http.ResponseWriter, r *http.Request, eventID int64, notice string) {
	if !htmx.IsRequest(r) {
		http.Redirect(w, r, "/events/"+strconv.FormatInt(eventID, 10), http.StatusSeeOther)
		return
	}

	data, err := loadEventDetail(ctx, r, eventID)
	if err != nil {
		renderError(w, r, err, "Failed to reload invitations")
		return
	}
	data.Notice = notice

	apiutil.RenderHTMLComponent(ctx, w, eventdetail.InviteSection(data), nil,
		"Failed to render invitations", "Failed to render invitations")
}

// loadEventDetail gathers everything the invitation section shows. The
// uninvited roster is only loaded for trainers.
func loadEventDetail(ctx context.Context, r *http.Request, eventID int64) (eventdetail.Data, error) {
	event, err := eventStore().Get(ctx, eventID)
	if err != nil {
		return eventdetail.Data{}, err
	}

	l := ledger()
	list, err := l.ListForEvent(ctx, eventID)
	if err != nil {
		return eventdetail.Data{}, fmt.Errorf("list invites: %w", err)
	}
	stats, err := l.StatsForEvent(ctx, eventID)
	if err != nil {
		return eventdetail.Data{}, fmt.Errorf("invite stats: %w", err)
	}

	data := eventdetail.Data{
		Event:     event,
		Stats:     stats,
		Invites:   list,
		IsTrainer: authz.IsTrainer(authz.UserFromContext(r.Context())),
	}
	if data.IsTrainer {
		data.Uninvited, err = l.UninvitedPlayers(ctx, eventID)
		if err != nil {
			return eventdetail.Data{}, fmt.Errorf("uninvited players: %w", err)
		}
	}
	return data, nil
}

func bulkNotice(result invites.BulkResult) string {
	parts := []string{fmt.Sprintf("Invited %d %s.", result.Created, plural(result.Created, "player", "players"))}
	if n := len(result.AlreadyInvited); n > 0 {
		parts = append(parts, fmt.Sprintf("%d already invited.", n))
	}
	if n := len(result.UnknownPlayers); n > 0 {
		parts = append(parts, fmt.Sprintf("%d not found.", n))
	}
	return strings.Join(parts, " ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
