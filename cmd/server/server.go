// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/clubconnect/internal/api"
	"github.com/codr1/clubconnect/internal/api/auth"
	"github.com/codr1/clubconnect/internal/api/clothing"
	"github.com/codr1/clubconnect/internal/api/dashboard"
	"github.com/codr1/clubconnect/internal/api/events"
	"github.com/codr1/clubconnect/internal/api/invites"
	"github.com/codr1/clubconnect/internal/api/news"
	"github.com/codr1/clubconnect/internal/api/pages"
	"github.com/codr1/clubconnect/internal/api/players"
	"github.com/codr1/clubconnect/internal/config"
	"github.com/codr1/clubconnect/internal/db"
)

func initHandlers(database *db.DB, cfg *config.Config) {
	loc := cfg.Location()
	auth.InitHandlers(database, cfg)
	pages.InitHandlers(database, cfg)
	events.InitHandlers(database, loc)
	invites.InitHandlers(database, loc)
	players.InitHandlers(database, cfg.Players.PhoneRegion)
	clothing.InitHandlers(database.Queries)
	news.InitHandlers(database.Queries)
	dashboard.InitHandlers(database, loc)
}

func newServer(cfg *config.Config) *http.Server {
	router := http.NewServeMux()

	// Register routes
	registerRoutes(router)

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithAuth,
		api.WithLogging,
		api.WithRequestID,
		api.WithRecovery,
	)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	trainer := api.RequireTrainer

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write health response")
		}
	})

	// Pages
	mux.HandleFunc("GET /{$}", pages.HandleHome)
	mux.HandleFunc("GET /events/{id}", pages.HandleEventPage)
	mux.HandleFunc("POST /events/{id}/invites", trainer(pages.HandleInvitePlayers))
	mux.HandleFunc("POST /events/{id}/invites/{playerId}", trainer(pages.HandleUpdateInvite))

	// Login
	mux.HandleFunc("GET /login", auth.HandleLoginPage)
	mux.HandleFunc("POST /login", auth.HandleLogin)
	mux.HandleFunc("POST /logout", auth.HandleLogout)

	// Event routes
	mux.HandleFunc("GET /api/v1/events", events.HandleListEvents)
	mux.HandleFunc("POST /api/v1/events", trainer(events.HandleCreateEvent))
	mux.HandleFunc("GET /api/v1/events/{id}", events.HandleGetEvent)
	mux.HandleFunc("PUT /api/v1/events/{id}", trainer(events.HandleUpdateEvent))
	mux.HandleFunc("DELETE /api/v1/events/{id}", trainer(events.HandleDeleteEvent))

	// Invitation routes
	mux.HandleFunc("GET /api/v1/events/{id}/invites", invites.HandleListEventInvites)
	mux.HandleFunc("GET /api/v1/events/{id}/invites/uninvited", trainer(invites.HandleListUninvited))
	mux.HandleFunc("POST /api/v1/events/{id}/invites", trainer(invites.HandleBulkInvite))
	mux.HandleFunc("POST /api/v1/events/{id}/invites/{playerId}", trainer(invites.HandleCreateInvite))
	mux.HandleFunc("PUT /api/v1/events/{id}/invites/{playerId}", trainer(invites.HandleUpdateInvite))

	// Player routes
	mux.HandleFunc("GET /api/v1/players", trainer(players.HandleListPlayers))
	mux.HandleFunc("POST /api/v1/players", trainer(players.HandleCreatePlayer))
	mux.HandleFunc("GET /api/v1/players/{id}", trainer(players.HandleGetPlayer))
	mux.HandleFunc("PUT /api/v1/players/{id}", trainer(players.HandleUpdatePlayer))
	mux.HandleFunc("DELETE /api/v1/players/{id}", trainer(players.HandleDeletePlayer))
	mux.HandleFunc("PUT /api/v1/players/{id}/active", trainer(players.HandleSetPlayerActive))
	mux.HandleFunc("GET /api/v1/players/{id}/invites", trainer(invites.HandleListPlayerInvites))

	// Clothing rule routes
	mux.HandleFunc("GET /api/v1/clothing-rules", clothing.HandleListRules)
	mux.HandleFunc("GET /api/v1/clothing-rules/{type}", clothing.HandleGetRule)
	mux.HandleFunc("PUT /api/v1/clothing-rules/{type}", trainer(clothing.HandlePutRule))
	mux.HandleFunc("DELETE /api/v1/clothing-rules/{type}", trainer(clothing.HandleDeleteRule))

	// Dashboard
	mux.HandleFunc("GET /api/v1/dashboard", trainer(dashboard.HandleDashboard))

	// News routes
	mux.HandleFunc("GET /api/v1/news", news.HandleListNews)
	mux.HandleFunc("POST /api/v1/news", trainer(news.HandleCreateNews))
	mux.HandleFunc("GET /api/v1/news/{id}", news.HandleGetNews)
	mux.HandleFunc("PUT /api/v1/news/{id}", trainer(news.HandleUpdateNews))
	mux.HandleFunc("DELETE /api/v1/news/{id}", trainer(news.HandleDeleteNews))
}
