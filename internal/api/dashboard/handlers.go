// internal/api/dashboard/handlers.go
package dashboard

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/clubconnect/internal/api/apiutil"
	appdb "github.com/codr1/clubconnect/internal/db"
	appevents "github.com/codr1/clubconnect/internal/events"
	appnews "github.com/codr1/clubconnect/internal/news"
	appplayers "github.com/codr1/clubconnect/internal/players"
)

const (
	dashboardQueryTimeout = 5 * time.Second
	recentNewsLimit       = 3
)

var (
	store        *appdb.DB
	location     *time.Location
	handlersOnce sync.Once
)

// Summary is the trainer's overview of the club.
type Summary struct {
	UpcomingEvents int               `json:"upcomingEvents"`
	TotalPlayers   int               `json:"totalPlayers"`
	ActivePlayers  int               `json:"activePlayers"`
	RecentNews     []appnews.Article `json:"recentNews"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(database *appdb.DB, loc *time.Location) {
	if database == nil {
		log.Warn().Msg("InitHandlers called with nil database; dashboard handlers will be unavailable")
		return
	}
	handlersOnce.Do(func() {
		store = database
		location = loc
	})
}

// GET /api/v1/dashboard
func HandleDashboard(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if store == nil {
		logger.Error().Msg("Database not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dashboardQueryTimeout)
	defer cancel()

	summary, err := loadSummary(ctx, store.Queries)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to load dashboard")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, summary); err != nil {
		logger.Error().Err(err).Msg("Failed to write dashboard response")
	}
}

func loadSummary(ctx context.Context, q appdb.DBTX) (Summary, error) {
	var summary Summary

	upcoming, err := appevents.NewStore(q, appevents.WithLocation(location)).CountUpcoming(ctx)
	if err != nil {
		return Summary{}, err
	}
	summary.UpcomingEvents = upcoming

	summary.TotalPlayers, summary.ActivePlayers, err = appplayers.NewStore(q).Counts(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary.RecentNews, err = appnews.NewStore(q).Recent(ctx, recentNewsLimit)
	if err != nil {
		return Summary{}, err
	}
	return summary, nil
}
