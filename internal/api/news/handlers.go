// internal/api/news/handlers.go
package news

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/clubconnect/internal/api/apiutil"
	"github.com/codr1/clubconnect/internal/api/authz"
	appdb "github.com/codr1/clubconnect/internal/db"
	appnews "github.com/codr1/clubconnect/internal/news"
)

const (
	newsQueryTimeout = 5 * time.Second
	maxPage          = 10000
)

var (
	queries     appdb.DBTX
	queriesOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q appdb.DBTX) {
	if q == nil {
		return
	}
	queriesOnce.Do(func() {
		queries = q
	})
}

func newsStore() *appnews.Store {
	if queries == nil {
		return nil
	}
	return appnews.NewStore(queries)
}

// GET /api/v1/news
//
// Visitors get a page of published articles. Trainers can pass all=true to
// list drafts as well.
func HandleListNews(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := newsStore()
	if s == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	all, err := apiutil.QueryBool(r, "all")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid all flag")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), newsQueryTimeout)
	defer cancel()

	if all {
		if err := authz.RequireTrainer(r.Context()); err != nil {
			apiutil.WriteError(w, r, err, "Draft listing denied")
			return
		}
		articles, err := s.ListAll(ctx)
		if err != nil {
			apiutil.WriteError(w, r, err, "Failed to list news")
			return
		}
		if err := apiutil.WriteJSON(w, http.StatusOK, articles); err != nil {
			logger.Error().Err(err).Msg("Failed to write news response")
		}
		return
	}

	number, err := apiutil.QueryInt(r, "page", 1, maxPage)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid page")
		return
	}
	page, err := s.PublishedPage(ctx, number)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to load news page")
		return
	}
	if page.Articles == nil {
		page.Articles = []appnews.Article{}
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, page); err != nil {
		logger.Error().Err(err).Msg("Failed to write news response")
	}
}

// GET /api/v1/news/{id}
func HandleGetNews(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := newsStore()
	if s == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	articleID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid news ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), newsQueryTimeout)
	defer cancel()

	article, err := s.Get(ctx, articleID)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to load news")
		return
	}
	// Drafts are only visible to trainers.
	if !article.Published && !authz.IsTrainer(authz.UserFromContext(r.Context())) {
		apiutil.WriteError(w, r, appnews.ErrNewsNotFound, "Draft hidden")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, article); err != nil {
		logger.Error().Err(err).Int64("news_id", articleID).Msg("Failed to write news response")
	}
}

// POST /api/v1/news
func HandleCreateNews(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := newsStore()
	if s == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	in, err := decodeNewsInput(r)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid news")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), newsQueryTimeout)
	defer cancel()

	article, err := s.Create(ctx, in)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to create news")
		return
	}

	logger.Info().Int64("news_id", article.ID).Bool("published", article.Published).Msg("News created")
	if err := apiutil.WriteJSON(w, http.StatusCreated, article); err != nil {
		logger.Error().Err(err).Int64("news_id", article.ID).Msg("Failed to write news response")
	}
}

// PUT /api/v1/news/{id}
func HandleUpdateNews(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := newsStore()
	if s == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	articleID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid news ID")
		return
	}

	in, err := decodeNewsInput(r)
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid news")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), newsQueryTimeout)
	defer cancel()

	article, err := s.Update(ctx, articleID, in)
	if err != nil {
		apiutil.WriteError(w, r, err, "Failed to update news")
		return
	}

	logger.Info().Int64("news_id", article.ID).Msg("News updated")
	if err := apiutil.WriteJSON(w, http.StatusOK, article); err != nil {
		logger.Error().Err(err).Int64("news_id", article.ID).Msg("Failed to write news response")
	}
}

// DELETE /api/v1/news/{id}
func HandleDeleteNews(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	s := newsStore()
	if s == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	articleID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err, "Invalid news ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), newsQueryTimeout)
	defer cancel()

	if err := s.Delete(ctx, articleID); err != nil {
		apiutil.WriteError(w, r, err, "Failed to delete news")
		return
	}

	logger.Info().Int64("news_id", articleID).Msg("News deleted")
	w.WriteHeader(http.StatusNoContent)
}

func decodeNewsInput(r *http.Request) (appnews.Input, error) {
	var in appnews.Input
	if err := apiutil.DecodeJSON(r, &in); err != nil {
		return appnews.Input{}, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "invalid JSON body", Err: err}
	}
	return appnews.Validate(in)
}
