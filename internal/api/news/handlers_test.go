package news

// NOTE: Tests cannot use t.Parallel() due to shared package state.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/codr1/clubconnect/internal/api/authz"
	appnews "github.com/codr1/clubconnect/internal/news"
	"github.com/codr1/clubconnect/internal/testutil"
)

func setupNewsTest(t *testing.T) {
	t.Helper()

	database := testutil.NewTestDB(t)

	queries = nil
	queriesOnce = sync.Once{}
	InitHandlers(database.Queries)

	t.Cleanup(func() {
		queries = nil
		queriesOnce = sync.Once{}
	})
}

func asTrainer(req *http.Request) *http.Request {
	user := &authz.AuthUser{ID: 1, Username: "coach", IsTrainer: true}
	return req.WithContext(authz.ContextWithUser(req.Context(), user))
}

func createArticle(t *testing.T, body string) appnews.Article {
	t.Helper()
	rec := httptest.NewRecorder()
	HandleCreateNews(rec, asTrainer(httptest.NewRequest(http.MethodPost, "/api/v1/news", strings.NewReader(body))))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create news: status %d: %s", rec.Code, rec.Body.String())
	}
	var article appnews.Article
	if err := json.NewDecoder(rec.Body).Decode(&article); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return article
}

func TestHandleCreateNews(t *testing.T) {
	setupNewsTest(t)

	article := createArticle(t, `{"title":"Season kick-off","content":"See you Saturday."}`)
	if !article.Published || article.Author != "Admin" {
		t.Fatalf("expected published article by Admin, got %+v", article)
	}

	tests := []struct {
		name string
		body string
	}{
		{name: "missing title", body: `{"content":"x"}`},
		{name: "content too long", body: `{"title":"x","content":"` + strings.Repeat("y", 5001) + `"}`},
		{name: "malformed", body: `{"title":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleCreateNews(rec, httptest.NewRequest(http.MethodPost, "/api/v1/news", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestHandleListNewsPaging(t *testing.T) {
	setupNewsTest(t)

	for i := 0; i < appnews.PageSize+2; i++ {
		createArticle(t, fmt.Sprintf(`{"title":"Post %d","content":"body"}`, i))
	}
	createArticle(t, `{"title":"Draft","content":"later","published":false}`)

	tests := []struct {
		url     string
		count   int
		hasPrev bool
		hasNext bool
	}{
		{url: "/api/v1/news", count: appnews.PageSize, hasNext: true},
		{url: "/api/v1/news?page=2", count: 2, hasPrev: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleListNews(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
			}
			var page appnews.Page
			if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if len(page.Articles) != tt.count || page.HasPrev != tt.hasPrev || page.HasNext != tt.hasNext {
				t.Fatalf("unexpected page: %d articles, prev=%v next=%v", len(page.Articles), page.HasPrev, page.HasNext)
			}
		})
	}
}

func TestHandleListNewsDraftsRequireTrainer(t *testing.T) {
	setupNewsTest(t)
	createArticle(t, `{"title":"Draft","content":"later","published":false}`)

	rec := httptest.NewRecorder()
	HandleListNews(rec, httptest.NewRequest(http.MethodGet, "/api/v1/news?all=true", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}

	rec = httptest.NewRecorder()
	HandleListNews(rec, asTrainer(httptest.NewRequest(http.MethodGet, "/api/v1/news?all=true", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var articles []appnews.Article
	if err := json.NewDecoder(rec.Body).Decode(&articles); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(articles) != 1 || articles[0].Published {
		t.Fatalf("expected the draft, got %+v", articles)
	}
}

func TestHandleGetNewsHidesDrafts(t *testing.T) {
	setupNewsTest(t)
	draft := createArticle(t, `{"title":"Draft","content":"later","published":false}`)
	id := strconv.FormatInt(draft.ID, 10)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/news/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	HandleGetNews(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d for visitor, got %d", http.StatusNotFound, rec.Code)
	}

	rec = httptest.NewRecorder()
	HandleGetNews(rec, asTrainer(req))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d for trainer, got %d", http.StatusOK, rec.Code)
	}
}

func TestHandleUpdateAndDeleteNews(t *testing.T) {
	setupNewsTest(t)
	article := createArticle(t, `{"title":"Kit day","content":"Bring boots"}`)
	id := strconv.FormatInt(article.ID, 10)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/news/"+id, strings.NewReader(`{"title":"Kit day moved","content":"Sunday","author":"Coach"}`))
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	HandleUpdateNews(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var updated appnews.Article
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if updated.Title != "Kit day moved" || updated.Author != "Coach" {
		t.Fatalf("unexpected article: %+v", updated)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/news/"+id, nil)
	req.SetPathValue("id", id)
	rec = httptest.NewRecorder()
	HandleDeleteNews(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	rec = httptest.NewRecorder()
	HandleDeleteNews(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
