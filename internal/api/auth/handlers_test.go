package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/codr1/clubconnect/internal/api/authz"
	"github.com/codr1/clubconnect/internal/config"
	"github.com/codr1/clubconnect/internal/testutil"
	"github.com/codr1/clubconnect/internal/users"
)

const testPassword = "correct horse battery"

type authTestContext struct {
	trainerID int64
	parentID  int64
	store     *users.Store
}

func setupAuthTest(t *testing.T) authTestContext {
	t.Helper()

	database := testutil.NewTestDB(t)

	prevConfig, prevUsers, prevSessions := appConfig, userStore, sessions
	prevLimiter, prevGlobal := limiter, globalLimiter
	t.Cleanup(func() {
		Close()
		appConfig, userStore, sessions = prevConfig, prevUsers, prevSessions
		limiter, globalLimiter = prevLimiter, prevGlobal
	})
	limiter = nil

	cfg := &config.Config{}
	cfg.App.Environment = "development"
	cfg.Auth.SessionTTL = time.Hour
	cfg.Auth.MaxLoginAttempts = 3
	cfg.Auth.LoginLockout = time.Minute
	InitHandlers(database, cfg)

	hash, err := HashPassword(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	ctx := context.Background()
	trainer, err := userStore.Create(ctx, "coach", hash, true)
	if err != nil {
		t.Fatalf("create trainer: %v", err)
	}
	parent, err := userStore.Create(ctx, "parent", hash, false)
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}

	return authTestContext{trainerID: trainer.ID, parentID: parent.ID, store: userStore}
}

func postLogin(username, password string, headers map[string]string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "192.0.2.10:4000"
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	HandleLogin(rec, req)
	return rec
}

func TestHandleLoginSuccess(t *testing.T) {
	tc := setupAuthTest(t)

	rec := postLogin("Coach", testPassword, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d: %s", http.StatusSeeOther, rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("Location = %q, want /", loc)
	}

	cookie := findCookie(rec.Result().Cookies(), sessionCookieName)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	user, err := UserFromRequest(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("user from request: %v", err)
	}
	if user == nil || user.ID != tc.trainerID || !user.IsTrainer || user.Username != "coach" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestHandleLoginHTMXRedirect(t *testing.T) {
	setupAuthTest(t)

	rec := postLogin("coach", testPassword, map[string]string{"HX-Request": "true"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/" {
		t.Fatalf("HX-Redirect = %q, want /", got)
	}
}

func TestHandleLoginRejected(t *testing.T) {
	setupAuthTest(t)

	tests := []struct {
		name     string
		username string
		password string
		status   int
	}{
		{name: "wrong password", username: "coach", password: "nope", status: http.StatusUnauthorized},
		{name: "unknown user", username: "ghost", password: testPassword, status: http.StatusUnauthorized},
		{name: "missing password", username: "coach", password: "", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postLogin(tt.username, tt.password, nil)
			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			if findCookie(rec.Result().Cookies(), sessionCookieName) != nil {
				t.Fatal("rejected login must not set a session cookie")
			}
		})
	}
}

func TestHandleLoginInactiveUser(t *testing.T) {
	tc := setupAuthTest(t)

	if err := tc.store.SetActive(context.Background(), tc.parentID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if rec := postLogin("parent", testPassword, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestHandleLoginLockout(t *testing.T) {
	setupAuthTest(t)

	for i := 0; i < 3; i++ {
		if rec := postLogin("coach", "wrong", nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected status %d, got %d", i+1, http.StatusUnauthorized, rec.Code)
		}
	}

	rec := postLogin("coach", testPassword, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestHandleLogout(t *testing.T) {
	setupAuthTest(t)

	cookie := findCookie(postLogin("coach", testPassword, nil).Result().Cookies(), sessionCookieName)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	HandleLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if _, ok := sessions.Lookup(cookie.Value); ok {
		t.Fatal("logout should end the session")
	}
}

func TestUserFromRequestDeactivatedUser(t *testing.T) {
	tc := setupAuthTest(t)

	cookie := findCookie(postLogin("parent", testPassword, nil).Result().Cookies(), sessionCookieName)
	if cookie == nil {
		t.Fatal("expected session cookie")
	}
	if err := tc.store.SetActive(context.Background(), tc.parentID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	user, err := UserFromRequest(httptest.NewRecorder(), req)
	if err != nil {
		t.Fatalf("user from request: %v", err)
	}
	if user != nil {
		t.Fatalf("deactivated user should be signed out, got %+v", user)
	}
	if _, ok := sessions.Lookup(cookie.Value); ok {
		t.Fatal("session of a deactivated user should be removed")
	}
}

func TestUserFromRequestNoCookie(t *testing.T) {
	setupAuthTest(t)

	user, err := UserFromRequest(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil || user != nil {
		t.Fatalf("expected no user, got %+v, %v", user, err)
	}
}

func TestHandleLoginPageRedirectsSignedInUser(t *testing.T) {
	setupAuthTest(t)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req = req.WithContext(authz.ContextWithUser(req.Context(), &authz.AuthUser{ID: 1, Username: "coach", IsTrainer: true}))
	rec := httptest.NewRecorder()
	HandleLoginPage(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
}

func TestHandleLoginPageRenders(t *testing.T) {
	setupAuthTest(t)

	rec := httptest.NewRecorder()
	HandleLoginPage(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `name="username"`) {
		t.Fatal("login form missing username field")
	}
}
