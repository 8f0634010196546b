package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/codr1/clubconnect/internal/api/authz"
	"github.com/codr1/clubconnect/internal/api/htmx"
	"github.com/codr1/clubconnect/internal/config"
	"github.com/codr1/clubconnect/internal/db"
	"github.com/codr1/clubconnect/internal/ratelimit"
	logintempl "github.com/codr1/clubconnect/internal/templates/components/login"
	"github.com/codr1/clubconnect/internal/templates/layouts"
	"github.com/codr1/clubconnect/internal/users"
)

const loginTimeout = 5 * time.Second

var (
	appConfig     *config.Config
	userStore     *users.Store
	sessions      *SessionStore
	limiter       *ratelimit.Limiter
	globalLimiter *rate.Limiter
)

// InitHandlers wires the login handlers to the database and configuration.
func InitHandlers(database *db.DB, cfg *config.Config) {
	appConfig = cfg
	userStore = users.NewStore(database.Queries)
	sessions = NewSessionStore(cfg.Auth.SessionTTL)
	if limiter != nil {
		limiter.Close()
	}
	limiter = ratelimit.New(&ratelimit.Config{
		MaxAttempts: cfg.Auth.MaxLoginAttempts,
		Lockout:     cfg.Auth.LoginLockout,
	})
	globalLimiter = rate.NewLimiter(rate.Limit(10), 20)
}

// Close stops the login limiter's cleanup goroutine.
func Close() {
	if limiter != nil {
		limiter.Close()
		limiter = nil
	}
}

func loginData(username, message string) logintempl.Data {
	data := logintempl.Data{Username: username, Error: message}
	if appConfig != nil {
		data.ClubName = appConfig.App.ClubName
		data.Theme = layouts.Theme{
			Primary: appConfig.App.Theme.Primary,
			Accent:  appConfig.App.Theme.Accent,
		}
	}
	return data
}

func trustProxy() bool {
	return appConfig != nil && appConfig.App.TrustProxy
}

// GET /login
func HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if authz.UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	component := logintempl.Page(loginData("", ""))
	if err := component.Render(r.Context(), w); err != nil {
		logger.Error().Err(err).Msg("Failed to render login page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

// POST /login
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if userStore == nil || sessions == nil || limiter == nil {
		logger.Error().Msg("Auth handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if !globalLimiter.Allow() {
		logger.Warn().Msg("Global login rate limit exceeded")
		http.Error(w, "Too many login attempts", http.StatusTooManyRequests)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		renderLoginError(w, r, http.StatusBadRequest, username, "Username and password are required")
		return
	}

	ip := ratelimit.GetClientIP(r, trustProxy())
	if result := limiter.CheckLogin(username, ip); !result.Allowed {
		ratelimit.LogRateLimitExceeded(username, ip, result.Reason)
		w.Header().Set("Retry-After", retryAfterSeconds(result.RetryAfter))
		renderLoginError(w, r, http.StatusTooManyRequests, username, "Too many failed attempts, please try again later")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), loginTimeout)
	defer cancel()

	user, err := userStore.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		logger.Error().Err(err).Msg("Failed to load user for login")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err != nil || !VerifyPassword(user.PasswordHash, password) {
		if limiter.RecordFailure(username, ip) {
			logger.Warn().
				Str("username", ratelimit.SanitizeUsername(username)).
				Str("ip", ip).
				Msg("Login locked out after repeated failures")
		}
		renderLoginError(w, r, http.StatusUnauthorized, username, "Invalid username or password")
		return
	}

	limiter.Reset(username)
	if err := CreateSession(w, user.ID); err != nil {
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to create session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	logger.Info().Int64("user_id", user.ID).Bool("trainer", user.IsTrainer).Msg("User signed in")
	htmx.Redirect(w, r, "/")
}

// POST /logout
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	ClearSession(w, r)
	if user := authz.UserFromContext(r.Context()); user != nil {
		log.Ctx(r.Context()).Info().Int64("user_id", user.ID).Msg("User signed out")
	}
	htmx.Redirect(w, r, "/")
}

// UserFromRequest resolves the session cookie to the signed-in user. It
// returns nil without an error when there is no valid session.
func UserFromRequest(w http.ResponseWriter, r *http.Request) (*authz.AuthUser, error) {
	if r == nil || sessions == nil {
		return nil, nil
	}

	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}

	session, ok := sessions.Lookup(cookie.Value)
	if !ok {
		ClearSessionCookie(w)
		return nil, nil
	}

	if userStore == nil {
		ClearSessionCookie(w)
		return nil, errors.New("auth user store not initialized")
	}

	user, err := userStore.GetByID(r.Context(), session.UserID)
	if err != nil || !user.Active {
		sessions.Delete(cookie.Value)
		ClearSessionCookie(w)
		if err == nil || errors.Is(err, users.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &authz.AuthUser{
		ID:        user.ID,
		Username:  user.Username,
		IsTrainer: user.IsTrainer,
	}, nil
}

func renderLoginError(w http.ResponseWriter, r *http.Request, status int, username, message string) {
	component := logintempl.Page(loginData(username, message))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := component.Render(r.Context(), w); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to render login page")
	}
}

func retryAfterSeconds(d time.Duration) string {
	seconds := int(d.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
