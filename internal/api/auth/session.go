package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"
)

const (
	sessionCookieName = "clubconnect_session"
	sessionTokenBytes = 32
	defaultSessionTTL = 2 * time.Hour
)

type sessionRecord struct {
	UserID    int64
	ExpiresAt time.Time
}

// SessionStore keeps trainer sessions in memory. Restarting the server signs
// everybody out.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]sessionRecord
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]sessionRecord),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a session for userID and ends any earlier ones.
func (s *SessionStore) Create(userID int64) (string, time.Time, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := s.now().Add(s.ttl)

	s.mu.Lock()
	for existing, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, existing)
		}
	}
	s.sessions[token] = sessionRecord{UserID: userID, ExpiresAt: expiresAt}
	s.mu.Unlock()

	return token, expiresAt, nil
}

// Lookup returns the live session for token. Expired sessions are removed.
func (s *SessionStore) Lookup(token string) (sessionRecord, bool) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return sessionRecord{}, false
	}

	if !session.ExpiresAt.After(s.now()) {
		s.Delete(token)
		return sessionRecord{}, false
	}
	return session, true
}

func (s *SessionStore) Delete(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// Prune drops expired sessions and returns how many were removed.
func (s *SessionStore) Prune() int {
	now := s.now()
	removed := 0
	s.mu.Lock()
	for token, session := range s.sessions {
		if !session.ExpiresAt.After(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	s.mu.Unlock()
	return removed
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

func isSecureCookie() bool {
	return appConfig == nil || !appConfig.IsDevelopment()
}

// CreateSession starts a session for userID and sets the session cookie.
func CreateSession(w http.ResponseWriter, userID int64) error {
	if w == nil {
		return errors.New("session requires response writer")
	}
	if sessions == nil {
		return errors.New("session store not initialized")
	}

	token, expiresAt, err := sessions.Create(userID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureCookie(),
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
		MaxAge:   int(sessions.TTL().Seconds()),
	})
	return nil
}

// ClearSession ends the request's session, if any, and expires the cookie.
func ClearSession(w http.ResponseWriter, r *http.Request) {
	if r != nil && sessions != nil {
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			sessions.Delete(cookie.Value)
		}
	}
	ClearSessionCookie(w)
}

func ClearSessionCookie(w http.ResponseWriter) {
	if w == nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureCookie(),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// PruneExpiredSessions is run by the scheduler.
func PruneExpiredSessions() int {
	if sessions == nil {
		return 0
	}
	return sessions.Prune()
}

func newSessionToken() (string, error) {
	token := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(token), nil
}
