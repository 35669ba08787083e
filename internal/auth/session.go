package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"shelfmark/db"
	"shelfmark/models"
)

const (
	sessionName  = "shelfmark_session"
	userIDKey    = "user_id"
	csrfTokenKey = "csrf_token"
)

// CSRFFieldName is the hidden form field carrying the session's CSRF token.
const CSRFFieldName = "csrf_token"

// SessionManager wraps the cookie store. It owns sign-in state, one-time
// flash messages, and the per-session CSRF token.
type SessionManager struct {
	store *sessions.CookieStore
	users db.UserRepository
}

// NewSessionManager creates a session manager backed by a signed cookie.
// secure should be true whenever the app is served over HTTPS.
func NewSessionManager(secret string, secure bool, users db.UserRepository) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store, users: users}
}

// SignIn records the user id in the session cookie
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, userID int64) error {
	session, _ := m.store.Get(r, sessionName)
	session.Values[userIDKey] = userID
	return session.Save(r, w)
}

// SignOut drops all session state, including the CSRF token
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	session, _ := m.store.Get(r, sessionName)
	session.Values = make(map[interface{}]interface{})
	return session.Save(r, w)
}

// CurrentUser resolves the session cookie to a user record. A missing,
// tampered, or stale session resolves to nil.
func (m *SessionManager) CurrentUser(ctx context.Context, r *http.Request) *models.User {
	session, _ := m.store.Get(r, sessionName)
	userID, ok := session.Values[userIDKey].(int64)
	if !ok {
		return nil
	}
	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		return nil
	}
	return user
}

// Flash queues a one-time message for the next rendered page
func (m *SessionManager) Flash(w http.ResponseWriter, r *http.Request, message string) {
	session, _ := m.store.Get(r, sessionName)
	session.AddFlash(message)
	session.Save(r, w)
}

// Flashes drains and returns all queued messages
func (m *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) []string {
	session, _ := m.store.Get(r, sessionName)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	session.Save(r, w)

	messages := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}

// CSRFToken returns the session's CSRF token, minting one on first use
func (m *SessionManager) CSRFToken(w http.ResponseWriter, r *http.Request) string {
	session, _ := m.store.Get(r, sessionName)
	token, ok := session.Values[csrfTokenKey].(string)
	if !ok || token == "" {
		token = uuid.New().String()
		session.Values[csrfTokenKey] = token
		session.Save(r, w)
	}
	return token
}

// VerifyCSRF checks the posted token field against the session's token
func (m *SessionManager) VerifyCSRF(r *http.Request) bool {
	session, _ := m.store.Get(r, sessionName)
	token, ok := session.Values[csrfTokenKey].(string)
	if !ok || token == "" {
		return false
	}
	return r.PostFormValue(CSRFFieldName) == token
}
