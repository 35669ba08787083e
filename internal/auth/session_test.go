package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfmark/db"
	"shelfmark/models"
)

func newTestSessionManager(users db.UserRepository) *SessionManager {
	return NewSessionManager("test_session_secret_key", false, users)
}

// replayCookies copies the session cookie from a recorded response onto a
// fresh request, the way a browser would on the next page load.
func replayCookies(t *testing.T, w *httptest.ResponseRecorder, r *http.Request) {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
}

func TestSessionManager_SignInSignOut(t *testing.T) {
	user := &models.User{ID: 7, Email: "jane@example.com", Name: "Jane Reader"}
	users := &mockUserRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			if id == user.ID {
				return user, nil
			}
			return nil, db.ErrNotFound
		},
	}
	sm := newTestSessionManager(users)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/login", nil)
	require.NoError(t, sm.SignIn(w, r, user.ID))

	next := httptest.NewRequest("GET", "/", nil)
	replayCookies(t, w, next)
	got := sm.CurrentUser(context.Background(), next)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	w2 := httptest.NewRecorder()
	require.NoError(t, sm.SignOut(w2, next))

	last := httptest.NewRequest("GET", "/", nil)
	replayCookies(t, w2, last)
	assert.Nil(t, sm.CurrentUser(context.Background(), last))
}

func TestSessionManager_AnonymousIsNil(t *testing.T) {
	sm := newTestSessionManager(&mockUserRepository{})

	r := httptest.NewRequest("GET", "/", nil)
	assert.Nil(t, sm.CurrentUser(context.Background(), r))
}

func TestSessionManager_StaleSessionIsNil(t *testing.T) {
	// The cookie carries a user id that no longer exists in the store.
	users := &mockUserRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			return nil, db.ErrNotFound
		},
	}
	sm := newTestSessionManager(users)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/login", nil)
	require.NoError(t, sm.SignIn(w, r, 42))

	next := httptest.NewRequest("GET", "/", nil)
	replayCookies(t, w, next)
	assert.Nil(t, sm.CurrentUser(context.Background(), next))
}

func TestSessionManager_TamperedCookieIsNil(t *testing.T) {
	users := &mockUserRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*models.User, error) {
			t.Error("tampered session must not reach the store")
			return nil, db.ErrNotFound
		},
	}
	sm := newTestSessionManager(users)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/login", nil)
	require.NoError(t, sm.SignIn(w, r, 7))

	// Corrupt the signed cookie before replaying it.
	next := httptest.NewRequest("GET", "/", nil)
	for _, c := range w.Result().Cookies() {
		c.Value = "x" + c.Value
		next.AddCookie(c)
	}
	assert.Nil(t, sm.CurrentUser(context.Background(), next))
}

func TestSessionManager_Flashes(t *testing.T) {
	sm := newTestSessionManager(&mockUserRepository{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/login", nil)
	sm.Flash(w, r, "Invalid email or password")

	next := httptest.NewRequest("GET", "/login", nil)
	replayCookies(t, w, next)
	w2 := httptest.NewRecorder()
	assert.Equal(t, []string{"Invalid email or password"}, sm.Flashes(w2, next))

	// Draining consumed the message.
	last := httptest.NewRequest("GET", "/login", nil)
	replayCookies(t, w2, last)
	w3 := httptest.NewRecorder()
	assert.Empty(t, sm.Flashes(w3, last))
}

func TestSessionManager_CSRF(t *testing.T) {
	sm := newTestSessionManager(&mockUserRepository{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/register", nil)
	token := sm.CSRFToken(w, r)
	require.NotEmpty(t, token)

	// The token is stable across calls in the same session.
	assert.Equal(t, token, sm.CSRFToken(w, r))

	form := url.Values{CSRFFieldName: {token}}
	post := httptest.NewRequest("POST", "/register", strings.NewReader(form.Encode()))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	replayCookies(t, w, post)
	assert.True(t, sm.VerifyCSRF(post))

	forged := url.Values{CSRFFieldName: {"forged"}}
	post = httptest.NewRequest("POST", "/register", strings.NewReader(forged.Encode()))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	replayCookies(t, w, post)
	assert.False(t, sm.VerifyCSRF(post))

	// A request without the session cookie has no token to match.
	post = httptest.NewRequest("POST", "/register", strings.NewReader(form.Encode()))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.False(t, sm.VerifyCSRF(post))
}
