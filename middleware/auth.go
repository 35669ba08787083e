package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"shelfmark/internal/auth"
)

// Middleware bundles the session-backed request filters mounted on the
// router.
type Middleware struct {
	Sessions *auth.SessionManager
	Logger   *zap.Logger
}

func NewMiddleware(sessions *auth.SessionManager, logger *zap.Logger) *Middleware {
	return &Middleware{Sessions: sessions, Logger: logger}
}

// RequireAuth redirects visitors without a live session to the login
// page. The resolved user is stashed on the request context so handlers
// do not look it up again.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := m.Sessions.CurrentUser(r.Context(), r)
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}
