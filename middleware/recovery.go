package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// PanicRecovery turns a panicking handler into a plain 500 response
// instead of tearing down the server.
func (m *Middleware) PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				m.Logger.Error("panic occurred",
					zap.String("path", r.URL.Path),
					zap.Any("error", err))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
