package web

import (
	"net/http"

	"github.com/gorilla/mux"

	"shelfmark/middleware"
)

// SetupRoutes builds the router. Every route passes through panic
// recovery, request logging, and POST CSRF verification; the book and
// logout routes additionally require a signed-in session.
func (h *WebHandler) SetupRoutes(mw *middleware.Middleware) *mux.Router {
	r := mux.NewRouter()
	r.Use(mw.PanicRecovery)
	r.Use(mw.RequestLogging)
	r.Use(mw.VerifyCSRF)

	// Public pages
	r.HandleFunc("/", h.Home).Methods("GET")
	r.HandleFunc("/register", h.Register).Methods("GET", "POST")
	r.HandleFunc("/login", h.Login).Methods("GET", "POST")

	// Pages behind a session
	authed := r.NewRoute().Subrouter()
	authed.Use(mw.RequireAuth)
	authed.HandleFunc("/logout", h.Logout).Methods("GET")
	authed.HandleFunc("/add", h.AddBook).Methods("GET", "POST")
	authed.HandleFunc("/edit/{id:[0-9]+}", h.EditBook).Methods("GET", "POST")
	authed.HandleFunc("/delete/{id:[0-9]+}", h.DeleteBook).Methods("POST")

	// 404 handler
	r.NotFoundHandler = http.HandlerFunc(h.NotFound)

	return r
}
