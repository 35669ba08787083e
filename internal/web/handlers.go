package web

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"shelfmark/internal/auth"
	"shelfmark/internal/bookshelf"
	"shelfmark/models"
)

const flashBookNotFound = "Book not found or access denied"

// WebHandler renders every page of the application
type WebHandler struct {
	auth      *auth.Service
	books     *bookshelf.Service
	sessions  *auth.SessionManager
	templates *template.Template
	logger    *zap.Logger
}

// PageData is the payload handed to every page template
type PageData struct {
	Page      string
	User      *models.User
	Flashes   []string
	CSRFToken string

	Books []*models.Book
	Book  *models.Book

	RegisterForm *RegisterForm
	LoginForm    *LoginForm
	BookForm     *BookForm
}

// NewWebHandler wires the page handlers to their services and parses the
// embedded templates.
func NewWebHandler(
	authService *auth.Service,
	bookService *bookshelf.Service,
	sessions *auth.SessionManager,
	logger *zap.Logger,
) (*WebHandler, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &WebHandler{
		auth:      authService,
		books:     bookService,
		sessions:  sessions,
		templates: tmpl,
		logger:    logger,
	}, nil
}

// Home shows the signed-in user's shelf. Anonymous visitors get the same
// page with an empty list.
func (h *WebHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := h.newPageData(w, r, "home")

	if data.User != nil {
		books, err := h.books.List(r.Context(), data.User.ID)
		if err != nil {
			h.logger.Error("error listing books", zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		data.Books = books
	}

	h.render(w, "home.html", data)
}

// Register shows and processes the registration form. A taken email sends
// the visitor to the login page instead of leaking whether it exists on
// the form itself.
func (h *WebHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		data := h.newPageData(w, r, "register")
		data.RegisterForm = &RegisterForm{}
		h.render(w, "register.html", data)
		return
	}

	form := ParseRegisterForm(r)
	if !form.Validate() {
		data := h.newPageData(w, r, "register")
		data.RegisterForm = form
		h.render(w, "register.html", data)
		return
	}

	user, err := h.auth.Register(r.Context(), form.Name, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateEmail) {
			h.sessions.Flash(w, r, "Email already registered. Please login.")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.logger.Error("registration failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.SignIn(w, r, user.ID); err != nil {
		h.logger.Error("session save failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Login shows and processes the login form. Unknown email and wrong
// password get the same flash message.
func (h *WebHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		data := h.newPageData(w, r, "login")
		data.LoginForm = &LoginForm{}
		h.render(w, "login.html", data)
		return
	}

	form := ParseLoginForm(r)
	if !form.Validate() {
		data := h.newPageData(w, r, "login")
		data.LoginForm = form
		h.render(w, "login.html", data)
		return
	}

	user, err := h.auth.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.sessions.Flash(w, r, "Invalid email or password")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.SignIn(w, r, user.ID); err != nil {
		h.logger.Error("session save failed", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout clears the session and sends the visitor back to the login page
func (h *WebHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(w, r); err != nil {
		h.logger.Error("session clear failed", zap.Error(err))
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// AddBook shows and processes the add form. A title that already exists
// anywhere in the store is dropped without feedback; either way the user
// lands back on the shelf.
func (h *WebHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	if r.Method == http.MethodGet {
		data := h.newPageData(w, r, "add")
		data.BookForm = &BookForm{}
		h.render(w, "add.html", data)
		return
	}

	form := ParseBookForm(r)
	if !form.Validate() {
		data := h.newPageData(w, r, "add")
		data.BookForm = form
		h.render(w, "add.html", data)
		return
	}

	if _, err := h.books.Add(r.Context(), user.ID, form.Title, form.Author, form.Rating); err != nil {
		h.logger.Error("error adding book", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// EditBook shows the rating form for one book and processes the new
// rating. A bad rating re-renders the form with the stored book unchanged.
func (h *WebHandler) EditBook(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	bookID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.flashNotFound(w, r)
		return
	}

	book, err := h.books.Get(r.Context(), user.ID, bookID)
	if err != nil {
		if errors.Is(err, bookshelf.ErrNotFound) {
			h.flashNotFound(w, r)
			return
		}
		h.logger.Error("error loading book", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if r.Method == http.MethodGet {
		data := h.newPageData(w, r, "edit")
		data.Book = book
		data.BookForm = &BookForm{RatingRaw: strconv.FormatFloat(book.Rating, 'f', -1, 64)}
		h.render(w, "edit.html", data)
		return
	}

	raw := r.PostFormValue("rating")
	rating, parseErr := strconv.ParseFloat(raw, 64)
	if parseErr == nil {
		err := h.books.EditRating(r.Context(), user.ID, bookID, rating)
		switch {
		case err == nil:
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		case errors.Is(err, bookshelf.ErrNotFound):
			h.flashNotFound(w, r)
			return
		case errors.Is(err, bookshelf.ErrInvalidRating):
			// fall through to the re-render below
		default:
			h.logger.Error("error updating rating", zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	data := h.newPageData(w, r, "edit")
	data.Book = book
	data.BookForm = &BookForm{
		RatingRaw: raw,
		Errors:    map[string]string{"rating": "Rating must be between 0 and 10"},
	}
	h.render(w, "edit.html", data)
}

// DeleteBook removes one book from the signed-in user's shelf
func (h *WebHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	user := h.requireUser(w, r)
	if user == nil {
		return
	}

	bookID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.flashNotFound(w, r)
		return
	}

	if err := h.books.Delete(r.Context(), user.ID, bookID); err != nil {
		if errors.Is(err, bookshelf.ErrNotFound) {
			h.flashNotFound(w, r)
			return
		}
		h.logger.Error("error deleting book", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// NotFound renders the 404 page for unknown routes
func (h *WebHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	h.render(w, "404.html", PageData{Page: "404"})
}

// Helper methods

// newPageData assembles the common template payload. It drains queued
// flash messages, so call it only on a path that actually renders.
func (h *WebHandler) newPageData(w http.ResponseWriter, r *http.Request, page string) PageData {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		user = h.sessions.CurrentUser(r.Context(), r)
	}

	return PageData{
		Page:      page,
		User:      user,
		Flashes:   h.sessions.Flashes(w, r),
		CSRFToken: h.sessions.CSRFToken(w, r),
	}
}

// requireUser returns the signed-in user, redirecting to the login page
// when the session is gone. Routes behind the auth middleware normally
// never hit the redirect.
func (h *WebHandler) requireUser(w http.ResponseWriter, r *http.Request) *models.User {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		user = h.sessions.CurrentUser(r.Context(), r)
	}
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil
	}
	return user
}

func (h *WebHandler) flashNotFound(w http.ResponseWriter, r *http.Request) {
	h.sessions.Flash(w, r, flashBookNotFound)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *WebHandler) render(w http.ResponseWriter, name string, data PageData) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template execution failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
