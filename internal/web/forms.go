package web

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RegisterForm holds the registration page fields
type RegisterForm struct {
	Name     string `validate:"required,min=2,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`

	Errors map[string]string `validate:"-"`
}

// ParseRegisterForm reads the registration fields from the request
func ParseRegisterForm(r *http.Request) *RegisterForm {
	return &RegisterForm{
		Name:     r.PostFormValue("name"),
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
}

// Validate checks the form and fills Errors, keyed by field name
func (f *RegisterForm) Validate() bool {
	f.Errors = map[string]string{}
	if err := validate.Struct(f); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				switch fe.Field() {
				case "Name":
					f.Errors["name"] = "Name must be between 2 and 100 characters long"
				case "Email":
					f.Errors["email"] = "Enter a valid email address"
				case "Password":
					f.Errors["password"] = "Password must be at least 6 characters long"
				}
			}
		}
	}
	return len(f.Errors) == 0
}

// LoginForm holds the login page fields
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`

	Errors map[string]string `validate:"-"`
}

// ParseLoginForm reads the login fields from the request
func ParseLoginForm(r *http.Request) *LoginForm {
	return &LoginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
}

// Validate checks the form and fills Errors, keyed by field name
func (f *LoginForm) Validate() bool {
	f.Errors = map[string]string{}
	if err := validate.Struct(f); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				switch fe.Field() {
				case "Email":
					f.Errors["email"] = "Enter a valid email address"
				case "Password":
					f.Errors["password"] = "Password is required"
				}
			}
		}
	}
	return len(f.Errors) == 0
}

// BookForm holds the add-book page fields. RatingRaw keeps whatever the
// user typed so a failed submit can re-render it.
type BookForm struct {
	Title     string  `validate:"required"`
	Author    string  `validate:"required"`
	Rating    float64 `validate:"min=0,max=10"`
	RatingRaw string  `validate:"-"`

	Errors        map[string]string `validate:"-"`
	ratingInvalid bool
}

// ParseBookForm reads the book fields from the request
func ParseBookForm(r *http.Request) *BookForm {
	f := &BookForm{
		Title:     r.PostFormValue("title"),
		Author:    r.PostFormValue("author"),
		RatingRaw: r.PostFormValue("rating"),
	}

	rating, err := strconv.ParseFloat(f.RatingRaw, 64)
	if err != nil {
		f.ratingInvalid = true
		return f
	}
	f.Rating = rating

	return f
}

// Validate checks the form and fills Errors, keyed by field name
func (f *BookForm) Validate() bool {
	f.Errors = map[string]string{}
	if f.ratingInvalid {
		f.Errors["rating"] = "Rating must be between 0 and 10"
	}
	if err := validate.Struct(f); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				switch fe.Field() {
				case "Title":
					f.Errors["title"] = "Title is required"
				case "Author":
					f.Errors["author"] = "Author is required"
				case "Rating":
					f.Errors["rating"] = "Rating must be between 0 and 10"
				}
			}
		}
	}
	return len(f.Errors) == 0
}
