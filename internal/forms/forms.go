// Package forms decodes and validates the HTML forms posted to the site.
package forms

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// NonField is the Errors key for messages that belong to the form as a whole.
const NonField = "__all__"

const (
	MsgRequired          = "This field is required."
	MsgInvalidEmail      = "Enter a valid email address."
	MsgInvalidUsername   = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	MsgDuplicateUsername = "A user with that username already exists."
	MsgPasswordMismatch  = "The two password fields didn't match."
	MsgInvalidLogin      = "Please enter a correct username and password. Note that both fields may be case-sensitive."
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Errors maps a form field to its messages. Messages that are not tied to a
// field are stored under NonField.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Any() bool {
	return len(e) > 0
}

func (e Errors) collect(err error) {
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		e.Add(NonField, err.Error())
		return
	}
	for _, fe := range verrs {
		e.Add(fe.Field(), message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "email":
		return MsgInvalidEmail
	case "username":
		return MsgInvalidUsername
	case "max":
		given := 0
		if s, ok := fe.Value().(string); ok {
			given = utf8.RuneCountInString(s)
		}
		return fmt.Sprintf("Ensure this value is not too long: %s characters maximum, %d given.", fe.Param(), given)
	}
	return "Enter a valid value."
}

type SignupForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"required,max=254,email"`
	Password1 string `form:"password1" validate:"required"`
	Password2 string `form:"password2" validate:"required"`
}

// NewSignupForm reads a signup form from a parsed POST body. Passwords are
// taken verbatim; other fields are trimmed.
func NewSignupForm(r *http.Request) SignupForm {
	return SignupForm{
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}
}

// Validate runs every check that does not need the database. Password
// policy violations are reported on password2; a mismatch suppresses them.
func (f SignupForm) Validate() Errors {
	errs := Errors{}
	errs.collect(validate.Struct(f))

	if f.Password1 == "" || f.Password2 == "" {
		return errs
	}
	if f.Password1 != f.Password2 {
		errs.Add("password2", MsgPasswordMismatch)
		return errs
	}
	for _, p := range ValidatePassword(f.Password2, f.Username, f.Email) {
		errs.Add("password2", p)
	}
	return errs
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func NewLoginForm(r *http.Request) LoginForm {
	return LoginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
}

func (f LoginForm) Validate() Errors {
	errs := Errors{}
	errs.collect(validate.Struct(f))
	return errs
}

type TweetForm struct {
	Content string `form:"content" validate:"required,max=150"`
}

func NewTweetForm(r *http.Request) TweetForm {
	return TweetForm{Content: strings.TrimSpace(r.PostFormValue("content"))}
}

func (f TweetForm) Validate() Errors {
	errs := Errors{}
	errs.collect(validate.Struct(f))
	return errs
}
