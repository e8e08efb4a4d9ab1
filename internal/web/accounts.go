package web

import (
	"errors"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"minitweet/internal/forms"
	"minitweet/internal/logging"
	"minitweet/internal/metrics"
	"minitweet/internal/models"
	"minitweet/internal/store"
)

func (s *Server) signup(w http.ResponseWriter, r *http.Request, me *models.User) error {
	if r.Method == http.MethodGet {
		return s.render(w, r, me, http.StatusOK, "signup.html", nil)
	}
	if err := r.ParseForm(); err != nil {
		return badRequest("Malformed form body")
	}

	form := forms.NewSignupForm(r)
	errs := form.Validate()
	if form.Username != "" && len(errs["username"]) == 0 {
		taken, err := s.store.UsernameExists(r.Context(), form.Username)
		if err != nil {
			return err
		}
		if taken {
			errs.Add("username", forms.MsgDuplicateUsername)
		}
	}

	var user *models.User
	if !errs.Any() {
		hash, err := bcrypt.GenerateFromPassword([]byte(form.Password1), s.bcryptCost)
		switch {
		case errors.Is(err, bcrypt.ErrPasswordTooLong):
			errs.Add("password2", "This password is too long.")
		case err != nil:
			return err
		default:
			user = &models.User{Username: form.Username, Email: form.Email, PasswordHash: string(hash)}
			err = s.store.CreateUser(r.Context(), user)
			if errors.Is(err, store.ErrDuplicate) {
				errs.Add("username", forms.MsgDuplicateUsername)
			} else if err != nil {
				return err
			}
		}
	}

	if errs.Any() {
		return s.render(w, r, me, http.StatusOK, "signup.html", map[string]any{
			"Form":   form,
			"Errors": errs,
		})
	}

	if err := s.logIn(w, r, user); err != nil {
		return err
	}
	logging.FromContext(r.Context(), s.log).WithField("username", user.Username).Info("User registered successfully")
	s.metrics.Signups.WithLabelValues(metrics.RouteLabel(r)).Inc()
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, me *models.User) error {
	if r.Method == http.MethodGet {
		return s.render(w, r, me, http.StatusOK, "login.html", map[string]any{
			"Next": r.URL.Query().Get("next"),
		})
	}
	if err := r.ParseForm(); err != nil {
		return badRequest("Malformed form body")
	}

	form := forms.NewLoginForm(r)
	next := r.FormValue("next")
	errs := form.Validate()

	var user *models.User
	if !errs.Any() {
		var err error
		user, err = s.authenticate(r, form.Username, form.Password)
		if err != nil {
			return err
		}
		if user == nil {
			errs.Add(forms.NonField, forms.MsgInvalidLogin)
		}
	}

	if errs.Any() {
		logging.FromContext(r.Context(), s.log).WithField("username", form.Username).Warn("Invalid login credentials")
		s.metrics.FailedLogins.WithLabelValues(metrics.RouteLabel(r)).Inc()
		return s.render(w, r, me, http.StatusOK, "login.html", map[string]any{
			"Form":   form,
			"Errors": errs,
			"Next":   next,
		})
	}

	if err := s.logIn(w, r, user); err != nil {
		return err
	}
	logging.FromContext(r.Context(), s.log).WithField("username", user.Username).Info("User logged in successfully")
	http.Redirect(w, r, safeNext(next), http.StatusFound)
	return nil
}

// authenticate returns the user matching the credentials, or nil when they
// do not match. Unknown usernames still pay for a bcrypt comparison.
func (s *Server) authenticate(r *http.Request, username, password string) (*models.User, error) {
	user, err := s.store.UserByUsername(r.Context(), username)
	if errors.Is(err, store.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return user, nil
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request, me *models.User) error {
	if err := s.logOut(w, r); err != nil {
		return err
	}
	logging.FromContext(r.Context(), s.log).WithField("username", me.Username).Info("User logged out")
	http.Redirect(w, r, "/accounts/login", http.StatusFound)
	return nil
}
