package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/sessions"

	"minitweet/internal/logging"
	"minitweet/internal/models"
	"minitweet/internal/store"
)

const (
	sessionName   = "minitweet"
	sessionUserID = "user_id"
)

// handlerFunc receives the logged-in user explicitly. For public routes me
// may be nil.
type handlerFunc func(w http.ResponseWriter, r *http.Request, me *models.User) error

func (s *Server) session(r *http.Request) *sessions.Session {
	sess, err := s.sessions.Get(r, sessionName)
	if err != nil {
		// Undecodable cookie (rotated key, tampering): start over.
		logging.FromContext(r.Context(), s.log).WithError(err).Debug("Discarding invalid session")
	}
	return sess
}

// currentUser resolves the session to a user. A missing or stale session
// yields nil without error.
func (s *Server) currentUser(r *http.Request) (*models.User, error) {
	id, ok := s.session(r).Values[sessionUserID].(uint)
	if !ok {
		return nil, nil
	}
	u, err := s.store.UserByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func (s *Server) public(h handlerFunc) http.HandlerFunc {
	return s.wrap(h, false, false)
}

func (s *Server) authed(h handlerFunc) http.HandlerFunc {
	return s.wrap(h, true, false)
}

func (s *Server) authedJSON(h handlerFunc) http.HandlerFunc {
	return s.wrap(h, true, true)
}

func (s *Server) wrap(h handlerFunc, loginRequired, asJSON bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, err := s.currentUser(r)
		if err != nil {
			s.fail(w, r, nil, err, asJSON)
			return
		}
		if me == nil && loginRequired {
			http.Redirect(w, r, "/accounts/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		if err := h(w, r, me); err != nil {
			s.fail(w, r, me, err, asJSON)
		}
	}
}

func (s *Server) logIn(w http.ResponseWriter, r *http.Request, u *models.User) error {
	sess := s.session(r)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Values[sessionUserID] = u.ID
	return sess.Save(r, w)
}

func (s *Server) logOut(w http.ResponseWriter, r *http.Request) error {
	sess := s.session(r)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

func (s *Server) addFlash(w http.ResponseWriter, r *http.Request, msg string) error {
	sess := s.session(r)
	sess.AddFlash(msg)
	return sess.Save(r, w)
}

// popFlashes returns pending flash messages and clears them. It must run
// before anything is written to w.
func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) []string {
	sess := s.session(r)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		logging.FromContext(r.Context(), s.log).WithError(err).Warn("Failed to clear flashes")
	}
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if m, ok := f.(string); ok {
			msgs = append(msgs, m)
		}
	}
	return msgs
}

// safeNext only allows redirects to local paths.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
