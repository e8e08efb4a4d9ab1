package web

import (
	"errors"
	"net/http"

	"minitweet/internal/logging"
	"minitweet/internal/models"
	"minitweet/internal/store"
)

// HTTPError is returned by handlers to end a request with a specific status.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func badRequest(msg string) *HTTPError {
	return &HTTPError{Status: http.StatusBadRequest, Message: msg}
}

func forbidden(msg string) *HTTPError {
	return &HTTPError{Status: http.StatusForbidden, Message: msg}
}

func notFound(msg string) *HTTPError {
	return &HTTPError{Status: http.StatusNotFound, Message: msg}
}

// fail turns a handler error into a response. Anything that is not an
// HTTPError or a missing record is logged and reported as a 500 without
// details.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, me *models.User, err error, asJSON bool) {
	var herr *HTTPError
	switch {
	case errors.As(err, &herr):
	case errors.Is(err, store.ErrNotFound):
		herr = notFound("Not found")
	default:
		logging.FromContext(r.Context(), s.log).WithError(err).Error("Request failed")
		herr = &HTTPError{Status: http.StatusInternalServerError, Message: "Internal server error"}
	}

	if asJSON {
		s.writeJSON(w, r, herr.Status, map[string]any{
			"status":    herr.Status,
			"error_msg": herr.Message,
		})
		return
	}
	data := map[string]any{"Status": herr.Status, "Message": herr.Message}
	if rerr := s.render(w, r, me, herr.Status, "error.html", data); rerr != nil {
		http.Error(w, herr.Message, herr.Status)
	}
}
