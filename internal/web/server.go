// Package web serves the minitweet site.
package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"minitweet/internal/database"
	"minitweet/internal/logging"
	"minitweet/internal/metrics"
	"minitweet/internal/store"
)

type Options struct {
	Store    *store.Store
	Sessions sessions.Store
	Logger   *logrus.Logger
	Registry *prometheus.Registry

	BcryptCost           int
	SlowRequestThreshold time.Duration
}

type Server struct {
	store    *store.Store
	sessions sessions.Store
	log      *logrus.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	pages    map[string]*template.Template

	bcryptCost int
	slow       time.Duration

	// compared against when the username is unknown so failed logins take
	// the same time either way
	dummyHash []byte
}

func New(opts Options) (*Server, error) {
	if opts.Store == nil || opts.Sessions == nil || opts.Logger == nil {
		return nil, errors.New("web: store, sessions and logger are required")
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.SlowRequestThreshold == 0 {
		opts.SlowRequestThreshold = 2 * time.Second
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("not a real password"), opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	return &Server{
		store:      opts.Store,
		sessions:   opts.Sessions,
		log:        opts.Logger,
		metrics:    metrics.New(opts.Registry),
		gatherer:   opts.Registry,
		pages:      pages,
		bcryptCost: opts.BcryptCost,
		slow:       opts.SlowRequestThreshold,
		dummyHash:  dummy,
	}, nil
}

// NewCookieStore returns the session store used in production.
func NewCookieStore(key []byte, maxAge time.Duration, secure bool) *sessions.CookieStore {
	cs := sessions.NewCookieStore(key)
	cs.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
	cs.MaxAge(int(maxAge.Seconds()))
	return cs
}

// Routes builds the router. Every request is logged, including ones that
// match no route.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.metrics.Middleware)

	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)

	r.HandleFunc("/accounts/signup", s.public(s.signup)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/accounts/login", s.public(s.login)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/accounts/logout", s.authed(s.logout)).Methods(http.MethodPost)
	r.HandleFunc("/accounts/{username}/", s.authed(s.profile)).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{username}/follow", s.authed(s.follow)).Methods(http.MethodPost)
	r.HandleFunc("/accounts/{username}/unfollow", s.authed(s.unfollow)).Methods(http.MethodPost)
	r.HandleFunc("/accounts/{username}/followers", s.authed(s.followers)).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{username}/following", s.authed(s.following)).Methods(http.MethodGet)

	r.HandleFunc("/", s.authed(s.home)).Methods(http.MethodGet)
	r.HandleFunc("/tweets/create", s.authed(s.createTweet)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/tweets/{id:[0-9]+}/", s.authed(s.tweetDetail)).Methods(http.MethodGet)
	r.HandleFunc("/tweets/{id:[0-9]+}/delete", s.authed(s.deleteTweet)).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/tweets/{id:[0-9]+}/like", s.authedJSON(s.like)).Methods(http.MethodPost)
	r.HandleFunc("/tweets/{id:[0-9]+}/unlike", s.authedJSON(s.unlike)).Methods(http.MethodPost)

	return logging.Middleware(s.log, s.slow)(r)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := database.Ping(ctx, s.store.DB()); err != nil {
		logging.FromContext(r.Context(), s.log).WithError(err).Error("Database ping failed")
		s.writeJSON(w, r, http.StatusServiceUnavailable, map[string]any{
			"status":    http.StatusServiceUnavailable,
			"error_msg": "database unavailable",
		})
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]any{"status": "ok"})
}
