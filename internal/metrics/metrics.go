package metrics

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	SuccessfulRequests *prometheus.CounterVec
	BadRequests        *prometheus.CounterVec
	FollowRequests     *prometheus.CounterVec
	UnfollowRequests   *prometheus.CounterVec
	TweetsPosted       *prometheus.CounterVec
	Likes              *prometheus.CounterVec
	Unlikes            *prometheus.CounterVec
	Signups            *prometheus.CounterVec
	FailedLogins       *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

func counter(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, []string{"path"})
}

// New creates the application metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SuccessfulRequests: counter("successful_request", "Total number of successful (2xx/3xx) HTTP requests"),
		BadRequests:        counter("unsuccessful_request", "Total number of unsuccessful (4xx/5xx) HTTP requests"),
		FollowRequests:     counter("successful_follows", "Total number of follow edges created"),
		UnfollowRequests:   counter("successful_unfollows", "Total number of follow edges removed"),
		TweetsPosted:       counter("successful_tweet", "Total number of tweets posted"),
		Likes:              counter("successful_likes", "Total number of likes created"),
		Unlikes:            counter("successful_unlikes", "Total number of likes removed"),
		Signups:            counter("successful_signups", "Total number of accounts created"),
		FailedLogins:       counter("failed_logins", "Total number of rejected login attempts"),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
	}

	reg.MustRegister(
		m.SuccessfulRequests,
		m.BadRequests,
		m.FollowRequests,
		m.UnfollowRequests,
		m.TweetsPosted,
		m.Likes,
		m.Unlikes,
		m.Signups,
		m.FailedLogins,
		m.RequestDuration,
	)
	return m
}

// RouteLabel is the path label for r: the matched mux route template, so
// path parameters do not explode label cardinality.
func RouteLabel(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// Middleware counts requests by outcome under RouteLabel.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := RouteLabel(r)
		snoop := httpsnoop.CaptureMetrics(next, w, r)

		m.RequestDuration.WithLabelValues(path, r.Method).Observe(snoop.Duration.Seconds())
		if snoop.Code < http.StatusBadRequest {
			m.SuccessfulRequests.WithLabelValues(path).Inc()
		} else {
			m.BadRequests.WithLabelValues(path).Inc()
		}
	})
}
