package logging

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	logrustash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// New builds the application logger. When logstashAddr is non-empty entries
// are also shipped to logstash over TCP; the returned closer releases that
// connection.
func New(level, logstashAddr string) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if logstashAddr == "" {
		return logger, nopCloser{}, nil
	}

	conn, err := net.DialTimeout("tcp", logstashAddr, 5*time.Second)
	if err != nil {
		return logger, nopCloser{}, err
	}
	logger.AddHook(logrustash.New(conn, logrustash.DefaultFormatter(logrus.Fields{"type": "minitweet"})))
	return logger, conn, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// FromContext returns the request scoped entry stored by Middleware, or a
// bare entry on base.
func FromContext(ctx context.Context, base *logrus.Logger) *logrus.Entry {
	if e, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok {
		return e
	}
	return logrus.NewEntry(base)
}

// Middleware tags each request with an id and logs it once it completes.
// Requests slower than slow are logged at warn level.
func Middleware(logger *logrus.Logger, slow time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := requestIDFrom(r)
			w.Header().Set("X-Request-ID", requestID)

			entry := logger.WithField("request_id", requestID)
			r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, entry))

			m := httpsnoop.CaptureMetrics(next, w, r)

			fields := logrus.Fields{
				"method":    r.Method,
				"path":      r.URL.Path,
				"status":    m.Code,
				"duration":  m.Duration,
				"remote_ip": r.RemoteAddr,
			}
			if m.Duration > slow {
				entry.WithFields(fields).Warn("Slow request detected")
			} else {
				entry.WithFields(fields).Info("Request completed")
			}
		})
	}
}

// requestIDFrom reuses a client supplied X-Request-ID only when it is a
// well formed uuid; anything else gets a fresh one.
func requestIDFrom(r *http.Request) string {
	if id, err := uuid.Parse(r.Header.Get("X-Request-ID")); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
