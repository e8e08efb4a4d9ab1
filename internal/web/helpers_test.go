package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"minitweet/internal/database"
	"minitweet/internal/models"
	"minitweet/internal/store"
)

const defaultPassword = "correct-horse-battery"

type testApp struct {
	t     *testing.T
	url   string
	store *store.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "web.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st := store.New(db)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv, err := New(Options{
		Store:      st,
		Sessions:   NewCookieStore([]byte("test-session-key-0123456789abcdef"), time.Hour, false),
		Logger:     logger,
		BcryptCost: bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		ts.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return &testApp{t: t, url: ts.URL, store: st}
}

// createSession returns a client with its own cookie jar, i.e. one browser.
func (a *testApp) createSession() *http.Client {
	a.t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		a.t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

// noRedirect shares c's cookies but stops at the first response.
func noRedirect(c *http.Client) *http.Client {
	return &http.Client{
		Jar: c.Jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *testApp) postForm(c *http.Client, path string, data url.Values) *http.Response {
	a.t.Helper()
	resp, err := c.PostForm(a.url+path, data)
	if err != nil {
		a.t.Fatalf("POST %s: %v", path, err)
	}
	a.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testApp) get(c *http.Client, path string) *http.Response {
	a.t.Helper()
	resp, err := c.Get(a.url + path)
	if err != nil {
		a.t.Fatalf("GET %s: %v", path, err)
	}
	a.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testApp) register(c *http.Client, username, password, password2, email string) *http.Response {
	a.t.Helper()
	if password2 == "" {
		password2 = password
	}
	if email == "" {
		email = username + "@example.com"
	}
	return a.postForm(c, "/accounts/signup", url.Values{
		"username":  {username},
		"email":     {email},
		"password1": {password},
		"password2": {password2},
	})
}

func (a *testApp) login(c *http.Client, username, password string) *http.Response {
	a.t.Helper()
	return a.postForm(c, "/accounts/login", url.Values{
		"username": {username},
		"password": {password},
	})
}

func (a *testApp) logout(c *http.Client) *http.Response {
	a.t.Helper()
	return a.postForm(c, "/accounts/logout", nil)
}

func (a *testApp) addMessage(c *http.Client, text string) *http.Response {
	a.t.Helper()
	return a.postForm(c, "/tweets/create", url.Values{"content": {text}})
}

// signedUp registers username in a fresh session, leaving it logged in.
func (a *testApp) signedUp(username string) *http.Client {
	a.t.Helper()
	c := a.createSession()
	resp := a.register(c, username, defaultPassword, "", "")
	if resp.StatusCode != http.StatusOK || resp.Request.URL.Path != "/" {
		a.t.Fatalf("register %s: status %d at %s", username, resp.StatusCode, resp.Request.URL.Path)
	}
	return c
}

func (a *testApp) user(username string) *models.User {
	a.t.Helper()
	u, err := a.store.UserByUsername(context.Background(), username)
	if err != nil {
		a.t.Fatalf("lookup %s: %v", username, err)
	}
	return u
}

func (a *testApp) latestTweet() store.TweetView {
	a.t.Helper()
	views, err := a.store.Timeline(context.Background(), 0)
	if err != nil || len(views) == 0 {
		a.t.Fatalf("timeline: %v (%d tweets)", err, len(views))
	}
	return views[0]
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return string(b)
}

func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want)
	}
}

func assertContains(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	body := readBody(t, resp)
	if !strings.Contains(body, expected) {
		t.Errorf("Expected response to contain %q but got %q", expected, body)
	}
}

func assertNotContains(t *testing.T, resp *http.Response, unexpected string) {
	t.Helper()
	body := readBody(t, resp)
	if strings.Contains(body, unexpected) {
		t.Errorf("Expected response not to contain %q but got %q", unexpected, body)
	}
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("Content-Type = %q, want JSON", ct)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
}
