package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"minitweet/internal/models"
)

func TestMessageRecording(t *testing.T) {
	app := newTestApp(t)
	c := app.signedUp("foo")

	app.addMessage(c, "test message 1")
	app.addMessage(c, "<test message 2>")

	resp := app.get(c, "/")
	body := readBody(t, resp)
	if !strings.Contains(body, "test message 1") {
		t.Error("Expected 'test message 1' in timeline")
	}
	if !strings.Contains(body, "&lt;test message 2&gt;") {
		t.Error("Expected escaped '<test message 2>' in timeline")
	}
	if !strings.Contains(body, "You have posted 2 tweets.") {
		t.Error("Expected own tweet count in timeline")
	}
}

func TestTimelineNewestFirst(t *testing.T) {
	app := newTestApp(t)
	foo := app.signedUp("foo")
	bar := app.signedUp("bar")

	app.addMessage(foo, "first from foo")
	app.addMessage(bar, "second from bar")
	app.addMessage(foo, "third from foo")

	// Everyone sees every tweet, not just followed users.
	body := readBody(t, app.get(bar, "/"))
	first := strings.Index(body, "first from foo")
	second := strings.Index(body, "second from bar")
	third := strings.Index(body, "third from foo")
	if first < 0 || second < 0 || third < 0 {
		t.Fatalf("missing tweets in timeline: %q", body)
	}
	if !(third < second && second < first) {
		t.Errorf("timeline not newest first: positions %d %d %d", third, second, first)
	}
	if !strings.Contains(body, "You have posted 1 tweets.") {
		t.Error("Expected bar's own tweet count")
	}
}

func TestCreateTweetValidation(t *testing.T) {
	app := newTestApp(t)
	c := noRedirect(app.signedUp("foo"))

	tests := []struct {
		name    string
		content string
		status  int
		want    string
	}{
		{"empty", "", http.StatusOK, "This field is required."},
		{"blank", "   ", http.StatusOK, "This field is required."},
		{"too long", strings.Repeat("a", models.TweetMaxLength+1), http.StatusOK, "150 characters maximum, 151 given."},
		{"at limit", strings.Repeat("b", models.TweetMaxLength), http.StatusFound, ""},
		{"multibyte at limit", strings.Repeat("é", models.TweetMaxLength), http.StatusFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.addMessage(c, tt.content)
			assertStatus(t, resp, tt.status)
			if tt.want != "" {
				assertContains(t, resp, tt.want)
			}
		})
	}

	n, err := app.store.TweetsByUser(context.Background(), app.user("foo").ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(n) != 2 {
		t.Errorf("stored %d tweets, want 2", len(n))
	}
}

func TestCreateTweetForm(t *testing.T) {
	app := newTestApp(t)
	resp := app.get(app.signedUp("foo"), "/tweets/create")
	assertStatus(t, resp, http.StatusOK)
	assertContains(t, resp, `name="content"`)
}

func TestTweetDetail(t *testing.T) {
	app := newTestApp(t)
	c := app.signedUp("foo")
	app.addMessage(c, "hello detail")
	tw := app.latestTweet()

	resp := app.get(c, fmt.Sprintf("/tweets/%d/", tw.ID))
	assertStatus(t, resp, http.StatusOK)
	assertContains(t, resp, "hello detail")

	resp = app.get(c, "/tweets/999/")
	assertStatus(t, resp, http.StatusNotFound)

	resp = app.get(c, "/tweets/99999999999999999999999/")
	assertStatus(t, resp, http.StatusNotFound)
}

func TestDeleteTweet(t *testing.T) {
	app := newTestApp(t)
	foo := noRedirect(app.signedUp("foo"))
	bar := noRedirect(app.signedUp("bar"))

	app.addMessage(foo, "delete me")
	tw := app.latestTweet()
	path := fmt.Sprintf("/tweets/%d/delete", tw.ID)
	app.postForm(bar, fmt.Sprintf("/tweets/%d/like", tw.ID), nil)

	resp := app.get(bar, path)
	assertStatus(t, resp, http.StatusForbidden)
	resp = app.postForm(bar, path, nil)
	assertStatus(t, resp, http.StatusForbidden)
	if _, err := app.store.TweetByID(context.Background(), tw.ID); err != nil {
		t.Fatalf("tweet gone after forbidden delete: %v", err)
	}

	resp = app.get(foo, path)
	assertStatus(t, resp, http.StatusOK)
	assertContains(t, resp, "delete me")

	resp = app.postForm(foo, path, nil)
	assertStatus(t, resp, http.StatusFound)
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}

	resp = app.get(foo, fmt.Sprintf("/tweets/%d/", tw.ID))
	assertStatus(t, resp, http.StatusNotFound)
	count, err := app.store.LikeCount(context.Background(), tw.ID)
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("likes survived delete: %d", count)
	}

	resp = app.postForm(foo, path, nil)
	assertStatus(t, resp, http.StatusNotFound)
}
