package web

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"minitweet/internal/forms"
	"minitweet/internal/logging"
	"minitweet/internal/metrics"
	"minitweet/internal/models"
	"minitweet/internal/store"
)

// tweetID parses the {id} path variable. Values that overflow are treated
// as missing tweets.
func tweetID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, strconv.IntSize)
	if err != nil {
		return 0, notFound("No tweet found matching the query")
	}
	return uint(id), nil
}

func (s *Server) home(w http.ResponseWriter, r *http.Request, me *models.User) error {
	tweets, err := s.store.Timeline(r.Context(), me.ID)
	if err != nil {
		return err
	}
	var mine []store.TweetView
	for _, t := range tweets {
		if t.UserID == me.ID {
			mine = append(mine, t)
		}
	}
	return s.render(w, r, me, http.StatusOK, "home.html", map[string]any{
		"Tweets":   tweets,
		"MyTweets": mine,
	})
}

func (s *Server) createTweet(w http.ResponseWriter, r *http.Request, me *models.User) error {
	if r.Method == http.MethodGet {
		return s.render(w, r, me, http.StatusOK, "create.html", nil)
	}
	if err := r.ParseForm(); err != nil {
		return badRequest("Malformed form body")
	}

	form := forms.NewTweetForm(r)
	if errs := form.Validate(); errs.Any() {
		return s.render(w, r, me, http.StatusOK, "create.html", map[string]any{
			"Form":   form,
			"Errors": errs,
		})
	}

	tweet := &models.Tweet{UserID: me.ID, Content: form.Content}
	if err := s.store.CreateTweet(r.Context(), tweet); err != nil {
		return err
	}
	logging.FromContext(r.Context(), s.log).WithField("username", me.Username).Info("Tweet posted successfully")
	s.metrics.TweetsPosted.WithLabelValues(metrics.RouteLabel(r)).Inc()
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

func (s *Server) tweetDetail(w http.ResponseWriter, r *http.Request, me *models.User) error {
	id, err := tweetID(r)
	if err != nil {
		return err
	}
	tweet, err := s.store.TweetForViewer(r.Context(), id, me.ID)
	if err != nil {
		return err
	}
	return s.render(w, r, me, http.StatusOK, "detail.html", map[string]any{"Tweet": tweet})
}

// deleteTweet shows a confirmation page on GET and deletes on POST. Only the
// author may do either.
func (s *Server) deleteTweet(w http.ResponseWriter, r *http.Request, me *models.User) error {
	id, err := tweetID(r)
	if err != nil {
		return err
	}
	tweet, err := s.store.TweetByID(r.Context(), id)
	if err != nil {
		return err
	}
	if tweet.UserID != me.ID {
		logging.FromContext(r.Context(), s.log).WithField("tweet_id", id).Warn("Delete attempted by non-owner")
		return forbidden("You can only delete your own tweets")
	}

	if r.Method == http.MethodGet {
		return s.render(w, r, me, http.StatusOK, "delete.html", map[string]any{"Tweet": tweet})
	}

	if err := s.store.DeleteTweet(r.Context(), id); err != nil {
		return err
	}
	logging.FromContext(r.Context(), s.log).WithField("tweet_id", id).Info("Tweet deleted")
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}
