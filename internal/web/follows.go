package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"minitweet/internal/logging"
	"minitweet/internal/metrics"
	"minitweet/internal/models"
	"minitweet/internal/store"
)

const userNotFound = "User not found"

func (s *Server) pathUser(r *http.Request) (*models.User, error) {
	u, err := s.store.UserByUsername(r.Context(), mux.Vars(r)["username"])
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound(userNotFound)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// followTarget resolves the {username} being followed or unfollowed.
func (s *Server) followTarget(r *http.Request, me *models.User) (*models.User, error) {
	target, err := s.pathUser(r)
	if err != nil {
		return nil, err
	}
	if target.ID == me.ID {
		return nil, badRequest("You cannot follow yourself")
	}
	return target, nil
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request, me *models.User) error {
	user, err := s.pathUser(r)
	if err != nil {
		return err
	}
	tweets, err := s.store.TweetsByUser(r.Context(), user.ID, me.ID)
	if err != nil {
		return err
	}
	following, followers, err := s.store.FollowCounts(r.Context(), user.ID)
	if err != nil {
		return err
	}
	isFollowing := false
	if user.ID != me.ID {
		if isFollowing, err = s.store.IsFollowing(r.Context(), me.ID, user.ID); err != nil {
			return err
		}
	}
	return s.render(w, r, me, http.StatusOK, "profile.html", map[string]any{
		"User":           user,
		"Tweets":         tweets,
		"FollowingCount": following,
		"FollowerCount":  followers,
		"IsFollowing":    isFollowing,
		"IsSelf":         user.ID == me.ID,
	})
}

func (s *Server) follow(w http.ResponseWriter, r *http.Request, me *models.User) error {
	target, err := s.followTarget(r, me)
	if err != nil {
		return err
	}

	created, err := s.store.Follow(r.Context(), me.ID, target.ID)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("You are already following %s", target.Username)
	if created {
		msg = fmt.Sprintf("You are now following %s", target.Username)
		s.metrics.FollowRequests.WithLabelValues(metrics.RouteLabel(r)).Inc()
		logging.FromContext(r.Context(), s.log).WithField("target", target.Username).Info("User followed successfully")
	}
	if err := s.addFlash(w, r, msg); err != nil {
		return err
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

func (s *Server) unfollow(w http.ResponseWriter, r *http.Request, me *models.User) error {
	target, err := s.followTarget(r, me)
	if err != nil {
		return err
	}

	removed, err := s.store.Unfollow(r.Context(), me.ID, target.ID)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("You were not following %s", target.Username)
	if removed {
		msg = fmt.Sprintf("You are no longer following %s", target.Username)
		s.metrics.UnfollowRequests.WithLabelValues(metrics.RouteLabel(r)).Inc()
		logging.FromContext(r.Context(), s.log).WithField("target", target.Username).Info("User unfollowed successfully")
	}
	if err := s.addFlash(w, r, msg); err != nil {
		return err
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

type followEntry struct {
	User  models.User
	Since time.Time
}

func (s *Server) followers(w http.ResponseWriter, r *http.Request, me *models.User) error {
	user, err := s.pathUser(r)
	if err != nil {
		return err
	}
	edges, err := s.store.Followers(r.Context(), user.ID)
	if err != nil {
		return err
	}
	entries := make([]followEntry, len(edges))
	for i, e := range edges {
		entries[i] = followEntry{User: e.Follower, Since: e.CreatedAt}
	}
	return s.render(w, r, me, http.StatusOK, "follow_list.html", map[string]any{
		"User":    user,
		"Title":   "Followers",
		"Entries": entries,
	})
}

func (s *Server) following(w http.ResponseWriter, r *http.Request, me *models.User) error {
	user, err := s.pathUser(r)
	if err != nil {
		return err
	}
	edges, err := s.store.Following(r.Context(), user.ID)
	if err != nil {
		return err
	}
	entries := make([]followEntry, len(edges))
	for i, e := range edges {
		entries[i] = followEntry{User: e.Following, Since: e.CreatedAt}
	}
	return s.render(w, r, me, http.StatusOK, "follow_list.html", map[string]any{
		"User":    user,
		"Title":   "Following",
		"Entries": entries,
	})
}
