package web

import (
	"fmt"
	"net/http"

	"minitweet/internal/metrics"
	"minitweet/internal/models"
)

type likeResponse struct {
	LikeCount int64  `json:"like_count"`
	TweetID   uint   `json:"tweet_id"`
	IsLiked   bool   `json:"is_liked"`
	ToggleURL string `json:"toggle_url"`
}

func (s *Server) like(w http.ResponseWriter, r *http.Request, me *models.User) error {
	id, err := tweetID(r)
	if err != nil {
		return err
	}
	if _, err := s.store.TweetByID(r.Context(), id); err != nil {
		return err
	}

	created, err := s.store.Like(r.Context(), id, me.ID)
	if err != nil {
		return err
	}
	if created {
		s.metrics.Likes.WithLabelValues(metrics.RouteLabel(r)).Inc()
	}
	return s.writeLikeState(w, r, id, true)
}

func (s *Server) unlike(w http.ResponseWriter, r *http.Request, me *models.User) error {
	id, err := tweetID(r)
	if err != nil {
		return err
	}
	if _, err := s.store.TweetByID(r.Context(), id); err != nil {
		return err
	}

	removed, err := s.store.Unlike(r.Context(), id, me.ID)
	if err != nil {
		return err
	}
	if removed {
		s.metrics.Unlikes.WithLabelValues(metrics.RouteLabel(r)).Inc()
	}
	return s.writeLikeState(w, r, id, false)
}

func (s *Server) writeLikeState(w http.ResponseWriter, r *http.Request, tweetID uint, liked bool) error {
	count, err := s.store.LikeCount(r.Context(), tweetID)
	if err != nil {
		return err
	}
	toggle := fmt.Sprintf("/tweets/%d/like", tweetID)
	if liked {
		toggle = fmt.Sprintf("/tweets/%d/unlike", tweetID)
	}
	s.writeJSON(w, r, http.StatusOK, likeResponse{
		LikeCount: count,
		TweetID:   tweetID,
		IsLiked:   liked,
		ToggleURL: toggle,
	})
	return nil
}
