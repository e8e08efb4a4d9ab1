package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"minitweet/internal/models"
)

// TweetView is a tweet annotated for a particular viewer.
type TweetView struct {
	models.Tweet
	LikeCount int64
	Liked     bool
}

func (s *Store) CreateTweet(ctx context.Context, t *models.Tweet) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error
	if isForeignKeyViolation(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("create tweet: %w", err)
	}
	return nil
}

// TweetByID loads a tweet and its author.
func (s *Store) TweetByID(ctx context.Context, id uint) (*models.Tweet, error) {
	var t models.Tweet
	if err := s.db.WithContext(ctx).Preload("User").First(&t, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// TweetForViewer loads one tweet annotated for viewerID.
func (s *Store) TweetForViewer(ctx context.Context, id, viewerID uint) (*TweetView, error) {
	t, err := s.TweetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.annotate(ctx, []models.Tweet{*t}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Timeline returns every tweet, newest first.
func (s *Store) Timeline(ctx context.Context, viewerID uint) ([]TweetView, error) {
	return s.listTweets(ctx, s.db.WithContext(ctx), viewerID)
}

// TweetsByUser returns the tweets written by authorID, newest first.
func (s *Store) TweetsByUser(ctx context.Context, authorID, viewerID uint) ([]TweetView, error) {
	return s.listTweets(ctx, s.db.WithContext(ctx).Where("user_id = ?", authorID), viewerID)
}

func (s *Store) listTweets(ctx context.Context, q *gorm.DB, viewerID uint) ([]TweetView, error) {
	var tweets []models.Tweet
	err := q.Preload("User").Order("created_at DESC, id DESC").Find(&tweets).Error
	if err != nil {
		return nil, fmt.Errorf("list tweets: %w", err)
	}
	return s.annotate(ctx, tweets, viewerID)
}

func (s *Store) annotate(ctx context.Context, tweets []models.Tweet, viewerID uint) ([]TweetView, error) {
	views := make([]TweetView, len(tweets))
	if len(tweets) == 0 {
		return views, nil
	}

	ids := make([]uint, len(tweets))
	for i, t := range tweets {
		ids[i] = t.ID
	}

	var counts []struct {
		TweetID uint
		N       int64
	}
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Select("tweet_id, COUNT(*) AS n").
		Where("tweet_id IN ?", ids).
		Group("tweet_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	byTweet := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byTweet[c.TweetID] = c.N
	}

	var likedIDs []uint
	err = s.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND tweet_id IN ?", viewerID, ids).
		Pluck("tweet_id", &likedIDs).Error
	if err != nil {
		return nil, fmt.Errorf("load liked tweets: %w", err)
	}
	liked := make(map[uint]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}

	for i, t := range tweets {
		views[i] = TweetView{Tweet: t, LikeCount: byTweet[t.ID], Liked: liked[t.ID]}
	}
	return views, nil
}

// DeleteTweet removes a tweet and its likes in one transaction.
func (s *Store) DeleteTweet(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tweet_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}
		res := tx.Delete(&models.Tweet{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete tweet: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
