package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"minitweet/internal/models"
)

// Like ensures userID likes tweetID. It reports whether a new like was
// recorded; liking twice is not an error.
func (s *Store) Like(ctx context.Context, tweetID, userID uint) (bool, error) {
	like := models.Like{TweetID: tweetID, UserID: userID}
	res := s.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like)

	switch {
	case isUniqueViolation(res.Error):
		return false, nil
	case isForeignKeyViolation(res.Error):
		return false, ErrNotFound
	case res.Error != nil:
		return false, fmt.Errorf("create like: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Unlike removes the like if present and reports whether it existed.
func (s *Store) Unlike(ctx context.Context, tweetID, userID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("tweet_id = ? AND user_id = ?", tweetID, userID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, fmt.Errorf("delete like: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) LikeCount(ctx context.Context, tweetID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Like{}).Where("tweet_id = ?", tweetID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}

func (s *Store) HasLiked(ctx context.Context, tweetID, userID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Like{}).
		Where("tweet_id = ? AND user_id = ?", tweetID, userID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count like: %w", err)
	}
	return n > 0, nil
}
