package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"minitweet/internal/models"
)

// Follow records that followerID follows followingID. It reports whether a
// new edge was created; false means the edge already existed.
func (s *Store) Follow(ctx context.Context, followerID, followingID uint) (bool, error) {
	if followerID == followingID {
		return false, ErrSelfFollow
	}

	edge := models.Follow{FollowerID: followerID, FollowingID: followingID}
	res := s.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge)

	switch {
	case isUniqueViolation(res.Error):
		return false, nil
	case isForeignKeyViolation(res.Error):
		return false, ErrNotFound
	case res.Error != nil:
		return false, fmt.Errorf("create follow: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Unfollow removes the edge if present and reports whether it existed.
func (s *Store) Unfollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	if followerID == followingID {
		return false, ErrSelfFollow
	}
	res := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, fmt.Errorf("delete follow: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count follow: %w", err)
	}
	return n > 0, nil
}

// FollowCounts returns how many users userID follows and how many follow it.
func (s *Store) FollowCounts(ctx context.Context, userID uint) (following, followers int64, err error) {
	db := s.db.WithContext(ctx).Model(&models.Follow{})
	if err = db.Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, fmt.Errorf("count following: %w", err)
	}
	db = s.db.WithContext(ctx).Model(&models.Follow{})
	if err = db.Where("following_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, fmt.Errorf("count followers: %w", err)
	}
	return following, followers, nil
}

// Followers lists the edges pointing at userID with Follower loaded.
func (s *Store) Followers(ctx context.Context, userID uint) ([]models.Follow, error) {
	var edges []models.Follow
	err := s.db.WithContext(ctx).
		Preload("Follower").
		Where("following_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return edges, nil
}

// Following lists the edges leaving userID with Following loaded.
func (s *Store) Following(ctx context.Context, userID uint) ([]models.Follow, error) {
	var edges []models.Follow
	err := s.db.WithContext(ctx).
		Preload("Following").
		Where("follower_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&edges).Error
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return edges, nil
}
