package models

import "time"

// TweetMaxLength is the maximum number of characters in a tweet.
const TweetMaxLength = 150

type User struct {
	ID           uint      `gorm:"primaryKey"`
	Username     string    `gorm:"size:150;uniqueIndex;not null"`
	Email        string    `gorm:"size:254;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// Follow is a directed edge: Follower follows Following.
type Follow struct {
	ID          uint      `gorm:"primaryKey"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follows_pair;check:chk_follows_not_self,follower_id <> following_id"`
	Follower    User      `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index"`
	Following   User      `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `gorm:"not null"`
}

type Tweet struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Content   string    `gorm:"size:150;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// Like is binary per (tweet, user).
type Like struct {
	ID        uint      `gorm:"primaryKey"`
	TweetID   uint      `gorm:"not null;uniqueIndex:idx_likes_tweet_user"`
	Tweet     Tweet     `gorm:"foreignKey:TweetID;constraint:OnDelete:CASCADE"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_tweet_user;index"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `gorm:"not null"`
}

// All lists the models in migration order.
func All() []any {
	return []any{&User{}, &Tweet{}, &Follow{}, &Like{}}
}
