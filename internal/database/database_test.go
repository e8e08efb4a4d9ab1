package database

import (
	"context"
	"path/filepath"
	"testing"

	"minitweet/internal/models"
)

func TestOpenSQLiteEnforcesForeignKeys(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "fk.db"), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var on int
	if err := db.Raw("PRAGMA foreign_keys").Scan(&on).Error; err != nil {
		t.Fatal(err)
	}
	if on != 1 {
		t.Fatalf("foreign_keys = %d, want 1", on)
	}

	err = db.Create(&models.Tweet{UserID: 999, Content: "orphan"}).Error
	if err == nil {
		t.Fatal("expected a foreign key error for a tweet without author")
	}
}

func TestMigrateIsRepeatable(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "twice.db"), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := Migrate(db); err != nil {
			t.Fatalf("migrate #%d: %v", i+1, err)
		}
	}
	if err := Ping(context.Background(), db); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestSelfFollowRejectedBySchema(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "check.db"), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	u := models.User{Username: "solo", Email: "solo@example.com", PasswordHash: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Omit("Follower", "Following").Create(&models.Follow{FollowerID: u.ID, FollowingID: u.ID}).Error; err == nil {
		t.Fatal("expected the check constraint to reject a self follow")
	}
}
