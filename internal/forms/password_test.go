package forms

import (
	"math"
	"reflect"
	"testing"
)

func TestQuickRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"testtesta", "testtest", 16.0 / 17.0},
		{"testpassword", "testuser", 0.6},
		{"abc", "xyz", 0},
		{"", "", 1},
	}
	for _, tt := range tests {
		if got := quickRatio(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("quickRatio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	const (
		similarUser  = "The password is too similar to the username."
		similarEmail = "The password is too similar to the email address."
		short        = "This password is too short. It must contain at least 8 characters."
		common       = "This password is too common."
		numeric      = "This password is entirely numeric."
	)

	tests := []struct {
		password, username, email string
		want                      []string
	}{
		{"correct-horse-battery", "alice", "alice@example.com", nil},
		{"Password", "alice", "", []string{common}},
		{"98237465019", "alice", "", []string{numeric}},
		{"john.smith99", "john.smith", "", []string{similarUser}},
		{"bobbybrown1", "zed", "bobbybrown@example.com", []string{similarEmail}},
		{"alice-smith-9", "alicesmith", "alicesmith@example.com", []string{similarUser}},
		{"12345678", "alice", "", []string{common, numeric}},
		{"123456", "alice", "", []string{short, common, numeric}},
		{"aaaaaaaa", "zed", "", []string{common}},
		{"sunshine1", "zed", "", []string{common}},
		{"iloveyou1", "zed", "", []string{common}},
		{"qwerty12", "zed", "", []string{common}},
		{"football1", "zed", "", []string{common}},
		{"abcdefgh", "zed", "", []string{common}},
	}
	for _, tt := range tests {
		got := ValidatePassword(tt.password, tt.username, tt.email)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ValidatePassword(%q, %q, %q) = %q, want %q", tt.password, tt.username, tt.email, got, tt.want)
		}
	}
}

func TestCommonPasswordListLoaded(t *testing.T) {
	if len(commonPasswords) < 300 {
		t.Errorf("common password list has %d entries", len(commonPasswords))
	}
	if _, ok := commonPasswords["testpassword"]; ok {
		t.Error("testpassword should not be on the list")
	}
}
