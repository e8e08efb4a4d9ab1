package forms

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8

	// similarity ratio at or above which a password is rejected
	maxSimilarity = 0.7
)

//go:embed common_passwords.txt
var commonPasswordList string

var (
	commonPasswords = parseCommonPasswords(commonPasswordList)
	nonWord         = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
)

func parseCommonPasswords(list string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(list, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			set[strings.ToLower(line)] = struct{}{}
		}
	}
	return set
}

// ValidatePassword checks password against the password policy and returns
// every violation, in display order. A nil result means the password is
// acceptable. Only the first similar account attribute is reported.
func ValidatePassword(password, username, email string) []string {
	var problems []string
	for _, attr := range []struct{ name, value string }{
		{"username", username},
		{"email address", email},
	} {
		if tooSimilar(password, attr.value) {
			problems = append(problems, fmt.Sprintf("The password is too similar to the %s.", attr.name))
			break
		}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		problems = append(problems, fmt.Sprintf(
			"This password is too short. It must contain at least %d characters.", MinPasswordLength))
	}
	if _, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
		problems = append(problems, "This password is too common.")
	}
	if isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}
	return problems
}

// tooSimilar compares the password with the whole attribute and with each
// word of it.
func tooSimilar(password, attr string) bool {
	if attr == "" {
		return false
	}
	pw := strings.ToLower(password)
	attr = strings.ToLower(attr)
	parts := append(nonWord.Split(attr, -1), attr)
	for _, part := range parts {
		if part == "" || exceedsLengthRatio(pw, part) {
			continue
		}
		if quickRatio(pw, part) >= maxSimilarity {
			return true
		}
	}
	return false
}

// exceedsLengthRatio skips attribute parts so short relative to the
// password that they cannot reach the similarity bound.
func exceedsLengthRatio(password, part string) bool {
	pwLen := utf8.RuneCountInString(password)
	partLen := utf8.RuneCountInString(part)
	bound := maxSimilarity / 2 * float64(pwLen)
	return pwLen >= 10*partLen && float64(partLen) < bound
}

// quickRatio is an upper bound on the similarity of a and b: twice the
// size of their character multiset intersection over their total length.
func quickRatio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1
	}
	avail := make(map[rune]int)
	for _, r := range b {
		avail[r]++
	}
	matches := 0
	for _, r := range a {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	return 2 * float64(matches) / float64(total)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
