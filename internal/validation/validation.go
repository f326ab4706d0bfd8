package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// UsernamePattern defines the valid username format: letters, digits, dots, hyphens, underscores.
var UsernamePattern = regexp.MustCompile(`^[\p{L}0-9._-]+$`)

// MaxMessageLength bounds a chat message in characters.
const MaxMessageLength = 1000

// ValidateUsername checks if a username matches the allowed pattern.
func ValidateUsername(username string) bool {
	if username == "" || utf8.RuneCountInString(username) > 64 {
		return false
	}
	return UsernamePattern.MatchString(username)
}

// ValidateMessage trims a chat message and checks it is usable.
// Returns the trimmed message, whether it is valid and, if not, why.
// An empty message is valid: the assistant answers it with its help text.
func ValidateMessage(message string) (string, bool, string) {
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return "", false, "Message is too long"
	}
	if !utf8.ValidString(message) {
		return "", false, "Message must be valid UTF-8"
	}
	return message, true, ""
}

// SplitCredentials splits a "username password" login message. Anything
// other than exactly two whitespace separated tokens is not a login.
func SplitCredentials(message string) (username, password string, ok bool) {
	fields := strings.Fields(message)
	if len(fields) != 2 || !ValidateUsername(fields[0]) {
		return "", "", false
	}
	return fields[0], fields[1], true
}
