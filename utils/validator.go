// utils/validator.go - Input validation
package utils

import (
	"regexp"
	"strings"
	"time"
)

// DateTimeLayout is the only accepted datetime format for request fields.
const DateTimeLayout = "2006-01-02 15:04:05"

var dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`)

// ValidatePassword checks password strength
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}

	return true, ""
}

// ParseDateTime parses a "YYYY-MM-DD HH:MM:SS" string. The shape must
// match exactly and the value must be a real calendar instant.
func ParseDateTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if !dateTimePattern.MatchString(value) {
		return time.Time{}, false
	}

	t, err := time.ParseInLocation(DateTimeLayout, value, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}
