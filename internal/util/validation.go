package util

import (
	"regexp"
)

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func IsValidUUID(s string) bool {
	if s == "" {
		return false
	}
	return uuidRegex.MatchString(s)
}

// phoneRegex accepts E.164-style numbers: optional +, 8 to 15 digits,
// no leading zero after the +.
var phoneRegex = regexp.MustCompile(`^\+?[1-9][0-9]{7,14}$`)

func IsValidPhone(s string) bool {
	return phoneRegex.MatchString(s)
}
