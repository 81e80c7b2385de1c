package service

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"flipyard/internal/apperr"
	"flipyard/internal/security"
)

const MinPasswordLen = 8

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return apperr.Validation("password must be at least 8 characters")
	}
	if len(password) > security.MaxPasswordBytes {
		return apperr.Validation("password must be at most 72 bytes")
	}
	return nil
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
