package auth

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	orgNameRe  = regexp.MustCompile(`^[a-zA-Z0-9 ]{3,50}$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	personName = regexp.MustCompile(`^[a-zA-Z ]{3,30}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRe    = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
	hasLetter  = regexp.MustCompile(`[A-Za-z]`)
	hasDigit   = regexp.MustCompile(`\d`)
)

func validateOrgName(name string) error {
	if !orgNameRe.MatchString(name) {
		return fmt.Errorf("%w: organization name must be 3-50 letters, numbers or spaces", ErrInvalidInput)
	}
	return nil
}

func validateUsername(username string) error {
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("%w: username must be 3-30 characters of letters, numbers or underscores", ErrInvalidInput)
	}
	return nil
}

func validateName(name string) error {
	if !personName.MatchString(name) {
		return fmt.Errorf("%w: name must be 3-30 letters and spaces", ErrInvalidInput)
	}
	return nil
}

func validateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	}
	return nil
}

func validatePhone(phone string) error {
	if !phoneRe.MatchString(phone) {
		return fmt.Errorf("%w: invalid phone number format", ErrInvalidInput)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 || !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return fmt.Errorf("%w: password must be at least 8 characters with a letter and a number", ErrInvalidInput)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
