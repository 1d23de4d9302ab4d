package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MinPasswordLen counts characters.
	MinPasswordLen   = 6
	// MaxPasswordBytes is the longest password bcrypt accepts, in bytes of UTF-8.
	MaxPasswordBytes = 72
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailFormat      = errors.New("invalid email address")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordShort    = fmt.Errorf("password too short; min %d characters", MinPasswordLen)
	ErrPasswordLong     = fmt.Errorf("password too long; max %d bytes", MaxPasswordBytes)
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LoginForm checks the credentials entered on the login form, reporting the first problem found.
func LoginForm(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	if strings.TrimSpace(password) == "" {
		return ErrPasswordRequired
	}
	return Email(email)
}

// SignUpForm applies the login checks plus the password length policy.
func SignUpForm(email, password string) error {
	if err := LoginForm(email, password); err != nil {
		return err
	}
	return Password(password)
}

func Password(password string) error {
	switch {
	case strings.TrimSpace(password) == "":
		return ErrPasswordRequired
	case utf8.RuneCountInString(password) < MinPasswordLen:
		return ErrPasswordShort
	case len(password) > MaxPasswordBytes:
		return ErrPasswordLong
	}
	return nil
}

func Email(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return ErrEmailFormat
	}
	return nil
}
