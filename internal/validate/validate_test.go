package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestSignUpForm(t *testing.T) {
	cases := []struct {
		Casename string
		Email    string
		Password string
		Err      error
	}{
		{"valid", "ada@example.com", "secret1", nil},
		{"empty email", "  ", "secret1", ErrEmailRequired},
		{"empty password", "ada@example.com", "   ", ErrPasswordRequired},
		{"password checked before format", "not-an-email", "", ErrPasswordRequired},
		{"no tld", "ada@example", "secret1", ErrEmailFormat},
		{"space in email", "ada lovelace@example.com", "secret1", ErrEmailFormat},
		{"short password", "ada@example.com", "12345", ErrPasswordShort},
		{"long password", "ada@example.com", string(make([]byte, 73)), ErrPasswordLong},
		{"short multi-byte password", "ada@example.com", "ééé", ErrPasswordShort},
		{"six multi-byte characters", "ada@example.com", "éééééé", nil},
		{"multi-byte password within byte cap", "ada@example.com", strings.Repeat("ж", 36), nil},
		{"multi-byte password over byte cap", "ada@example.com", strings.Repeat("ж", 40), ErrPasswordLong},
	}

	for _, c := range cases {
		t.Run(c.Casename, func(t *testing.T) {
			err := SignUpForm(c.Email, c.Password)
			if c.Err == nil {
				if err != nil {
					t.Errorf("unexpected error: %s", err)
				}
				return
			}
			if !errors.Is(err, c.Err) {
				t.Errorf("expected %s, got %v", c.Err, err)
			}
		})
	}
}

func TestLoginFormSkipsLengthPolicy(t *testing.T) {
	if err := LoginForm("ada@example.com", "123"); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
	if err := LoginForm("", ""); !errors.Is(err, ErrEmailRequired) {
		t.Errorf("expected email to be checked first, got %v", err)
	}
}
