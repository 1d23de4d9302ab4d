// Package auth implements the login and signup flows against the backend's users collection.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/goblog/internal/domain"
	"github.com/sidereusnuntius/goblog/internal/validate"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth.go -destination=../mocks/mock_auth.go -package=mocks

const BcryptCost = 10

// CreatedAtLayout matches JavaScript's Date.toISOString, which the backend's existing records use.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

var (
	ErrInvalidInput  = errors.New("invalid")
	ErrNoAccount     = errors.New("no account found with this email")
	ErrWrongPassword = errors.New("invalid password")
	ErrEmailTaken    = errors.New("user with this email already exists")
	ErrLoginFailed   = errors.New("login failed")
	ErrSignupFailed  = errors.New("signup failed")
)

// Directory looks up and registers accounts.
type Directory interface {
	FindUsersByEmail(ctx context.Context, email string) ([]domain.Account, error)
	CreateUser(ctx context.Context, account domain.NewAccount) (domain.Account, error)
}

// Sessions receives the user once authentication succeeds.
type Sessions interface {
	Login(user domain.User)
}

type Service struct {
	dir      Directory
	sessions Sessions
	cost     int
	now      func() time.Time
}

func New(dir Directory, sessions Sessions) *Service {
	return &Service{
		dir:      dir,
		sessions: sessions,
		cost:     BcryptCost,
		now:      time.Now,
	}
}

// Login looks the account up by email and compares the password. The password never leaves this function:
// only the stripped user reaches the session.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if err := validate.LoginForm(email, password); err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	accounts, err := s.dir.FindUsersByEmail(ctx, email)
	if err != nil {
		log.Error().Err(err).Msg("login error")
		return domain.User{}, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if len(accounts) == 0 {
		return domain.User{}, ErrNoAccount
	}

	account := accounts[0]
	if !checkPassword(account.Password, password) {
		return domain.User{}, ErrWrongPassword
	}

	user := account.Safe()
	s.sessions.Login(user)
	return user, nil
}

// Signup registers a new account and logs it in. The password is stored as a bcrypt hash.
func (s *Service) Signup(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if err := validate.SignUpForm(email, password); err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	existing, err := s.dir.FindUsersByEmail(ctx, email)
	if err != nil {
		log.Error().Err(err).Msg("signup error")
		return domain.User{}, fmt.Errorf("%w: %w", ErrSignupFailed, err)
	}
	if len(existing) > 0 {
		return domain.User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: %w", ErrSignupFailed, err)
	}

	account, err := s.dir.CreateUser(ctx, domain.NewAccount{
		Email:     email,
		Password:  string(hash),
		CreatedAt: s.now().UTC().Format(CreatedAtLayout),
	})
	if err != nil {
		log.Error().Err(err).Msg("signup error")
		return domain.User{}, fmt.Errorf("%w: %w", ErrSignupFailed, err)
	}

	user := account.Safe()
	s.sessions.Login(user)
	return user, nil
}

// checkPassword accepts bcrypt hashes and, for accounts created by other clients of the backend, plain
// text passwords.
func checkPassword(stored, given string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}

// Message returns the text shown to the user for an error returned by Login or Signup.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, validate.ErrEmailRequired):
		return "Email is required"
	case errors.Is(err, validate.ErrPasswordRequired):
		return "Password is required"
	case errors.Is(err, validate.ErrEmailFormat):
		return "Please enter a valid email address"
	case errors.Is(err, validate.ErrPasswordShort):
		return fmt.Sprintf("Password must be at least %d characters long", validate.MinPasswordLen)
	case errors.Is(err, validate.ErrPasswordLong):
		return fmt.Sprintf("Password must be at most %d bytes long", validate.MaxPasswordBytes)
	case errors.Is(err, ErrNoAccount):
		return "No account found with this email"
	case errors.Is(err, ErrWrongPassword):
		return "Invalid password"
	case errors.Is(err, ErrEmailTaken):
		return "User with this email already exists"
	case errors.Is(err, ErrLoginFailed):
		return "Login failed. Please try again."
	case errors.Is(err, ErrSignupFailed):
		return "Failed to create account. Please try again."
	default:
		return err.Error()
	}
}
