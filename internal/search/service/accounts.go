package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nordsearch/pagefinder/internal/search/domain"
	"github.com/nordsearch/pagefinder/internal/search/store"
	"github.com/nordsearch/pagefinder/pkg/cryptox"
)

// Authentication failures. The two messages are deliberately distinct and
// are surfaced to the client verbatim; they are part of the service's
// observable contract.
var (
	ErrInvalidUsername = errors.New("Invalid username")
	ErrInvalidPassword = errors.New("Invalid password")
)

// ValidationError is a recoverable bad-input failure whose message is shown
// to the user as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AccountService owns the account lifecycle: registration and credential
// verification.
type AccountService struct {
	Store store.Store
}

// Register validates the submitted form and creates the user. Validation
// short-circuits on the first failure, in this exact order: username, email,
// password, password confirmation, username availability. The availability
// check and the insert run in one transaction; a concurrent duplicate that
// slips past the check loses on the unique index and surfaces
// store.ErrAlreadyExists.
func (s *AccountService) Register(
	ctx context.Context,
	username, email, password, password2 string,
) (int64, error) {
	switch {
	case username == "":
		return 0, &ValidationError{Message: "You have to enter a username"}
	case email == "" || !strings.Contains(email, "@"):
		return 0, &ValidationError{Message: "You have to enter a valid email address"}
	case password == "":
		return 0, &ValidationError{Message: "You have to enter a password"}
	case password != password2:
		return 0, &ValidationError{Message: "The two passwords do not match"}
	}

	var userID int64
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().GetUserByUsername(ctx, username)
		switch {
		case err == nil:
			return &ValidationError{Message: "The username is already taken"}
		case !errors.Is(err, store.ErrNotFound):
			return fmt.Errorf("register: looking up username: %w", err)
		}

		userID, err = tx.Users().CreateUser(ctx, username, email, cryptox.HashPassword(password))
		if err != nil {
			return fmt.Errorf("register: creating user: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// Authenticate verifies a username/password pair. Unknown usernames and
// wrong passwords fail with their own errors; anything else is a store
// failure.
func (s *AccountService) Authenticate(
	ctx context.Context,
	username, password string,
) (domain.User, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidUsername
		}
		return domain.User{}, fmt.Errorf("authenticate: looking up user: %w", err)
	}

	if !cryptox.VerifyPassword(password, user.PasswordHash) {
		return domain.User{}, ErrInvalidPassword
	}
	return user, nil
}
