package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nordsearch/pagefinder/internal/search/store"
	"github.com/nordsearch/pagefinder/internal/search/store/drivers/sqlite"
	"github.com/nordsearch/pagefinder/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestRegisterValidationOrder(t *testing.T) {
	ctx := context.Background()
	svc := &AccountService{Store: newTestStore(t)}

	t.Run("empty username wins over every later failure", func(t *testing.T) {
		_, err := svc.Register(ctx, "", "bad", "", "x")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "You have to enter a username", verr.Message)
	})

	t.Run("invalid email is checked second", func(t *testing.T) {
		for _, email := range []string{"", "missing-at-sign"} {
			_, err := svc.Register(ctx, "alice", email, "", "x")
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, "You have to enter a valid email address", verr.Message)
		}
	})

	t.Run("empty password is checked third", func(t *testing.T) {
		_, err := svc.Register(ctx, "alice", "alice@example.com", "", "x")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "You have to enter a password", verr.Message)
	})

	t.Run("password mismatch is checked fourth", func(t *testing.T) {
		_, err := svc.Register(ctx, "alice", "alice@example.com", "secret", "other")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "The two passwords do not match", verr.Message)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &AccountService{Store: st}

	t.Run("creates the user and returns its id", func(t *testing.T) {
		id, err := svc.Register(ctx, "alice", "alice@example.com", "secret", "secret")
		require.NoError(t, err)
		require.Positive(t, id)

		user, err := st.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, id, user.ID)
		require.Equal(t, cryptox.HashPassword("secret"), user.PasswordHash)
	})

	t.Run("second registration for the same name fails before writing", func(t *testing.T) {
		_, err := svc.Register(ctx, "alice", "other@example.com", "pw", "pw")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "The username is already taken", verr.Message)

		// The original row is untouched.
		user, err := st.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("concurrent registrations produce exactly one row", func(t *testing.T) {
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			outcomes []error
		)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.Register(ctx, "bob", "bob@example.com", "pw", "pw")
				mu.Lock()
				outcomes = append(outcomes, err)
				mu.Unlock()
			}()
		}
		wg.Wait()

		var successes, failures int
		for _, err := range outcomes {
			if err == nil {
				successes++
				continue
			}
			failures++
			// The loser sees either the pre-check message or the
			// unique-index violation, depending on interleaving.
			var verr *ValidationError
			if !errors.As(err, &verr) {
				require.ErrorIs(t, err, store.ErrAlreadyExists)
			}
		}
		require.Equal(t, 1, successes)
		require.Equal(t, 1, failures)

		_, err := st.Users().GetUserByUsername(ctx, "bob")
		require.NoError(t, err)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &AccountService{Store: st}

	_, err := svc.Register(ctx, "alice", "alice@example.com", "secret", "secret")
	require.NoError(t, err)

	t.Run("succeeds with the right password", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "alice", "secret")
		require.NoError(t, err)
		require.Equal(t, "alice", user.Username)
	})

	t.Run("unknown usernames fail regardless of password", func(t *testing.T) {
		for _, pw := range []string{"", "secret", "anything"} {
			_, err := svc.Authenticate(ctx, "mallory", pw)
			require.ErrorIs(t, err, ErrInvalidUsername)
		}
	})

	t.Run("wrong password fails distinctly", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "alice", "wrong")
		require.ErrorIs(t, err, ErrInvalidPassword)
	})
}
