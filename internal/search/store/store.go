package store

import (
	"context"
	"errors"

	"github.com/nordsearch/pagefinder/internal/search/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and every query underneath is parameter-bound; no caller input is
// ever spliced into query text.
type Store interface {
	Users() Users
	Pages() Pages

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id, ErrNotFound when absent.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByUsername is used during registration pre-checks and login.
	// Usernames compare case-sensitively.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user and returns the store-assigned id.
	// A duplicate username fails with ErrAlreadyExists; the caller is
	// expected to have pre-checked, but the store never silently succeeds
	// on a conflicting write.
	CreateUser(ctx context.Context, username, email, passwordHash string) (int64, error)
}

type Pages interface {
	// SearchPages returns pages whose language matches exactly and whose
	// content contains substring literally (LIKE metacharacters in the
	// substring are escaped, not interpreted). Results are ordered by id
	// ascending, i.e. insertion order; callers may rely on that.
	// An empty substring yields an empty slice without querying.
	SearchPages(ctx context.Context, language, substring string) ([]domain.Page, error)
}
