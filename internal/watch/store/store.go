package store

import (
	"context"
	"errors"
	"time"

	"github.com/aryabkin/domabot/internal/watch/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Sub-repositories are exposed as methods so a Tx-scoped
// store can hand out the same repos bound to the transaction.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. Same repos, plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUser returns a user by id, or ErrNotFound.
	GetUser(ctx context.Context, id int64) (domain.User, error)

	// GetOrCreateUser fetches a user, inserting a fresh at-home record with
	// default timeout for ids the registry has never seen.
	GetOrCreateUser(ctx context.Context, id int64) (domain.User, error)

	// RegisterTransport records the handle and deliverable chat id learned
	// from the bot transport, creating the user if needed.
	RegisterTransport(ctx context.Context, id int64, handle string, chatID int64) error

	// EnsureReachable backfills the chat id with the user id when none is
	// recorded, and overwrites the handle when a non-empty one is provided.
	// Called from the status API where only the numeric id is authoritative.
	EnsureReachable(ctx context.Context, id int64, handle string) error

	// UpdatePresence sets the presence and leftHomeAt stamp atomically and
	// resets the escalation stage to zero.
	UpdatePresence(ctx context.Context, id int64, presence domain.Presence, leftHomeAt *time.Time) error

	// SetEscalationStage advances the reminder stage for an away user.
	SetEscalationStage(ctx context.Context, id int64, stage int) error

	// SetAwayTimeout stores the configured stage-1 delay in seconds.
	SetAwayTimeout(ctx context.Context, id int64, seconds int) error

	// SetEmergencyContact stores the designated contact handle and clears
	// any cached resolved chat id, forcing re-resolution.
	SetEmergencyContact(ctx context.Context, id int64, handle string) error

	// CacheEmergencyContactChatID stores a successful handle resolution on
	// the referring user.
	CacheEmergencyContactChatID(ctx context.Context, id int64, chatID int64) error

	// ResolveHandle returns the most recently updated user with the given
	// handle and a known chat id, or ErrNotFound.
	ResolveHandle(ctx context.Context, handle string) (domain.User, error)

	// LinkPendingContacts backfills the cached contact chat id for every
	// user who designated this handle before its owner registered. Returns
	// the number of users linked.
	LinkPendingContacts(ctx context.Context, handle string, chatID int64) (int64, error)

	// ListAway returns all users currently marked away, for startup resume.
	ListAway(ctx context.Context) ([]domain.User, error)

	// ListUsers returns the full registry, newest first. Diagnostic use.
	ListUsers(ctx context.Context) ([]domain.User, error)
}
