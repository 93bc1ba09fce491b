package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aryabkin/domabot/internal/watch/domain"
	"github.com/aryabkin/domabot/internal/watch/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// modernc's sqlite serializes writes anyway; a single pooled connection
	// avoids SQLITE_BUSY under concurrent timer fires and keeps :memory:
	// databases from splitting across connections in tests.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err // rollback happens in defer
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users { return &usersRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapNullInt64Ptr(ni sql.NullInt64) *int64 {
	if ni.Valid {
		val := ni.Int64
		return &val
	}
	return nil
}

func mapOptionalInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time.UTC()
		return &val
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// userRow mirrors the users table for scanning.
type userRow struct {
	ID                     int64
	Handle                 string
	ChatID                 sql.NullInt64
	Presence               string
	EmergencyContactHandle string
	EmergencyContactChatID sql.NullInt64
	LeftHomeAt             sql.NullTime
	EscalationStage        int
	AwayTimeoutSeconds     int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func mapUser(row userRow) domain.User {
	return domain.User{
		ID:                     row.ID,
		Handle:                 row.Handle,
		ChatID:                 mapNullInt64Ptr(row.ChatID),
		Presence:               domain.Presence(row.Presence),
		EmergencyContactHandle: row.EmergencyContactHandle,
		EmergencyContactChatID: mapNullInt64Ptr(row.EmergencyContactChatID),
		LeftHomeAt:             mapNullTimePtr(row.LeftHomeAt),
		EscalationStage:        row.EscalationStage,
		AwayTimeoutSeconds:     row.AwayTimeoutSeconds,
		CreatedAt:              row.CreatedAt.UTC(),
		UpdatedAt:              row.UpdatedAt.UTC(),
	}
}
