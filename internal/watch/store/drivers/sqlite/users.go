package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aryabkin/domabot/internal/watch/domain"
	"github.com/aryabkin/domabot/internal/watch/store"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so the repo works unchanged
// inside transactions.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type usersRepo struct {
	db dbtx
}

const userColumns = `id, handle, chat_id, presence, emergency_contact_handle,
	emergency_contact_chat_id, left_home_at, escalation_stage,
	away_timeout_seconds, created_at, updated_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var r userRow
	err := row.Scan(
		&r.ID, &r.Handle, &r.ChatID, &r.Presence,
		&r.EmergencyContactHandle, &r.EmergencyContactChatID,
		&r.LeftHomeAt, &r.EscalationStage, &r.AwayTimeoutSeconds,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(r), nil
}

func (r *usersRepo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetOrCreateUser(ctx context.Context, id int64) (domain.User, error) {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, presence, away_timeout_seconds, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		id, string(domain.PresenceHome), domain.DefaultAwayTimeoutSeconds, now, now)
	if err != nil {
		return domain.User{}, err
	}
	return r.GetUser(ctx, id)
}

func (r *usersRepo) RegisterTransport(ctx context.Context, id int64, handle string, chatID int64) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, handle, chat_id, presence, away_timeout_seconds, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			handle = excluded.handle,
			chat_id = excluded.chat_id,
			updated_at = excluded.updated_at`,
		id, handle, chatID, string(domain.PresenceHome),
		domain.DefaultAwayTimeoutSeconds, now, now)
	return err
}

func (r *usersRepo) EnsureReachable(ctx context.Context, id int64, handle string) error {
	if _, err := r.GetOrCreateUser(ctx, id); err != nil {
		return err
	}
	now := time.Now().UTC()
	if handle != "" {
		_, err := r.db.ExecContext(ctx, `
			UPDATE users SET
				handle = ?,
				chat_id = COALESCE(chat_id, id),
				updated_at = ?
			WHERE id = ?`,
			handle, now, id)
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET chat_id = COALESCE(chat_id, id), updated_at = ?
		WHERE id = ?`,
		now, id)
	return err
}

func (r *usersRepo) UpdatePresence(ctx context.Context, id int64, presence domain.Presence, leftHomeAt *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			presence = ?,
			left_home_at = ?,
			escalation_stage = 0,
			updated_at = ?
		WHERE id = ?`,
		string(presence), mapOptionalTime(leftHomeAt), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) SetEscalationStage(ctx context.Context, id int64, stage int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET escalation_stage = ?, updated_at = ? WHERE id = ?`,
		stage, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) SetAwayTimeout(ctx context.Context, id int64, seconds int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET away_timeout_seconds = ?, updated_at = ? WHERE id = ?`,
		seconds, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) SetEmergencyContact(ctx context.Context, id int64, handle string) error {
	// Any handle change invalidates the cached resolution.
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			emergency_contact_handle = ?,
			emergency_contact_chat_id = NULL,
			updated_at = ?
		WHERE id = ?`,
		handle, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) CacheEmergencyContactChatID(ctx context.Context, id int64, chatID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET emergency_contact_chat_id = ?, updated_at = ? WHERE id = ?`,
		chatID, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) ResolveHandle(ctx context.Context, handle string) (domain.User, error) {
	// Handles are not unique on our side (the transport enforces its own
	// uniqueness); the newest deliverable row wins deterministically.
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE handle = ? AND chat_id IS NOT NULL
		ORDER BY updated_at DESC, id DESC
		LIMIT 1`, handle)
	return scanUser(row)
}

func (r *usersRepo) LinkPendingContacts(ctx context.Context, handle string, chatID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET emergency_contact_chat_id = ?, updated_at = ?
		WHERE emergency_contact_handle = ? AND emergency_contact_chat_id IS NULL`,
		chatID, time.Now().UTC(), handle)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *usersRepo) ListAway(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE presence = ?
		ORDER BY id`, string(domain.PresenceAway))
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.User, error) {
	return r.list(ctx, `SELECT `+userColumns+` FROM users ORDER BY updated_at DESC`)
}

func (r *usersRepo) list(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var row userRow
		if err := rows.Scan(
			&row.ID, &row.Handle, &row.ChatID, &row.Presence,
			&row.EmergencyContactHandle, &row.EmergencyContactChatID,
			&row.LeftHomeAt, &row.EscalationStage, &row.AwayTimeoutSeconds,
			&row.CreatedAt, &row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, mapUser(row))
	}
	return users, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
