package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"finance-tracker/internal/apperror"
	"finance-tracker/internal/models"
)

// errInvalidSession is shared by the unknown-token and expired-token paths
// so callers cannot distinguish the two.
func errInvalidSession(cause error) error {
	return apperror.New(apperror.Auth, "unauthorized", cause)
}

// CreateSession records a token -> user mapping with an absolute expiry.
func (db *DB) CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	now := time.Now()
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO sessions (token, user_id, created_at, expires_at, last_activity) VALUES (?, ?, ?, ?, ?)",
		token, userID, now, expiresAt, now,
	)
	return storeErr(err)
}

// SessionInfo holds session validation data.
type SessionInfo struct {
	User         *models.User
	LastActivity time.Time
	ExpiresAt    time.Time
}

// ValidateSession checks if a session token is valid and returns the
// associated user.
func (db *DB) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	info, err := db.ValidateSessionWithInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	return info.User, nil
}

// ValidateSessionWithInfo resolves a token to its user and session details.
// Expiry is checked against the clock here so a stale identity is never
// returned, whatever the expired row's purge state.
func (db *DB) ValidateSessionWithInfo(ctx context.Context, token string) (*SessionInfo, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.email, u.password_hash, u.created_at, s.last_activity, s.expires_at
		FROM sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.token = ?
	`, token)

	var u models.User
	var lastActivity, expiresAt time.Time
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &lastActivity, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errInvalidSession(err)
		}
		return nil, storeErr(err)
	}
	if !expiresAt.After(time.Now()) {
		return nil, errInvalidSession(nil)
	}
	return &SessionInfo{
		User:         &u,
		LastActivity: lastActivity,
		ExpiresAt:    expiresAt,
	}, nil
}

// RenewSession updates the last_activity and expires_at for a session.
func (db *DB) RenewSession(ctx context.Context, token string, newExpiresAt time.Time) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx,
		"UPDATE sessions SET last_activity = ?, expires_at = ? WHERE token = ?",
		time.Now(), newExpiresAt, token,
	)
	return storeErr(err)
}

// DeleteSession revokes a session. Deleting an unknown token is a no-op.
func (db *DB) DeleteSession(ctx context.Context, token string) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	return storeErr(err)
}

// CleanExpiredSessions purges sessions past their expiry.
func (db *DB) CleanExpiredSessions(ctx context.Context) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", time.Now())
	return storeErr(err)
}
