// Package storage persists users, sessions and expenses in sqlite.
// Every call is bounded by a timeout so a slow store surfaces a failure
// instead of hanging the request.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"finance-tracker/internal/apperror"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// defaultQueryTimeout bounds a single storage call.
const defaultQueryTimeout = 5 * time.Second

// DB wraps a sql.DB connection.
type DB struct {
	conn         *sql.DB
	queryTimeout time.Duration
}

// NewDB opens a database connection and runs migrations.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer; one pooled connection also keeps
	// :memory: databases stable across calls.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA foreign_keys = ON`,
	} {
		if _, err := conn.Exec(pragma); err != nil {
			return nil, err
		}
	}

	db := &DB{conn: conn, queryTimeout: defaultQueryTimeout}
	if err := db.migrate(); err != nil {
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			expires_at DATETIME NOT NULL,
			last_activity DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS expenses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			amount_cents INTEGER NOT NULL CHECK (amount_cents >= 0),
			date TEXT NOT NULL,
			category TEXT NOT NULL CHECK (category IN ('Income', 'Expense')),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_user_date ON expenses(user_id, date)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}

	return nil
}

// Ping checks store reachability with a bounded timeout.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()
	if err := db.conn.PingContext(ctx); err != nil {
		return apperror.New(apperror.Unavailable, "database unavailable", err)
	}
	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, db.queryTimeout)
}

// storeErr maps raw database errors to the application taxonomy. Unique
// constraint violations become Conflict; missing rows become NotFound;
// anything else is surfaced as the store being unavailable.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return apperror.New(apperror.NotFound, "not found", err)
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return apperror.New(apperror.Conflict, conflictMessage(err), err)
	default:
		return apperror.New(apperror.Unavailable, "database unavailable", err)
	}
}

func conflictMessage(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users.username"):
		return "username already exists"
	case strings.Contains(msg, "users.email"):
		return "email already exists"
	}
	return "already exists"
}
