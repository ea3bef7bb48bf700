package auth

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	pcerrors "github.com/SuyashBhavalkar3/posturecoach/errors"
)

// User is a registered account. PasswordHash never leaves the auth
// package.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

const userSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash BLOB NOT NULL,
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
`

// Store persists users in a single SQLite file.
type Store struct {
	db *sql.DB
}

// OpenStore opens the user database at path and applies the schema.
func OpenStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, pcerrors.WrapInvalid(pcerrors.ErrMissingConfig, "auth", "OpenStore", "resolve database path")
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, pcerrors.WrapFatal(err, "auth", "OpenStore", "open sqlite db")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, pcerrors.WrapFatal(err, "auth", "OpenStore", "ping sqlite db")
	}
	if _, err := db.Exec(userSchema); err != nil {
		_ = db.Close()
		return nil, pcerrors.WrapFatal(err, "auth", "OpenStore", "apply schema")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// CreateUser inserts a new account and returns it with a generated id.
// Emails are unique; a duplicate reports ErrEmailTaken.
func (s *Store) CreateUser(ctx context.Context, name, email string, passwordHash []byte) (User, error) {
	u := User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, pcerrors.ErrEmailTaken
		}
		return User{}, pcerrors.WrapTransient(err, "auth", "CreateUser", "insert user")
	}
	return u, nil
}

// UserByEmail looks up an account by its normalized email.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`,
		normalizeEmail(email),
	))
}

// UserByID looks up an account by its id.
func (s *Store) UserByID(ctx context.Context, id string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`,
		id,
	))
}

func (s *Store) scanUser(row *sql.Row) (User, error) {
	var u User
	var createdAt int64
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, pcerrors.ErrUserNotFound
		}
		return User{}, pcerrors.WrapTransient(err, "auth", "scanUser", "scan user row")
	}
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isUniqueViolation detects the SQLite unique constraint failure without
// depending on driver error codes.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}
