package credstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nuworks/authcore"
	"github.com/samber/oops"
)

// Querier is the subset of *pgxpool.Pool the store uses.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Schema creates the tables the store reads and writes.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id               TEXT PRIMARY KEY,
	email            TEXT NOT NULL UNIQUE,
	password         TEXT,
	auth_provider_id INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS user_blocks (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id),
	reason_id  INTEGER NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS user_blocks_user_id_idx ON user_blocks (user_id);
`

const findByEmailSQL = `SELECT u.id, u.email, COALESCE(u.password, ''), u.auth_provider_id,
	EXISTS (SELECT 1 FROM user_blocks b WHERE b.user_id = u.id AND b.reason_id <> $2)
FROM users u WHERE u.email = $1`

const blockUserSQL = `INSERT INTO user_blocks (user_id, reason_id) VALUES ($1, $2)`

// Store reads users and writes block records.
type Store struct {
	db Querier
}

var _ authcore.CredentialStore = (*Store)(nil)

// New returns a Store over db.
func New(db Querier) *Store {
	return &Store{db: db}
}

// Open connects a pool to databaseURL and checks it with a ping.
func Open(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.In("credstore").With("operation", "connect").Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, oops.In("credstore").With("operation", "ping").Wrap(err)
	}
	return pool, nil
}

// EnsureSchema creates missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return oops.In("credstore").With("operation", "ensure schema").Wrap(err)
	}
	return nil
}

// FindByEmail returns the user with email or authcore.ErrUserNotFound.
func (s *Store) FindByEmail(ctx context.Context, email string) (*authcore.UserRecord, error) {
	var (
		rec        authcore.UserRecord
		providerID int
	)
	err := s.db.QueryRow(ctx, findByEmailSQL, email, int(authcore.BlockActive)).
		Scan(&rec.ID, &rec.Email, &rec.PasswordHash, &providerID, &rec.Blocked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, authcore.ErrUserNotFound
	}
	if err != nil {
		return nil, oops.In("credstore").With("operation", "find user by email").Wrap(err)
	}
	rec.AuthProviderID = authcore.ProviderID(providerID)
	return &rec, nil
}

// BlockUser records a block for userID with reason.
func (s *Store) BlockUser(ctx context.Context, userID string, reason authcore.BlockReason) error {
	if _, err := s.db.Exec(ctx, blockUserSQL, userID, int(reason)); err != nil {
		return oops.In("credstore").
			With("operation", "block user").
			With("user_id", userID).
			With("reason_id", int(reason)).
			Wrap(err)
	}
	return nil
}
