package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"helpdesk/internal/storage"
)

// PostgresStore persists OAuth tokens in a user_tokens table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new Postgres-backed token store
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping Postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Initialize is a no-op - tables are managed via migrations
func (s *PostgresStore) Initialize(ctx context.Context) error {
	// Tables are managed via migrations (see migrations/ directory)
	return nil
}

// GetToken returns the stored token for the user. An expired row is deleted
// on the way out and reported as storage.ErrTokenNotFound.
func (s *PostgresStore) GetToken(ctx context.Context, userID int64) (string, error) {
	var token string
	var expiresAt time.Time

	err := s.pool.QueryRow(ctx,
		`SELECT token, expires_at FROM user_tokens WHERE user_id = $1`,
		userID).Scan(&token, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", storage.ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query token: %w", err)
	}

	if !expiresAt.After(time.Now()) {
		if _, err := s.pool.Exec(ctx,
			`DELETE FROM user_tokens WHERE user_id = $1`, userID); err != nil {
			return "", fmt.Errorf("failed to delete expired token: %w", err)
		}
		return "", storage.ErrTokenNotFound
	}

	return token, nil
}

// SaveToken stores or replaces the token for the user
func (s *PostgresStore) SaveToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_tokens (user_id, token, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET token = $2, expires_at = $3`,
		userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
