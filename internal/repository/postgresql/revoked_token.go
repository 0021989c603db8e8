package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/database"
)

type revocationRepositoryImpl struct {
	db *database.DB
}

// NewRevocationRepository creates a new instance of auth.RevocationRepository.
func NewRevocationRepository(db *database.DB) auth.RevocationRepository {
	return &revocationRepositoryImpl{db: db}
}

// Revoke stores the hash of a logged-out access token until it would have expired anyway.
func (j *revocationRepositoryImpl) Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	q := GetQuerier(ctx, j.db)
	query := `
		INSERT INTO revoked_tokens (token_hash, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token_hash) DO NOTHING
	`
	if _, err := q.Exec(ctx, query, tokenHash, expiresAt.UTC()); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (j *revocationRepositoryImpl) ListActive(ctx context.Context, now time.Time) (map[string]time.Time, error) {
	q := GetQuerier(ctx, j.db)

	query := `
		SELECT token_hash, expires_at
		FROM revoked_tokens
		WHERE expires_at > $1
	`
	rows, err := q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list revoked tokens: %w", err)
	}
	defer rows.Close()

	active := make(map[string]time.Time)
	for rows.Next() {
		var hash string
		var expiresAt time.Time
		if err := rows.Scan(&hash, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan revoked token: %w", err)
		}
		active[hash] = expiresAt
	}
	return active, rows.Err()
}

func (j *revocationRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, j.db)

	tag, err := q.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired revocations: %w", err)
	}
	return tag.RowsAffected(), nil
}
