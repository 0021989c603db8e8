package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceTokenRepository struct {
	db *database.DB
}

func NewAttendanceTokenRepository(db *database.DB) attendance.TokenRepository {
	return &attendanceTokenRepository{db: db}
}

// Create implements attendance.TokenRepository.
func (r *attendanceTokenRepository) Create(ctx context.Context, token attendance.Token) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_tokens (id, secret, issued_at, valid_until)
		VALUES ($1, $2, $3, $4)
	`
	_, err := q.Exec(ctx, query, token.ID, token.Secret, token.IssuedAt, token.ValidUntil)
	if err != nil {
		if database.IsPgError(err, database.UniqueViolation) {
			return fmt.Errorf("attendance token %s already exists: %w", token.ID, err)
		}
		return fmt.Errorf("failed to create attendance token: %w", err)
	}
	return nil
}

// GetByID implements attendance.TokenRepository.
func (r *attendanceTokenRepository) GetByID(ctx context.Context, id string) (attendance.Token, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, secret, issued_at, valid_until
		FROM attendance_tokens
		WHERE id = $1
	`
	var t attendance.Token
	err := q.QueryRow(ctx, query, id).Scan(&t.ID, &t.Secret, &t.IssuedAt, &t.ValidUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Token{}, attendance.ErrTokenNotFound
		}
		return attendance.Token{}, fmt.Errorf("failed to get attendance token: %w", err)
	}
	return t, nil
}

// DeleteIssuedBefore implements attendance.TokenRepository.
func (r *attendanceTokenRepository) DeleteIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_tokens WHERE issued_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale attendance tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
