package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"google.golang.org/api/iterator"
)

type tokenDoc struct {
	Secret     string    `firestore:"secret"`
	IssuedAt   time.Time `firestore:"issued_at"`
	ValidUntil time.Time `firestore:"valid_until"`
}

type tokenRepository struct {
	client *firestore.Client
}

func NewAttendanceTokenRepository(client *firestore.Client) attendance.TokenRepository {
	return &tokenRepository{client: client}
}

func (r *tokenRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(TokensCollection)
}

// Create implements attendance.TokenRepository.
func (r *tokenRepository) Create(ctx context.Context, token attendance.Token) error {
	_, err := r.collection().Doc(token.ID).Create(ctx, tokenDoc{
		Secret:     token.Secret,
		IssuedAt:   token.IssuedAt,
		ValidUntil: token.ValidUntil,
	})
	if err != nil {
		if isAlreadyExists(err) {
			return fmt.Errorf("attendance token %s already exists: %w", token.ID, err)
		}
		return fmt.Errorf("failed to create attendance token: %w", err)
	}
	return nil
}

// GetByID implements attendance.TokenRepository.
func (r *tokenRepository) GetByID(ctx context.Context, id string) (attendance.Token, error) {
	snap, err := r.collection().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return attendance.Token{}, attendance.ErrTokenNotFound
		}
		return attendance.Token{}, fmt.Errorf("failed to get attendance token: %w", err)
	}

	var doc tokenDoc
	if err := snap.DataTo(&doc); err != nil {
		return attendance.Token{}, fmt.Errorf("failed to decode attendance token %s: %w", id, err)
	}
	return attendance.Token{
		ID:         snap.Ref.ID,
		Secret:     doc.Secret,
		IssuedAt:   doc.IssuedAt,
		ValidUntil: doc.ValidUntil,
	}, nil
}

// DeleteIssuedBefore implements attendance.TokenRepository.
func (r *tokenRepository) DeleteIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	iter := r.collection().Where("issued_at", "<", cutoff).Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("failed to scan stale attendance tokens: %w", err)
		}
		job, err := bw.Delete(snap.Ref)
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("failed to queue token delete: %w", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var deleted int64
	var firstErr error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		deleted++
	}
	if firstErr != nil {
		return deleted, fmt.Errorf("failed to delete stale attendance tokens: %w", firstErr)
	}
	return deleted, nil
}
