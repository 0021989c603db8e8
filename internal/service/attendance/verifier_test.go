package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueAt(t *testing.T, tokens *fakeTokenRepo, at time.Time) attendance.IssuedToken {
	t.Helper()
	issuer := NewIssuer(tokens, &fakeSettingsRepo{settings: defaultSettings()}, nil, time.Second)
	issuer.now = func() time.Time { return at }
	issued, err := issuer.Issue(context.Background())
	require.NoError(t, err)
	return issued
}

func TestVerifier_ExpiryWindow(t *testing.T) {
	tokens := newFakeTokenRepo()
	issuedAt := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	issued := issueAt(t, tokens, issuedAt)
	verifier := NewVerifier(tokens, time.Second)

	verifier.now = func() time.Time { return issuedAt.Add(9 * time.Second) }
	tok, err := verifier.Verify(context.Background(), issued.Payload)
	require.NoError(t, err)
	assert.Equal(t, issued.Token.ID, tok.ID)

	verifier.now = func() time.Time { return issuedAt.Add(10 * time.Second) }
	_, err = verifier.Verify(context.Background(), issued.Payload)
	assert.ErrorIs(t, err, attendance.ErrTokenExpired)

	verifier.now = func() time.Time { return issuedAt.Add(11 * time.Second) }
	_, err = verifier.Verify(context.Background(), issued.Payload)
	assert.ErrorIs(t, err, attendance.ErrTokenExpired)
}

func TestVerifier_Rejections(t *testing.T) {
	tokens := newFakeTokenRepo()
	issuedAt := time.Now()
	issued := issueAt(t, tokens, issuedAt)
	verifier := NewVerifier(tokens, time.Second)
	verifier.now = func() time.Time { return issuedAt.Add(time.Second) }

	_, err := verifier.Verify(context.Background(), "abc")
	assert.ErrorIs(t, err, attendance.ErrInvalidFormat)

	_, err = verifier.Verify(context.Background(), "a|b|c")
	assert.ErrorIs(t, err, attendance.ErrInvalidFormat)

	_, err = verifier.Verify(context.Background(), "abc|xyz")
	assert.ErrorIs(t, err, attendance.ErrTokenNotFound)

	_, err = verifier.Verify(context.Background(), "0194a1b2-c3d4-7e5f-8a6b-1c2d3e4f5a6b|"+issued.Token.Secret)
	assert.ErrorIs(t, err, attendance.ErrTokenNotFound)

	_, err = verifier.Verify(context.Background(), issued.Token.ID+"|not-the-secret")
	assert.ErrorIs(t, err, attendance.ErrTokenForged)

	// Forged wins over expired: authenticity is checked first.
	verifier.now = func() time.Time { return issuedAt.Add(time.Hour) }
	_, err = verifier.Verify(context.Background(), issued.Token.ID+"|not-the-secret")
	assert.ErrorIs(t, err, attendance.ErrTokenForged)
}

func TestVerifier_ForeignIDsNeverReachTheStore(t *testing.T) {
	tokens := newFakeTokenRepo()
	tokens.getErr = errStoreDown
	verifier := NewVerifier(tokens, time.Second)

	for _, payload := range []string{"a/b|secret", "..|secret", "__x__|secret", "https://example.com/?q=1|2", "tok\x00|secret"} {
		_, err := verifier.Verify(context.Background(), payload)
		assert.ErrorIs(t, err, attendance.ErrTokenNotFound, "payload %q", payload)
		assert.False(t, attendance.IsRetryable(err), "payload %q", payload)
	}
}

func TestVerifier_PersistenceError(t *testing.T) {
	tokens := newFakeTokenRepo()
	tokens.getErr = errStoreDown
	verifier := NewVerifier(tokens, time.Second)

	_, err := verifier.Verify(context.Background(), "0194a1b2-c3d4-7e5f-8a6b-1c2d3e4f5a6b|secret")

	var pErr *attendance.PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "get", pErr.Op)
	assert.Equal(t, "attendance_token 0194a1b2-c3d4-7e5f-8a6b-1c2d3e4f5a6b", pErr.Target)
}

func TestVerifier_ConcurrentVerifyIsReadOnly(t *testing.T) {
	tokens := newFakeTokenRepo()
	issued := issueAt(t, tokens, time.Now())
	verifier := NewVerifier(tokens, time.Second)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := verifier.Verify(context.Background(), issued.Payload)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	stored, err := tokens.GetByID(context.Background(), issued.Token.ID)
	require.NoError(t, err)
	assert.Equal(t, issued.Token, stored)
}
