package attendance

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
)

// Verifier checks scanned payloads against stored tokens. It never writes.
type Verifier struct {
	tokens       attendance.TokenRepository
	storeTimeout time.Duration
	now          func() time.Time
}

func NewVerifier(tokens attendance.TokenRepository, storeTimeout time.Duration) *Verifier {
	return &Verifier{tokens: tokens, storeTimeout: storeTimeout, now: time.Now}
}

// Verify implements attendance.TokenVerifier.
func (v *Verifier) Verify(ctx context.Context, payload string) (attendance.Token, error) {
	id, secret, err := attendance.ParsePayload(payload)
	if err != nil {
		return attendance.Token{}, err
	}
	if !attendance.IsTokenID(id) {
		return attendance.Token{}, attendance.ErrTokenNotFound
	}

	token, err := storeCall(ctx, v.storeTimeout, "get", "attendance_token "+id, func(ctx context.Context) (attendance.Token, error) {
		return v.tokens.GetByID(ctx, id)
	})
	if err != nil {
		return attendance.Token{}, err
	}

	if subtle.ConstantTimeCompare([]byte(token.Secret), []byte(secret)) != 1 {
		return attendance.Token{}, attendance.ErrTokenForged
	}
	if !token.AcceptsAt(v.now()) {
		return attendance.Token{}, attendance.ErrTokenExpired
	}
	return token, nil
}
