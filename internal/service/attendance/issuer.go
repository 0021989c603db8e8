package attendance

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/qr"
	"github.com/google/uuid"
)

const secretBytes = 32

// Issuer mints a fresh token per rotation and renders it as a QR code.
type Issuer struct {
	tokens       attendance.TokenRepository
	settings     settings.SettingsRepository
	encoder      qr.Encoder
	storeTimeout time.Duration
	now          func() time.Time
	random       io.Reader
}

func NewIssuer(tokens attendance.TokenRepository, settingsRepo settings.SettingsRepository, encoder qr.Encoder, storeTimeout time.Duration) *Issuer {
	return &Issuer{
		tokens:       tokens,
		settings:     settingsRepo,
		encoder:      encoder,
		storeTimeout: storeTimeout,
		now:          time.Now,
		random:       rand.Reader,
	}
}

// Issue implements attendance.TokenIssuer.
func (i *Issuer) Issue(ctx context.Context) (attendance.IssuedToken, error) {
	interval := i.rotationInterval(ctx)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.IssuedToken{}, fmt.Errorf("generate token id: %w", err)
	}
	secret, err := i.newSecret()
	if err != nil {
		return attendance.IssuedToken{}, err
	}

	issuedAt := i.now()
	token := attendance.Token{
		ID:         id.String(),
		IssuedAt:   issuedAt,
		Secret:     secret,
		ValidUntil: issuedAt.Add(interval),
	}

	_, err = storeCall(ctx, i.storeTimeout, "create", "attendance_token "+token.ID, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, i.tokens.Create(ctx, token)
	})
	if err != nil {
		return attendance.IssuedToken{}, err
	}

	issued := attendance.IssuedToken{
		Token:           token,
		Payload:         attendance.FormatPayload(token.ID, token.Secret),
		RotationSeconds: int(interval / time.Second),
	}
	if i.encoder != nil {
		png, err := i.encoder.PNG(issued.Payload)
		if err != nil {
			return attendance.IssuedToken{}, err
		}
		issued.QRCodePNG = png
	}

	slog.Debug("attendance token issued", "token_id", token.ID, "valid_until", token.ValidUntil)
	return issued, nil
}

// rotationInterval reads the configured rotation and falls back to the default
// when settings are missing or unreadable.
func (i *Issuer) rotationInterval(ctx context.Context) time.Duration {
	s, err := storeCall(ctx, i.storeTimeout, "get", "attendance_settings", i.settings.Get, settings.ErrSettingsNotFound)
	if err != nil {
		slog.Warn("attendance settings unavailable, using default rotation", "error", err)
		return settings.DefaultTokenRotationSeconds * time.Second
	}
	return s.RotationInterval()
}

func (i *Issuer) newSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := io.ReadFull(i.random, buf); err != nil {
		return "", fmt.Errorf("generate token secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
