package attendance

import (
	"strings"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/validator"
)

// PayloadSeparator joins token id and secret inside a scanned code.
const PayloadSeparator = "|"

// FormatPayload encodes a token as "<id>|<secret>".
func FormatPayload(id, secret string) string {
	return id + PayloadSeparator + secret
}

// ParsePayload splits a scanned string into token id and secret. Anything but
// exactly two non-empty fields is ErrInvalidFormat.
func ParsePayload(payload string) (id string, secret string, err error) {
	parts := strings.Split(strings.TrimSpace(payload), PayloadSeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidFormat
	}
	return parts[0], parts[1], nil
}

// IsTokenID reports whether id has the shape of an issued token id. Anything
// else cannot name a stored token and must not reach the store as a key.
func IsTokenID(id string) bool {
	return validator.IsValidUUID(id)
}
