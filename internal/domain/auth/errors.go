package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid employee code or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrEmployeeInactive   = errors.New("employee account is inactive")
	ErrDeviceMismatch     = errors.New("this account is bound to another device")
)
