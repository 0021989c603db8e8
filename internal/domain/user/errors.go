package user

import "errors"

var (
	ErrNoSession               = errors.New("no authenticated session")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrInvalidRole             = errors.New("role must be admin, hr or employee")
	ErrInvalidScreen           = errors.New("unknown screen key")
)
