package auth

import (
	"context"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	// Logout revokes the access token of the session in ctx
	Logout(ctx context.Context) error
	// Me returns the profile of the session in ctx
	Me(ctx context.Context) (ProfileInfo, error)
	// IssueSSEToken returns a short-lived token for EventSource connections
	IssueSSEToken(ctx context.Context) (SSETokenResponse, error)
}
