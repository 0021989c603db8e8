package user

import "context"

type sessionKey struct{}

// WithSession returns a copy of ctx carrying session.
func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session stored by WithSession.
func SessionFromContext(ctx context.Context) (Session, error) {
	session, ok := ctx.Value(sessionKey{}).(Session)
	if !ok || session.EmployeeID == "" {
		return Session{}, ErrNoSession
	}
	return session, nil
}
