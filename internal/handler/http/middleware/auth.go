package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired turns the verified access token into a user.Session on the
// request context. It must run after jwtauth.Verifier.
func AuthRequired(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			raw := jwtauth.TokenFromHeader(r)
			if jwtService.IsTokenRevoked(raw) {
				response.HandleError(w, auth.ErrTokenRevoked)
				return
			}

			session, err := jwt.SessionFromClaims(claims, raw)
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(user.WithSession(r.Context(), session)))
		}
		return http.HandlerFunc(hfn)
	}
}
