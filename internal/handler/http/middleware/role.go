package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/handler/http/response"
)

// RequireScreen lets the request through only when the session may open screen
func RequireScreen(screen user.Screen) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := user.SessionFromContext(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}

			if !user.CanAccess(session, screen) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: screen '%s' is not available to role '%s'", screen, session.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
