package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/jwt"
)

// EmployeeLookup loads the account behind a stream token.
type EmployeeLookup interface {
	GetByID(ctx context.Context, id string) (employee.Employee, error)
}

// StreamAuth authenticates EventSource connections, which cannot send headers,
// through the short-lived ?token= issued by /auth/sse-token. The session is
// rebuilt from the stored account so role changes apply to new streams.
func StreamAuth(jwtService jwt.Service, employees EmployeeLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			employeeID, err := jwtService.ValidateSSEToken(r.URL.Query().Get("token"))
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			e, err := employees.GetByID(r.Context(), employeeID)
			if err != nil || e.Status == employee.StatusInactive {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			session := user.Session{
				EmployeeID:   e.ID,
				EmployeeCode: e.EmployeeCode,
				Name:         e.FullName,
				Role:         e.Role,
				Permissions:  e.Permissions,
			}
			next.ServeHTTP(w, r.WithContext(user.WithSession(r.Context(), session)))
		})
	}
}
