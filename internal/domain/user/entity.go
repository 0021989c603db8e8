package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Full access including attendance settings
	RoleHR       Role = "hr"       // Manages employees, attendance and payroll
	RoleEmployee Role = "employee" // Scans the attendance code
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleEmployee:
		return true
	}
	return false
}

// Session is the authenticated actor of one request. It is built from the
// access token on every request and never cached across requests.
type Session struct {
	EmployeeID   string
	EmployeeCode string
	Name         string
	Role         Role
	Permissions  []Screen
	Token        string
	ExpiresAt    time.Time
}

// IsAdmin checks if the session belongs to an administrator
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// IsHR reports HR access. Admin implies HR.
func (s Session) IsHR() bool {
	return s.Role == RoleHR || s.Role == RoleAdmin
}

// Screens lists every screen the session may open, in menu order.
func (s Session) Screens() []Screen {
	var screens []Screen
	for _, screen := range AllScreens {
		if CanAccess(s, screen) {
			screens = append(screens, screen)
		}
	}
	return screens
}
