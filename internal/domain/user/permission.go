package user

// Screen identifies one area of the dashboard an actor may open.
type Screen string

const (
	ScreenDashboard    Screen = "dashboard"
	ScreenEmployees    Screen = "employees"
	ScreenAttendance   Screen = "attendance"
	ScreenAttendanceQR Screen = "attendance_qr"
	ScreenScan         Screen = "scan"
	ScreenPayroll      Screen = "payroll"
	ScreenSettings     Screen = "settings"
)

var AllScreens = []Screen{
	ScreenDashboard,
	ScreenEmployees,
	ScreenAttendance,
	ScreenAttendanceQR,
	ScreenScan,
	ScreenPayroll,
	ScreenSettings,
}

// RoleScreens maps roles to the screens they can always open
var RoleScreens = map[Role][]Screen{
	RoleAdmin: AllScreens,
	RoleHR: {
		ScreenDashboard,
		ScreenEmployees,
		ScreenAttendance,
		ScreenAttendanceQR,
		ScreenScan,
		ScreenPayroll,
	},
	RoleEmployee: {
		ScreenScan,
	},
}

func (s Screen) IsValid() bool {
	for _, screen := range AllScreens {
		if screen == s {
			return true
		}
	}
	return false
}

// CanAccess is the single capability check for every screen. A session opens
// a screen when its role grants it or when the screen was granted explicitly.
func CanAccess(session Session, screen Screen) bool {
	for _, s := range RoleScreens[session.Role] {
		if s == screen {
			return true
		}
	}
	// Settings stay admin-only even when granted explicitly.
	if screen == ScreenSettings {
		return false
	}
	for _, s := range session.Permissions {
		if s == screen {
			return true
		}
	}
	return false
}

// ParseScreens converts raw claim or column values into screens, dropping unknown keys.
func ParseScreens(values []string) []Screen {
	screens := make([]Screen, 0, len(values))
	for _, v := range values {
		if s := Screen(v); s.IsValid() {
			screens = append(screens, s)
		}
	}
	return screens
}

// ScreenStrings is the inverse of ParseScreens.
func ScreenStrings(screens []Screen) []string {
	out := make([]string, 0, len(screens))
	for _, s := range screens {
		out = append(out, string(s))
	}
	return out
}
