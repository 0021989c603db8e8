package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanAccess(t *testing.T) {
	admin := Session{EmployeeID: "a", Role: RoleAdmin}
	hr := Session{EmployeeID: "h", Role: RoleHR}
	employee := Session{EmployeeID: "e", Role: RoleEmployee}
	granted := Session{EmployeeID: "g", Role: RoleEmployee, Permissions: []Screen{ScreenAttendance, ScreenSettings}}

	for _, screen := range AllScreens {
		assert.True(t, CanAccess(admin, screen), "admin should open %s", screen)
	}

	assert.True(t, CanAccess(hr, ScreenPayroll))
	assert.False(t, CanAccess(hr, ScreenSettings))

	assert.True(t, CanAccess(employee, ScreenScan))
	assert.False(t, CanAccess(employee, ScreenEmployees))

	assert.True(t, CanAccess(granted, ScreenAttendance))
	assert.False(t, CanAccess(granted, ScreenSettings), "settings cannot be granted to non-admins")
	assert.False(t, CanAccess(Session{Role: "ghost"}, ScreenScan))
}

func TestSessionHelpers(t *testing.T) {
	assert.True(t, Session{Role: RoleAdmin}.IsHR())
	assert.True(t, Session{Role: RoleHR}.IsHR())
	assert.False(t, Session{Role: RoleHR}.IsAdmin())
	assert.False(t, Role("owner").IsValid())
}

func TestParseScreens(t *testing.T) {
	screens := ParseScreens([]string{"dashboard", "bogus", "scan"})
	assert.Equal(t, []Screen{ScreenDashboard, ScreenScan}, screens)
	assert.Equal(t, []string{"dashboard", "scan"}, ScreenStrings(screens))
}

func TestSessionContext(t *testing.T) {
	_, err := SessionFromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	ctx := WithSession(context.Background(), Session{EmployeeID: "emp-1", Role: RoleHR})
	session, err := SessionFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "emp-1", session.EmployeeID)
}

func TestSessionScreens(t *testing.T) {
	employee := Session{Role: RoleEmployee, Permissions: []Screen{ScreenPayroll}}
	assert.Equal(t, []Screen{ScreenScan, ScreenPayroll}, employee.Screens())
	assert.Equal(t, AllScreens, Session{Role: RoleAdmin}.Screens())
}
