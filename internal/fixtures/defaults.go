package fixtures

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// ==========================================
// ATTENDANCE SETTINGS
// ==========================================

// DefaultAttendanceSettings is the office schedule a fresh install starts with
func DefaultAttendanceSettings() settings.AttendanceSettings {
	return settings.AttendanceSettings{
		CheckInTime:          "08:00",
		CheckOutTime:         "17:00",
		GracePeriodMinutes:   15,
		TokenRotationSeconds: settings.DefaultTokenRotationSeconds,
	}
}

// SeedSettings writes the defaults unless settings already exist. It reports
// whether anything was written.
func SeedSettings(ctx context.Context, repo settings.SettingsRepository) (bool, error) {
	_, err := repo.Get(ctx)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, settings.ErrSettingsNotFound) {
		return false, err
	}
	if _, err := repo.Upsert(ctx, DefaultAttendanceSettings()); err != nil {
		return false, fmt.Errorf("seed attendance settings: %w", err)
	}
	return true, nil
}

// ==========================================
// ACCOUNTS
// ==========================================

type Account struct {
	EmployeeCode string
	FullName     string
	Role         user.Role
	Password     string
}

// NewAccount builds an active full-time employee that can sign in with the
// given password. cost 0 means bcrypt.DefaultCost.
func NewAccount(a Account, now time.Time, cost int) (employee.Employee, error) {
	if !a.Role.IsValid() {
		return employee.Employee{}, user.ErrInvalidRole
	}
	if len(a.Password) < 6 {
		return employee.Employee{}, employee.ErrPasswordTooShort
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), cost)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("hash password: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return employee.Employee{}, err
	}

	return employee.Employee{
		ID:           id.String(),
		EmployeeCode: a.EmployeeCode,
		FullName:     a.FullName,
		PasswordHash: string(hash),
		Role:         a.Role,
		Permissions:  []user.Screen{},
		ContractType: employee.ContractFullTime,
		HireDate:     time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Status:       employee.StatusActive,
		BaseSalary:   decimal.Zero,
	}, nil
}
