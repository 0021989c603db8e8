package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	employee.EmployeeRepository
	auth.RevocationRepository
	jwt.Service
}

func NewAuthService(employeeRepository employee.EmployeeRepository, revocationRepository auth.RevocationRepository, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		EmployeeRepository:   employeeRepository,
		RevocationRepository: revocationRepository,
		Service:              jwtService,
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	emp, err := a.EmployeeRepository.GetByEmployeeCode(ctx, req.EmployeeCode)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get employee by code: %w", err)
	}

	// Cek password
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	if emp.Status == employee.StatusInactive {
		return auth.TokenResponse{}, auth.ErrEmployeeInactive
	}

	if err := a.bindDevice(ctx, &emp, req.DeviceID); err != nil {
		return auth.TokenResponse{}, err
	}

	session := user.Session{
		EmployeeID:   emp.ID,
		EmployeeCode: emp.EmployeeCode,
		Name:         emp.FullName,
		Role:         emp.Role,
		Permissions:  emp.Permissions,
	}

	accessToken, expiresAt, err := a.Service.GenerateAccessToken(session)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	slog.Info("employee logged in", "employee_id", emp.ID, "role", emp.Role)
	return auth.TokenResponse{
		AccessToken:          accessToken,
		AccessTokenExpiresIn: expiresAt,
		Profile:              profileOf(session),
	}, nil
}

// bindDevice enforces device verification. The first device an employee signs
// in with becomes theirs until HR resets it.
func (a *AuthServiceImpl) bindDevice(ctx context.Context, emp *employee.Employee, deviceID string) error {
	if !emp.DeviceVerificationEnabled {
		return nil
	}
	if deviceID == "" {
		return auth.ErrDeviceMismatch
	}
	if emp.DeviceID != nil && *emp.DeviceID != "" {
		if !emp.DeviceMatches(deviceID) {
			return auth.ErrDeviceMismatch
		}
		return nil
	}

	if err := a.EmployeeRepository.BindDevice(ctx, emp.ID, deviceID); err != nil {
		if errors.Is(err, employee.ErrDeviceAlreadyBound) {
			return auth.ErrDeviceMismatch
		}
		return fmt.Errorf("failed to bind device: %w", err)
	}
	emp.DeviceID = &deviceID
	slog.Info("device bound on login", "employee_id", emp.ID)
	return nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context) error {
	session, err := user.SessionFromContext(ctx)
	if err != nil {
		return err
	}
	if session.Token == "" {
		return auth.ErrInvalidToken
	}

	expiresAt := session.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(24 * time.Hour)
	}

	if err := a.RevocationRepository.Revoke(ctx, jwt.HashToken(session.Token), expiresAt); err != nil {
		return fmt.Errorf("failed to revoke access token: %w", err)
	}
	a.Service.RevokeToken(session.Token, expiresAt)
	return nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (auth.ProfileInfo, error) {
	session, err := user.SessionFromContext(ctx)
	if err != nil {
		return auth.ProfileInfo{}, err
	}

	// Reload so role or permission changes show up without a new login.
	emp, err := a.EmployeeRepository.GetByID(ctx, session.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return auth.ProfileInfo{}, auth.ErrInvalidToken
		}
		return auth.ProfileInfo{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return profileOf(user.Session{
		EmployeeID:   emp.ID,
		EmployeeCode: emp.EmployeeCode,
		Name:         emp.FullName,
		Role:         emp.Role,
		Permissions:  emp.Permissions,
	}), nil
}

// IssueSSEToken implements auth.AuthService.
func (a *AuthServiceImpl) IssueSSEToken(ctx context.Context) (auth.SSETokenResponse, error) {
	session, err := user.SessionFromContext(ctx)
	if err != nil {
		return auth.SSETokenResponse{}, err
	}
	token, expiresIn, err := a.Service.GenerateSSEToken(session.EmployeeID)
	if err != nil {
		return auth.SSETokenResponse{}, fmt.Errorf("failed to create sse token: %w", err)
	}
	return auth.SSETokenResponse{Token: token, ExpiresIn: int64(expiresIn)}, nil
}

// RestoreRevocations loads persisted revocations into the token service. Call once at startup.
func RestoreRevocations(ctx context.Context, repo auth.RevocationRepository, jwtService jwt.Service) error {
	active, err := repo.ListActive(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to load revoked tokens: %w", err)
	}
	jwtService.RestoreRevoked(active)
	slog.Info("revoked access tokens restored", "count", len(active))
	return nil
}

func profileOf(session user.Session) auth.ProfileInfo {
	return auth.ProfileInfo{
		EmployeeID:   session.EmployeeID,
		EmployeeCode: session.EmployeeCode,
		Name:         session.Name,
		Role:         string(session.Role),
		Screens:      user.ScreenStrings(session.Screens()),
	}
}
