// Command adduser creates a dashboard account and, on a fresh database, the
// default attendance settings.
//
//	go run ./cmd/adduser -code ADM001 -name "Site Admin" -role admin
//
// The password is read from -password or ADDUSER_PASSWORD.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cmlabs-hris/hrpulse-backend-go/internal/config"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/fixtures"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrpulse-backend-go/internal/repository/postgresql"
)

func main() {
	code := flag.String("code", "", "Employee code used to sign in")
	name := flag.String("name", "", "Full name")
	role := flag.String("role", string(user.RoleAdmin), "Role: admin|hr|employee")
	password := flag.String("password", os.Getenv("ADDUSER_PASSWORD"), "Password (min 6 characters)")
	seedSettings := flag.Bool("seed-settings", true, "Write default attendance settings when none exist")
	flag.Parse()

	if *code == "" || *name == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*code, *name, user.Role(*role), *password, *seedSettings); err != nil {
		slog.Error("adduser failed", "error", err)
		os.Exit(1)
	}
}

func run(code, name string, role user.Role, password string, seedSettings bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: 2, MinConns: 1})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	account, err := fixtures.NewAccount(fixtures.Account{
		EmployeeCode: code,
		FullName:     name,
		Role:         role,
		Password:     password,
	}, time.Now(), 0)
	if err != nil {
		return err
	}

	err = postgresql.WithTransaction(ctx, db, func(txCtx context.Context) error {
		if _, err := postgresql.NewEmployeeRepository(db).Create(txCtx, account); err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		if !seedSettings {
			return nil
		}
		seeded, err := fixtures.SeedSettings(txCtx, postgresql.NewSettingsRepository(db))
		if err != nil {
			return err
		}
		if seeded {
			slog.Info("default attendance settings written", "check_in", fixtures.DefaultAttendanceSettings().CheckInTime)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("account created", "id", account.ID, "employee_code", account.EmployeeCode, "role", account.Role)
	return nil
}
