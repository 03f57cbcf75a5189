package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/smallbiznis/paymentslog/internal/paymentlog/domain"
	"gorm.io/gorm"
)

const (
	postgresMigrationsDir = "migrations/postgres"
	mysqlMigrationsDir    = "migrations/mysql"
)

//go:embed migrations/*/*.sql
var embeddedMigrations embed.FS

// Install creates the payments_log table when it does not exist yet.
// Running it against an existing table changes nothing.
func Install(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	switch conn.Dialector.Name() {
	case "postgres":
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	case "mysql":
		return installMySQL(ctx, conn)
	}

	migrator := conn.WithContext(ctx).Migrator()
	if migrator.HasTable(&domain.Event{}) {
		return nil
	}
	if err := migrator.CreateTable(&domain.Event{}); err != nil {
		return fmt.Errorf("create %s: %w", domain.TableName, err)
	}
	return nil
}

// installMySQL runs the embedded MySQL DDL. MySQL needs a fractional
// CURRENT_TIMESTAMP(3) default for the DATETIME(3) event_ts column, which the
// gorm migrator does not emit.
func installMySQL(ctx context.Context, conn *gorm.DB) error {
	entries, err := embeddedMigrations.ReadDir(mysqlMigrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		ddl, err := embeddedMigrations.ReadFile(path.Join(mysqlMigrationsDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if err := conn.WithContext(ctx).Exec(strings.TrimSpace(string(ddl))).Error; err != nil {
			return fmt.Errorf("apply %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// RunMigrations applies the embedded postgres migrations.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, postgresMigrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: "payments_log_schema_migrations"})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Closing the migrator would close the shared *sql.DB.

	return nil
}
