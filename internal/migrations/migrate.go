package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const (
	sqliteDialect = "sqlite3"
	migrationsDir = "sql"
)

//go:embed sql/*.sql
var migrationFS embed.FS

// Up runs all pending embedded SQL migrations.
func Up(db *sql.DB, logger *zap.Logger) error {
	goose.SetBaseFS(migrationFS)
	goose.SetLogger(zap.NewStdLog(logger.Named("goose")))

	if err := goose.SetDialect(sqliteDialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}

	return nil
}

// Version returns the current schema version.
func Version(db *sql.DB) (int64, error) {
	goose.SetBaseFS(migrationFS)
	if err := goose.SetDialect(sqliteDialect); err != nil {
		return 0, fmt.Errorf("set goose dialect: %w", err)
	}
	v, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
