package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const sqliteDialect = "sqlite3"

func setup(log *zap.Logger) error {
	if err := goose.SetDialect(sqliteDialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if log != nil {
		goose.SetLogger(zap.NewStdLog(log.With(zap.String("module", "migrations"))))
	} else {
		goose.SetLogger(goose.NopLogger())
	}
	return nil
}

// Up runs all pending SQL migrations found in migrationsDir. A nil log
// silences goose.
func Up(db *sql.DB, migrationsDir string, log *zap.Logger) error {
	if err := setup(log); err != nil {
		return err
	}

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}

	return nil
}

// Version returns the schema version currently applied to db.
func Version(db *sql.DB) (int64, error) {
	if err := goose.SetDialect(sqliteDialect); err != nil {
		return 0, fmt.Errorf("set goose dialect: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
