package config

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/chrissnell/roofsolar/pkg/migrate"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations is the SQLite configuration schema
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// MigrateSQLite brings a configuration database up to the latest schema
func MigrateSQLite(db *sql.DB, logf migrate.Logf) error {
	migrator := migrate.NewMigrator(db, migrate.NewFSProvider(Migrations(), "schema_migrations"), logf)
	if err := migrator.MigrateUp(); err != nil {
		return fmt.Errorf("migrating configuration schema: %w", err)
	}
	return nil
}
