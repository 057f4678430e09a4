// Package db holds the SQL schema migrations, embedded so that release
// builds and the integration suite do not depend on the working directory.
package db

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsTable is the golang-migrate bookkeeping table
const MigrationsTable = "schema_migrations"

// NewMigrate returns a migrate instance over the embedded migrations
func NewMigrate(dbURL string) (*migrate.Migrate, error) {
	migrationsFS, err := fs.Sub(Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to get embedded migrations: %w", err)
	}

	d, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs driver: %w", err)
	}

	return migrate.NewWithSourceInstance("iofs", d, dbURL)
}

// MigrationFiles lists the embedded up migrations in order
func MigrationFiles() ([]string, error) {
	entries, err := fs.ReadDir(Migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if name := entry.Name(); len(name) > 7 && name[len(name)-7:] == ".up.sql" {
			files = append(files, name)
		}
	}
	return files, nil
}
