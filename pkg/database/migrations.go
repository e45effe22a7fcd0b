package database

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const migrationsDir = "migrations"

// SQLMigrator applies the embedded goose migrations over a database/sql
// handle opened with the pgx stdlib driver.
type SQLMigrator struct {
	db *sql.DB
}

func NewSQLMigrator(url string) (*SQLMigrator, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration connection: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set migration dialect: %w", err)
	}

	return &SQLMigrator{db: db}, nil
}

func (m *SQLMigrator) Up() error {
	if err := goose.Up(m.db, migrationsDir); err != nil {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func (m *SQLMigrator) Down() error {
	if err := goose.Down(m.db, migrationsDir); err != nil {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

func (m *SQLMigrator) Status() error {
	return goose.Status(m.db, migrationsDir)
}

func (m *SQLMigrator) Version() (int64, error) {
	return goose.GetDBVersion(m.db)
}

func (m *SQLMigrator) Close() error {
	return m.db.Close()
}
