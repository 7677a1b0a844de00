package db

import (
	"database/sql"

	"github.com/pressly/goose/v3"

	"github.com/Spok95/tutoring-admin/internal/db/migrations"
)

// Migrate — накатываем миграции из embed FS.
func Migrate(database *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(database, ".")
}
