package postgres

import (
	"context"
	"database/sql"

	"github.com/diyageorge33/minipro/internal/auth/store/drivers/postgres/migrations"
	"github.com/pressly/goose/v3"
)

// gooseUp is replaced in tests.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// ApplyMigrations runs the embedded goose migrations.
func (s *Store) ApplyMigrations() error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUp(context.Background(), s.db, ".")
}
