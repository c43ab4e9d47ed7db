package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/junyeongccom/railway-dsdgen/internal/config"
)

// Migrate creates the source table and its natural-key constraint when
// the table does not exist yet.
func Migrate(ctx context.Context, db DB, table string) error {
	constraint := pgx.Identifier{config.UniqueConstraintName}.Sanitize()
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id          BIGSERIAL PRIMARY KEY,
	corp_code   TEXT NOT NULL,
	source_name TEXT NOT NULL,
	value       BIGINT NOT NULL DEFAULT 0,
	year        INTEGER NOT NULL,
	unit        TEXT NOT NULL DEFAULT '',
	CONSTRAINT %s UNIQUE (corp_code, source_name, year)
)`, quoteTable(table), constraint)

	if _, err := db.Exec(ctx, ddl); err != nil {
		return wrapQuery("create table "+table, err)
	}
	return nil
}

// relationExists reports whether table resolves to a relation.
func relationExists(ctx context.Context, db DB, table string) (bool, error) {
	var exists bool
	if err := db.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// constraintExists reports whether the named constraint is defined on table.
func constraintExists(ctx context.Context, db DB, table, name string) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = $1 AND conrelid = to_regclass($2))`,
		name, table,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// addUniqueConstraint adds the natural-key constraint to table.
func addUniqueConstraint(ctx context.Context, db DB, table, name string) error {
	_, err := db.Exec(ctx, fmt.Sprintf(
		`ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (corp_code, source_name, year)`,
		quoteTable(table), pgx.Identifier{name}.Sanitize()))
	return err
}
