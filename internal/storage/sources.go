package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/junyeongccom/railway-dsdgen/internal/config"
	"github.com/junyeongccom/railway-dsdgen/internal/infrastructure"
	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

const sourceColumns = `id, corp_code, source_name, value, year, unit`

// SourceRepository reads persisted source rows.
type SourceRepository struct {
	db     DB
	table  string
	logger *slog.Logger
}

// NewSourceRepository creates a repository over table
func NewSourceRepository(db DB, table string, logger *slog.Logger) *SourceRepository {
	if table == "" {
		table = config.DefaultTable
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceRepository{
		db:     db,
		table:  quoteTable(table),
		logger: infrastructure.WithComponent(logger, "source_repository"),
	}
}

// ListByCorpCode returns the rows of one entity ordered by source name and
// year. A non-nil year restricts the result to that fiscal year.
func (r *SourceRepository) ListByCorpCode(ctx context.Context, corpCode string, year *int) ([]domain.DsdSource, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE corp_code = $1`, sourceColumns, r.table)
	args := []any{corpCode}
	if year != nil {
		query += " AND year = $2"
		args = append(args, *year)
	}
	query += " ORDER BY source_name, year"

	return r.query(ctx, "list sources", query, args...)
}

// List returns the rows of corpCode in insertion (id) order.
func (r *SourceRepository) List(ctx context.Context, corpCode string) ([]domain.DsdSource, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE corp_code = $1 ORDER BY id`, sourceColumns, r.table)
	return r.query(ctx, "list sources by id", query, corpCode)
}

// Count returns the number of stored rows. Readiness uses it to prove the
// relation is reachable, not just the server.
func (r *SourceRepository) Count(ctx context.Context) (int64, error) {
	n, err := countRows(ctx, r.db, r.table)
	if err != nil {
		return 0, wrapQuery("count sources", err)
	}
	return n, nil
}

func (r *SourceRepository) query(ctx context.Context, what, query string, args ...any) ([]domain.DsdSource, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, what+" failed", slog.String("error", err.Error()))
		return nil, wrapQuery(what, err)
	}

	sources, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.DsdSource])
	if err != nil {
		return nil, wrapQuery(what, err)
	}
	return sources, nil
}
