package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/junyeongccom/railway-dsdgen/internal/config"
	apperrors "github.com/junyeongccom/railway-dsdgen/internal/errors"
	"github.com/junyeongccom/railway-dsdgen/internal/infrastructure"
	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

const pgUniqueViolation = "23505"

type schemaState int

const (
	schemaUnknown schemaState = iota
	schemaReady
	schemaMissingRelation
	schemaMissingConstraint
)

// EngineOptions configures an Engine
type EngineOptions struct {
	Table        string
	Constraint   string
	StrictSchema bool
}

// Engine merges canonical records into the source table so that exactly
// one row exists per (corp_code, source_name, year).
type Engine struct {
	db      DB
	opts    EngineOptions
	table   string
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics

	mu       sync.Mutex
	prepared bool
}

// NewEngine creates an upsert engine writing to opts.Table
func NewEngine(db DB, opts EngineOptions, logger *slog.Logger, metrics *infrastructure.PipelineMetrics) *Engine {
	if opts.Table == "" {
		opts.Table = config.DefaultTable
	}
	if opts.Constraint == "" {
		opts.Constraint = config.UniqueConstraintName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		db:      db,
		opts:    opts,
		table:   quoteTable(opts.Table),
		logger:  infrastructure.WithComponent(logger, "upsert_engine").With(slog.String("table", opts.Table)),
		metrics: metrics,
	}
}

// Prepare checks the target schema once, creating the natural-key
// constraint if needed. In strict mode a missing table or constraint is
// an error; otherwise the engine falls back to per-row existence checks.
func (e *Engine) Prepare(ctx context.Context) error {
	state, err := e.ensureConstraint(ctx)
	switch state {
	case schemaReady:
		e.mu.Lock()
		e.prepared = true
		e.mu.Unlock()
		e.logger.InfoContext(ctx, "schema verified", slog.String("constraint", e.opts.Constraint))
		return nil
	case schemaUnknown:
		return wrapQuery("inspect schema", err)
	}

	msg := fmt.Sprintf("table %s has no usable constraint %s", e.opts.Table, e.opts.Constraint)
	if state == schemaMissingRelation {
		msg = fmt.Sprintf("table %s does not exist", e.opts.Table)
	}
	if e.opts.StrictSchema {
		return apperrors.NewPersistenceError(msg, err)
	}
	e.logger.WarnContext(ctx, "schema incomplete, upserts will use existence checks",
		slog.String("reason", msg))
	return nil
}

// Upsert writes records and reports what happened. Failures are returned
// in the result with the counts reached so far; Upsert never returns an
// error.
func (e *Engine) Upsert(ctx context.Context, records []domain.CanonicalRecord) *domain.UpsertResult {
	start := time.Now()
	result := &domain.UpsertResult{Path: domain.UpsertPathNone}

	if len(records) == 0 {
		result.Success = true
		result.Message = "no records to upsert"
		return result
	}

	rows, skipped := ToSources(records)
	result.Skipped = skipped
	result.TotalRecords = len(rows)
	if skipped > 0 {
		e.logger.WarnContext(ctx, "records skipped before upsert",
			slog.Int("skipped", skipped),
			slog.Int("received", len(records)))
	}
	if len(rows) == 0 {
		e.finish(ctx, result, start, domain.UpsertErrInvalidInput, "no valid records", nil)
		return result
	}

	state, err := e.schemaState(ctx)
	switch {
	case state == schemaReady:
		result.Path = domain.UpsertPathConstraint
		err = e.upsertWithConstraint(ctx, rows, result)
	case state == schemaMissingRelation:
		e.finish(ctx, result, start, domain.UpsertErrMissingRelation,
			fmt.Sprintf("table %s does not exist", e.opts.Table), nil)
		return result
	case state == schemaMissingConstraint && !e.opts.StrictSchema:
		result.Path = domain.UpsertPathFallback
		err = e.upsertWithLookup(ctx, rows, result)
	case state == schemaMissingConstraint:
		e.finish(ctx, result, start, domain.UpsertErrDatabase,
			fmt.Sprintf("constraint %s is missing on %s", e.opts.Constraint, e.opts.Table), err)
		return result
	}

	if err != nil {
		kind, msg := classify(err)
		e.finish(ctx, result, start, kind, msg, err)
		return result
	}

	result.Success = true
	result.Message = fmt.Sprintf("%d inserted, %d updated", result.Inserted, result.Updated)
	e.finish(ctx, result, start, "", "", nil)
	return result
}

// schemaState returns the cached state after a successful Prepare and
// inspects the schema otherwise.
func (e *Engine) schemaState(ctx context.Context) (schemaState, error) {
	e.mu.Lock()
	prepared := e.prepared
	e.mu.Unlock()
	if prepared {
		return schemaReady, nil
	}
	return e.ensureConstraint(ctx)
}

func (e *Engine) ensureConstraint(ctx context.Context) (schemaState, error) {
	exists, err := relationExists(ctx, e.db, e.opts.Table)
	if err != nil {
		return schemaUnknown, err
	}
	if !exists {
		e.logger.WarnContext(ctx, "target table does not exist, create it before upserting")
		return schemaMissingRelation, nil
	}

	has, err := constraintExists(ctx, e.db, e.opts.Table, e.opts.Constraint)
	if err != nil {
		return schemaUnknown, err
	}
	if has {
		return schemaReady, nil
	}

	e.logger.InfoContext(ctx, "unique constraint missing, creating it",
		slog.String("constraint", e.opts.Constraint))
	if err := addUniqueConstraint(ctx, e.db, e.opts.Table, e.opts.Constraint); err != nil {
		e.logger.ErrorContext(ctx, "failed to create unique constraint",
			slog.String("constraint", e.opts.Constraint),
			slog.String("error", err.Error()))
		return schemaMissingConstraint, err
	}
	e.logger.InfoContext(ctx, "unique constraint created", slog.String("constraint", e.opts.Constraint))
	return schemaReady, nil
}

// upsertWithConstraint runs the whole batch in one transaction using
// INSERT ... ON CONFLICT. xmax = 0 on the returned row means a fresh insert.
func (e *Engine) upsertWithConstraint(ctx context.Context, rows []domain.DsdSource, result *domain.UpsertResult) error {
	tx, err := e.db.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				e.logger.WarnContext(ctx, "rollback failed", slog.String("error", rbErr.Error()))
			}
		}
	}()

	if result.BeforeCount, err = countRows(ctx, tx, e.table); err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (corp_code, source_name, value, year, unit)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (corp_code, source_name, year)
DO UPDATE SET value = EXCLUDED.value, unit = EXCLUDED.unit
RETURNING (xmax = 0) AS inserted`, e.table)

	for _, row := range rows {
		var inserted bool
		if err := tx.QueryRow(ctx, query, row.CorpCode, row.SourceName, row.Value, row.Year, row.Unit).Scan(&inserted); err != nil {
			return err
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	if result.AfterCount, err = countRows(ctx, tx, e.table); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	committed = true
	return nil
}

// upsertWithLookup checks each natural key and updates or inserts with
// separate statements. There is no enclosing transaction.
func (e *Engine) upsertWithLookup(ctx context.Context, rows []domain.DsdSource, result *domain.UpsertResult) error {
	var err error
	if result.BeforeCount, err = countRows(ctx, e.db, e.table); err != nil {
		return err
	}

	lookup := fmt.Sprintf(`SELECT id FROM %s WHERE corp_code = $1 AND source_name = $2 AND year = $3`, e.table)
	update := fmt.Sprintf(`UPDATE %s SET value = $1, unit = $2 WHERE id = $3`, e.table)
	insert := fmt.Sprintf(`INSERT INTO %s (corp_code, source_name, value, year, unit) VALUES ($1, $2, $3, $4, $5)`, e.table)

	for _, row := range rows {
		var id int64
		err := e.db.QueryRow(ctx, lookup, row.CorpCode, row.SourceName, row.Year).Scan(&id)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			if _, err := e.db.Exec(ctx, insert, row.CorpCode, row.SourceName, row.Value, row.Year, row.Unit); err != nil {
				return err
			}
			result.Inserted++
		case err != nil:
			return err
		default:
			if _, err := e.db.Exec(ctx, update, row.Value, row.Unit, id); err != nil {
				return err
			}
			result.Updated++
		}
	}

	result.AfterCount, err = countRows(ctx, e.db, e.table)
	return err
}

func (e *Engine) finish(ctx context.Context, result *domain.UpsertResult, start time.Time, kind domain.UpsertErrorKind, msg string, cause error) {
	duration := time.Since(start)
	e.metrics.RecordUpsert(ctx, string(result.Path), result.Inserted, result.Updated, string(kind), duration)

	if kind == "" {
		e.logger.InfoContext(ctx, "upsert completed",
			slog.String("path", string(result.Path)),
			slog.Int("inserted", result.Inserted),
			slog.Int("updated", result.Updated),
			slog.Int64("before_count", result.BeforeCount),
			slog.Int64("after_count", result.AfterCount),
			slog.Duration("duration", duration))
		return
	}

	result.Success = false
	result.ErrorKind = kind
	result.Message = msg
	attrs := []any{
		slog.String("error_kind", string(kind)),
		slog.String("path", string(result.Path)),
		slog.Int("inserted", result.Inserted),
		slog.Int("updated", result.Updated),
	}
	if cause != nil {
		attrs = append(attrs, slog.String("error", cause.Error()))
	}
	e.logger.ErrorContext(ctx, "upsert failed: "+msg, attrs...)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func countRows(ctx context.Context, q queryRower, table string) (int64, error) {
	var n int64
	err := q.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&n)
	return n, err
}

// classify maps a database error to an error kind and message.
func classify(err error) (domain.UpsertErrorKind, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUniqueViolation {
			return domain.UpsertErrUniqueViolation, "uniqueness violation: " + pgErr.Message
		}
		return domain.UpsertErrDatabase, "database error: " + pgErr.Message
	}
	return domain.UpsertErrUnexpected, "unexpected error: " + err.Error()
}

// ToSources converts canonical records to table rows. Grouping separators
// are removed from the value, which is truncated to an integer; an empty
// value is 0. Records with an unreadable value, or missing corp code,
// caption or a numeric year, are dropped and counted.
func ToSources(records []domain.CanonicalRecord) ([]domain.DsdSource, int) {
	rows := make([]domain.DsdSource, 0, len(records))
	skipped := 0
	for _, r := range records {
		value, ok := parseStoredValue(r.Value)
		if !ok {
			skipped++
			continue
		}
		year := parseYear(r.Year)
		if r.CorpCode == "" || r.Caption == "" || year == 0 {
			skipped++
			continue
		}
		rows = append(rows, domain.DsdSource{
			CorpCode:   r.CorpCode,
			SourceName: r.Caption,
			Value:      value,
			Year:       year,
			Unit:       r.Unit,
		})
	}
	return rows, skipped
}

func parseStoredValue(s string) (int64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, true
	}
	if strings.Contains(s, "/") {
		return 0, false
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, false
	}
	n := new(big.Int).Quo(r.Num(), r.Denom())
	if !n.IsInt64() {
		return 0, false
	}
	return n.Int64(), true
}

func parseYear(s string) int {
	if s == "" {
		return 0
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return year
}
