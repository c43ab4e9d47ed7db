package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/junyeongccom/railway-dsdgen/internal/config"
	"github.com/junyeongccom/railway-dsdgen/internal/filings"
	"github.com/junyeongccom/railway-dsdgen/internal/infrastructure"
	"github.com/junyeongccom/railway-dsdgen/internal/services"
	"github.com/junyeongccom/railway-dsdgen/internal/storage"
	"github.com/junyeongccom/railway-dsdgen/internal/xbrl"
)

// Pipeline bundles the extraction and persistence components shared by
// the HTTP server and the batch CLI.
type Pipeline struct {
	Locator *filings.DirectoryLocator
	Parser  *xbrl.Parser
	Pool    *pgxpool.Pool            // nil when the database is disabled
	Engine  *storage.Engine          // nil when the database is disabled
	Sources *storage.SourceRepository // nil when the database is disabled
	XBRL    *services.XBRLService
	Source  *services.SourceService

	logger *slog.Logger
}

// NewPipeline wires the locator, parser and, when the database is enabled,
// the connection pool, schema migration and upsert engine.
func NewPipeline(ctx context.Context, cfg *config.Config, providers *infrastructure.OTelProviders, logger *slog.Logger) (*Pipeline, error) {
	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	p := &Pipeline{logger: logger}
	p.Locator = filings.NewDirectoryLocator(filings.Options{
		Root:          cfg.Filings.Root,
		InstanceExt:   cfg.Filings.InstanceExt,
		LabelMarker:   cfg.Filings.LabelMarker,
		AllowFallback: cfg.Filings.AllowFallback,
	}, logger)
	p.Parser = xbrl.NewParser(p.Locator, logger,
		xbrl.WithMetrics(metrics),
		xbrl.WithTracer(providers.Tracer))

	var upserter services.Upserter
	var reader services.SourceReader
	if cfg.Database.Enabled {
		if err := p.openStore(ctx, cfg.Database, metrics); err != nil {
			p.Close()
			return nil, err
		}
		upserter = p.Engine
		reader = p.Sources
	} else {
		logger.InfoContext(ctx, "database disabled, records will not be persisted")
	}

	p.XBRL = services.NewXBRLService(p.Parser, upserter, cfg.Batch.Concurrency, logger)
	p.Source = services.NewSourceService(reader, logger)
	return p, nil
}

func (p *Pipeline) openStore(ctx context.Context, cfg config.DatabaseConfig, metrics *infrastructure.PipelineMetrics) error {
	pool, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	p.Pool = pool

	if cfg.AutoMigrate {
		if err := storage.Migrate(ctx, pool, cfg.Table); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
		p.logger.InfoContext(ctx, "schema migrated", slog.String("table", cfg.Table))
	}

	p.Engine = storage.NewEngine(pool, storage.EngineOptions{
		Table:        cfg.Table,
		Constraint:   config.UniqueConstraintName,
		StrictSchema: cfg.StrictSchema,
	}, p.logger, metrics)
	if err := p.Engine.Prepare(ctx); err != nil {
		return fmt.Errorf("failed to prepare upsert engine: %w", err)
	}

	p.Sources = storage.NewSourceRepository(pool, cfg.Table, p.logger)
	return nil
}

// Pinger returns the database health check target, or nil without a database.
func (p *Pipeline) Pinger() services.Pinger {
	if p.Pool == nil {
		return nil
	}
	return p.Pool
}

// Close releases the connection pool
func (p *Pipeline) Close() {
	if p.Pool != nil {
		p.Pool.Close()
		p.Pool = nil
	}
}
