package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/junyeongccom/railway-dsdgen/internal/app"
	"github.com/junyeongccom/railway-dsdgen/internal/config"
	"github.com/junyeongccom/railway-dsdgen/internal/exporter"
	"github.com/junyeongccom/railway-dsdgen/internal/infrastructure"
	"github.com/junyeongccom/railway-dsdgen/internal/services"
	"github.com/junyeongccom/railway-dsdgen/pkg/contracts"
	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

// Exit codes
const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitNoRecords = 3
)

type options struct {
	corpCodes   []string
	root        string
	format      exporter.Format
	out         string
	store       bool
	migrate     bool
	concurrency int
	configPath  string
	list        bool
	append      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and returns the process exit code. Records go to
// stdout (or -out), logs go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		fmt.Fprintf(stderr, "xbrlparse: %v\n", err)
		return exitUsage
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "xbrlparse: %v\n", err)
		return exitFailure
	}

	// one trace id correlates every entity of the run
	ctx = infrastructure.EnsureTraceID(ctx)
	logger := infrastructure.NewLogger(cfg.Logging, stderr).With(slog.String("cmd", "xbrlparse"))
	logger.InfoContext(ctx, "xbrlparse starting",
		slog.String("version", contracts.GetVersionString()),
		slog.String("filings_root", cfg.Filings.Root),
		slog.Int("entities", len(opts.corpCodes)),
		slog.Bool("store", opts.store))

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		logger.ErrorContext(ctx, "telemetry initialization failed", slog.String("error", err.Error()))
		return exitFailure
	}
	defer func() { _ = providers.Shutdown(context.Background()) }()

	pipeline, err := app.NewPipeline(ctx, cfg, providers, logger)
	if err != nil {
		logger.ErrorContext(ctx, "pipeline initialization failed", slog.String("error", err.Error()))
		return exitFailure
	}
	defer pipeline.Close()

	if opts.list {
		names, err := pipeline.Locator.ListFilings()
		if err != nil {
			logger.ErrorContext(ctx, "listing filings failed", slog.String("error", err.Error()))
			return exitFailure
		}
		for _, name := range names {
			fmt.Fprintln(stdout, name)
		}
		return exitOK
	}

	outcomes := pipeline.XBRL.ExtractBatch(ctx, opts.corpCodes, opts.store)
	records := collect(ctx, logger, outcomes)

	if err := writeRecords(opts, records, stdout); err != nil {
		logger.ErrorContext(ctx, "writing records failed", slog.String("error", err.Error()))
		return exitFailure
	}

	if len(records) == 0 {
		logger.WarnContext(ctx, "no records extracted")
		return exitNoRecords
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("xbrlparse", flag.ContinueOnError)
	fs.SetOutput(stderr)

	corp := fs.String("corp", "", "comma separated corp codes to extract")
	root := fs.String("root", "", "filings root directory (overrides configuration)")
	format := fs.String("format", "json", "output format: json, csv or xlsx")
	out := fs.String("out", "", "output file (stdout when empty; required for xlsx)")
	store := fs.Bool("store", false, "upsert extracted records into Postgres")
	migrate := fs.Bool("migrate", false, "create the source table before storing")
	concurrency := fs.Int("concurrency", 0, "entities processed in parallel (configuration default when 0)")
	configPath := fs.String("config", "", "YAML configuration file")
	list := fs.Bool("list", false, "list the filing directories under the root and exit")
	appendOut := fs.Bool("append", false, "append csv rows to an existing -out file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts := &options{
		root:        strings.TrimSpace(*root),
		out:         strings.TrimSpace(*out),
		store:       *store,
		migrate:     *migrate,
		concurrency: *concurrency,
		configPath:  *configPath,
		list:        *list,
		append:      *appendOut,
	}

	for _, code := range strings.Split(*corp, ",") {
		if code = strings.TrimSpace(code); code != "" {
			opts.corpCodes = append(opts.corpCodes, code)
		}
	}
	if len(opts.corpCodes) == 0 && !opts.list {
		fs.Usage()
		return nil, fmt.Errorf("-corp is required")
	}

	f, err := exporter.ParseFormat(*format)
	if err != nil {
		return nil, err
	}
	if f == exporter.FormatXLSX && opts.out == "" {
		return nil, fmt.Errorf("-out is required for xlsx output")
	}
	opts.format = f

	if opts.append && (f != exporter.FormatCSV || opts.out == "") {
		return nil, fmt.Errorf("-append requires -format csv and -out")
	}

	if opts.migrate && !opts.store {
		return nil, fmt.Errorf("-migrate requires -store")
	}
	if opts.concurrency < 0 {
		return nil, fmt.Errorf("-concurrency must not be negative")
	}
	return opts, nil
}

// loadConfig applies the command line on top of file and environment settings
func loadConfig(opts *options) (*config.Config, error) {
	configFile := opts.configPath
	if configFile == "" {
		configFile = os.Getenv(config.EnvPrefix + "_CONFIG_FILE")
	}

	return config.LoadWith(configFile, func(cfg *config.Config) {
		if opts.root != "" {
			cfg.Filings.Root = opts.root
		}
		if opts.concurrency > 0 {
			cfg.Batch.Concurrency = opts.concurrency
		}
		// the database is only touched when storing
		cfg.Database.Enabled = opts.store
		cfg.Database.AutoMigrate = cfg.Database.AutoMigrate || opts.migrate
		cfg.Telemetry.MetricsEnabled = false
		if cfg.Telemetry.TraceExporter == "stdout" {
			// stdout carries the records
			cfg.Telemetry.TraceExporter = "none"
		}
	})
}

func collect(ctx context.Context, logger *slog.Logger, outcomes []services.ExtractOutcome) []domain.CanonicalRecord {
	var records []domain.CanonicalRecord
	for _, o := range outcomes {
		attrs := []any{
			slog.String("corp_code", o.CorpCode),
			slog.Int("records", len(o.Records)),
			slog.Duration("duration", o.Duration),
		}
		if o.Upsert != nil {
			attrs = append(attrs,
				slog.Bool("stored", o.Upsert.Success),
				slog.Int("inserted", o.Upsert.Inserted),
				slog.Int("updated", o.Upsert.Updated))
		}
		if o.Error != "" {
			logger.WarnContext(ctx, "entity failed", append(attrs, slog.String("error", o.Error))...)
		} else {
			logger.InfoContext(ctx, "entity extracted", attrs...)
		}
		records = append(records, o.Records...)
	}
	return records
}

func writeRecords(opts *options, records []domain.CanonicalRecord, stdout io.Writer) error {
	if opts.out == "" {
		return exporter.Encode(stdout, opts.format, records)
	}

	switch opts.format {
	case exporter.FormatXLSX:
		return exporter.WriteXLSX(opts.out, records)
	case exporter.FormatCSV:
		w := exporter.NewCSVWriter("")
		if opts.append {
			if _, err := os.Stat(opts.out); err == nil {
				return w.AppendRecords(opts.out, records)
			}
		}
		return w.WriteRecords(opts.out, records)
	default:
		f, err := os.Create(opts.out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", opts.out, err)
		}
		if err := exporter.EncodeJSON(f, records); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}
