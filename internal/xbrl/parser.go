package xbrl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/junyeongccom/railway-dsdgen/internal/errors"
	"github.com/junyeongccom/railway-dsdgen/internal/filings"
	"github.com/junyeongccom/railway-dsdgen/internal/infrastructure"
	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

// Parser runs the extraction pipeline for one entity: locate the filing,
// load the instance and label documents, extract the allow-listed facts
// and assemble canonical records.
type Parser struct {
	locator filings.Locator
	allow   []QName
	logger  *slog.Logger
	metrics *infrastructure.PipelineMetrics
	tracer  trace.Tracer
}

// ParserOption customizes a Parser
type ParserOption func(*Parser)

// WithMetrics records pipeline metrics on m
func WithMetrics(m *infrastructure.PipelineMetrics) ParserOption {
	return func(p *Parser) { p.metrics = m }
}

// WithTracer sets the tracer used for pipeline spans
func WithTracer(t trace.Tracer) ParserOption {
	return func(p *Parser) { p.tracer = t }
}

// WithAllowList replaces the default balance sheet allow-list
func WithAllowList(tags []QName) ParserOption {
	return func(p *Parser) { p.allow = tags }
}

// NewParser creates a parser that resolves filings through locator
func NewParser(locator filings.Locator, logger *slog.Logger, opts ...ParserOption) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Parser{
		locator: locator,
		allow:   AllowedTags(),
		logger:  infrastructure.WithComponent(logger, "xbrl_parser"),
		tracer:  otel.Tracer(infrastructure.InstrumentationName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts the separate-statement balance sheet of corpCode.
// A missing filing or unreadable instance document is an error; a missing
// or broken label linkbase only degrades captions.
func (p *Parser) Parse(ctx context.Context, corpCode string) (*domain.ParseResult, error) {
	start := time.Now()
	ctx, span := p.tracer.Start(ctx, "xbrl.parse",
		trace.WithAttributes(attribute.String("corp_code", corpCode)))
	defer span.End()

	logger := p.logger.With(slog.String("corp_code", corpCode))

	filing, err := p.locator.Locate(ctx, corpCode)
	if err != nil {
		p.fail(ctx, start, err)
		return nil, err
	}
	logger.InfoContext(ctx, "filing located",
		slog.String("directory", filing.Directory),
		slog.String("instance", filing.InstancePath),
		slog.Bool("has_labels", filing.HasLabels()),
		slog.Bool("fallback", filing.Fallback))

	instance, err := LoadDocument(filing.InstancePath)
	if err != nil {
		if apperrors.TypeOf(err) == "" {
			err = apperrors.NewMalformedInputError("failed to read instance document", err)
		}
		p.fail(ctx, start, err)
		return nil, err
	}

	var labels domain.LabelMap
	if filing.HasLabels() {
		labels = LoadLabels(filing.LabelPath, logger)
	} else {
		logger.WarnContext(ctx, "no label linkbase found, captions fall back to tag names")
		labels = domain.LabelMap{}
	}

	facts := ExtractFacts(instance, p.allow)
	if len(facts) == 0 {
		logger.WarnContext(ctx, "no allow-listed separate-statement facts found",
			slog.Int("allow_list", len(p.allow)))
	} else {
		logger.InfoContext(ctx, "facts extracted", slog.Int("facts", len(facts)))
	}

	records, recovered := assemble(corpCode, facts, labels)
	for _, f := range recovered {
		nerr := apperrors.NewNormalizationError(
			fmt.Sprintf("%s=%q decimals=%q", f.QualifiedName, f.Value, f.Decimals), nil)
		infrastructure.WithError(logger, nerr).DebugContext(ctx, "normalization fell back to defaults",
			slog.String("error_type", string(apperrors.TypeOf(nerr))))
	}

	duration := time.Since(start)
	p.metrics.RecordParse(ctx, "success", duration, len(facts), len(records), len(recovered))
	span.SetAttributes(
		attribute.Int("xbrl.facts", len(facts)),
		attribute.Int("xbrl.labels", len(labels)),
	)
	logger.InfoContext(ctx, "records assembled",
		slog.Int("records", len(records)),
		slog.Int("labels", len(labels)),
		slog.Duration("duration", duration))

	return &domain.ParseResult{
		Filing:     filing,
		Records:    records,
		FactCount:  len(facts),
		LabelCount: len(labels),
	}, nil
}

func (p *Parser) fail(ctx context.Context, start time.Time, err error) {
	infrastructure.RecordError(ctx, err)
	p.metrics.RecordParse(ctx, "failure", time.Since(start), 0, 0, 0)
	p.logger.ErrorContext(ctx, "xbrl parse failed",
		slog.String("error_type", string(apperrors.TypeOf(err))),
		slog.String("error", err.Error()))
}
