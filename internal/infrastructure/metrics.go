package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics are recorded by the HTTP instrumentation middleware
type HTTPMetrics struct {
	RequestsTotal   metric.Int64Counter
	RequestDuration metric.Float64Histogram
	ActiveRequests  metric.Int64UpDownCounter
}

// PipelineMetrics are recorded by the extraction pipeline and the upsert engine
type PipelineMetrics struct {
	ParsesTotal            metric.Int64Counter
	ParseDuration          metric.Float64Histogram
	FactsExtracted         metric.Int64Counter
	RecordsAssembled       metric.Int64Counter
	NormalizationFallbacks metric.Int64Counter
	UpsertRows             metric.Int64Counter
	UpsertFailures         metric.Int64Counter
	UpsertDuration         metric.Float64Histogram
}

// CreateHTTPMetrics creates the HTTP instruments
func CreateHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		RequestsTotal:   requestsTotal,
		RequestDuration: requestDuration,
		ActiveRequests:  activeRequests,
	}, nil
}

// CreatePipelineMetrics creates the extraction and persistence instruments
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	parsesTotal, err := meter.Int64Counter(
		"xbrl_parses_total",
		metric.WithDescription("Extraction runs by outcome"),
	)
	if err != nil {
		return nil, err
	}

	parseDuration, err := meter.Float64Histogram(
		"xbrl_parse_duration_seconds",
		metric.WithDescription("Extraction run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	factsExtracted, err := meter.Int64Counter(
		"xbrl_facts_extracted_total",
		metric.WithDescription("Allow-listed separate-statement facts extracted"),
	)
	if err != nil {
		return nil, err
	}

	recordsAssembled, err := meter.Int64Counter(
		"xbrl_records_assembled_total",
		metric.WithDescription("Canonical records produced"),
	)
	if err != nil {
		return nil, err
	}

	normalizationFallbacks, err := meter.Int64Counter(
		"xbrl_normalization_fallbacks_total",
		metric.WithDescription("Facts whose value or decimals could not be parsed"),
	)
	if err != nil {
		return nil, err
	}

	upsertRows, err := meter.Int64Counter(
		"dsd_source_upsert_rows_total",
		metric.WithDescription("Rows written by the upsert engine by outcome"),
	)
	if err != nil {
		return nil, err
	}

	upsertFailures, err := meter.Int64Counter(
		"dsd_source_upsert_failures_total",
		metric.WithDescription("Failed upsert batches by error kind"),
	)
	if err != nil {
		return nil, err
	}

	upsertDuration, err := meter.Float64Histogram(
		"dsd_source_upsert_duration_seconds",
		metric.WithDescription("Upsert batch duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		ParsesTotal:            parsesTotal,
		ParseDuration:          parseDuration,
		FactsExtracted:         factsExtracted,
		RecordsAssembled:       recordsAssembled,
		NormalizationFallbacks: normalizationFallbacks,
		UpsertRows:             upsertRows,
		UpsertFailures:         upsertFailures,
		UpsertDuration:         upsertDuration,
	}, nil
}

// RecordParse records one extraction run
func (m *PipelineMetrics) RecordParse(ctx context.Context, outcome string, duration time.Duration, facts, records, fallbacks int) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.ParsesTotal.Add(ctx, 1, attrs)
	m.ParseDuration.Record(ctx, duration.Seconds(), attrs)
	m.FactsExtracted.Add(ctx, int64(facts))
	m.RecordsAssembled.Add(ctx, int64(records))
	m.NormalizationFallbacks.Add(ctx, int64(fallbacks))
}

// RecordUpsert records one upsert batch. kind is empty on success.
func (m *PipelineMetrics) RecordUpsert(ctx context.Context, path string, inserted, updated int, kind string, duration time.Duration) {
	if m == nil {
		return
	}

	pathAttr := attribute.String("path", path)
	m.UpsertRows.Add(ctx, int64(inserted), metric.WithAttributes(pathAttr, attribute.String("outcome", "inserted")))
	m.UpsertRows.Add(ctx, int64(updated), metric.WithAttributes(pathAttr, attribute.String("outcome", "updated")))
	m.UpsertDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(pathAttr))
	if kind != "" {
		m.UpsertFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	}
}
