package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/junyeongccom/railway-dsdgen/internal/errors"
	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

// Extractor runs the extraction pipeline for one entity
type Extractor interface {
	Parse(ctx context.Context, corpCode string) (*domain.ParseResult, error)
}

// Upserter persists canonical records
type Upserter interface {
	Upsert(ctx context.Context, records []domain.CanonicalRecord) *domain.UpsertResult
}

// ExtractOutcome is the result of extracting (and optionally storing) one entity
type ExtractOutcome struct {
	CorpCode string                   `json:"corp_code"`
	Records  []domain.CanonicalRecord `json:"records"`
	Filing   *domain.FilingContext    `json:"filing,omitempty"`
	Upsert   *domain.UpsertResult     `json:"upsert,omitempty"`
	Error    string                   `json:"error,omitempty"`
	Duration time.Duration            `json:"duration"`
}

// XBRLService coordinates extraction and persistence. Lower-level failures
// are logged and surface as an empty record set.
type XBRLService struct {
	parser      Extractor
	store       Upserter
	concurrency int
	logger      *slog.Logger
}

// NewXBRLService creates the service. store may be nil to disable persistence.
func NewXBRLService(parser Extractor, store Upserter, concurrency int, logger *slog.Logger) *XBRLService {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &XBRLService{
		parser:      parser,
		store:       store,
		concurrency: concurrency,
		logger:      logger.With(slog.String("service", "xbrl")),
	}
}

// StoreEnabled reports whether extracted records are persisted
func (s *XBRLService) StoreEnabled() bool {
	return s.store != nil
}

// Extract returns the canonical records of corpCode, or an empty slice
// when anything in the pipeline fails.
func (s *XBRLService) Extract(ctx context.Context, corpCode string) []domain.CanonicalRecord {
	return s.run(ctx, corpCode, false).Records
}

// ExtractAndStore extracts corpCode and, when records were found and a
// store is configured, upserts them. The upsert outcome never affects the
// returned records.
func (s *XBRLService) ExtractAndStore(ctx context.Context, corpCode string) ExtractOutcome {
	return s.run(ctx, corpCode, true)
}

// ExtractBatch processes several entities concurrently, bounded by the
// configured concurrency. Outcomes keep the order of corpCodes.
func (s *XBRLService) ExtractBatch(ctx context.Context, corpCodes []string, store bool) []ExtractOutcome {
	outcomes := make([]ExtractOutcome, len(corpCodes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, code := range corpCodes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = ExtractOutcome{CorpCode: code, Records: []domain.CanonicalRecord{}, Error: err.Error()}
				return nil
			}
			outcomes[i] = s.run(gctx, code, store)
			return nil
		})
	}
	_ = g.Wait()

	s.logger.InfoContext(ctx, "batch extraction finished",
		slog.Int("entities", len(corpCodes)),
		slog.Int("concurrency", s.concurrency))
	return outcomes
}

func (s *XBRLService) run(ctx context.Context, corpCode string, store bool) ExtractOutcome {
	start := time.Now()
	corpCode = strings.TrimSpace(corpCode)
	outcome := ExtractOutcome{CorpCode: corpCode, Records: []domain.CanonicalRecord{}}
	logger := s.logger.With(slog.String("corp_code", corpCode))

	if corpCode == "" {
		outcome.Error = ErrInvalidInput.Error()
		return outcome
	}

	logger.InfoContext(ctx, "extraction started")
	result, err := s.parser.Parse(ctx, corpCode)
	if err != nil {
		logger.ErrorContext(ctx, "extraction failed",
			slog.String("error_type", string(apperrors.TypeOf(err))),
			slog.String("error", err.Error()))
		outcome.Error = err.Error()
		outcome.Duration = time.Since(start)
		return outcome
	}

	outcome.Filing = result.Filing
	if len(result.Records) > 0 {
		outcome.Records = result.Records
	}
	logger.InfoContext(ctx, "extraction finished", slog.Int("records", len(outcome.Records)))

	if store && s.store != nil && len(outcome.Records) > 0 {
		// nothing is written once the caller has given up
		if err := ctx.Err(); err != nil {
			logger.WarnContext(ctx, "storing skipped", slog.String("error", err.Error()))
			outcome.Error = err.Error()
			outcome.Duration = time.Since(start)
			return outcome
		}
		upsert := s.store.Upsert(ctx, outcome.Records)
		outcome.Upsert = upsert
		if upsert.Success {
			logger.InfoContext(ctx, "records stored",
				slog.Int("inserted", upsert.Inserted),
				slog.Int("updated", upsert.Updated))
		} else {
			logger.WarnContext(ctx, "storing records failed",
				slog.String("error_kind", string(upsert.ErrorKind)),
				slog.String("message", upsert.Message))
		}
	}

	outcome.Duration = time.Since(start)
	return outcome
}
