package services

import (
	"context"
	"log/slog"

	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

// SourceReader reads persisted source rows
type SourceReader interface {
	ListByCorpCode(ctx context.Context, corpCode string, year *int) ([]domain.DsdSource, error)
	List(ctx context.Context, corpCode string) ([]domain.DsdSource, error)
}

// SourceService serves stored source figures
type SourceService struct {
	repo   SourceReader
	logger *slog.Logger
}

// NewSourceService creates the service. repo may be nil when no database is configured.
func NewSourceService(repo SourceReader, logger *slog.Logger) *SourceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SourceService{repo: repo, logger: logger.With(slog.String("service", "sources"))}
}

// List returns the rows stored for corpCode, optionally limited to one year
func (s *SourceService) List(ctx context.Context, corpCode string, year *int) ([]domain.DsdSource, error) {
	return s.read(ctx, corpCode, func() ([]domain.DsdSource, error) {
		return s.repo.ListByCorpCode(ctx, corpCode, year)
	})
}

// ListInOrder returns the rows stored for corpCode in insertion order
func (s *SourceService) ListInOrder(ctx context.Context, corpCode string) ([]domain.DsdSource, error) {
	return s.read(ctx, corpCode, func() ([]domain.DsdSource, error) {
		return s.repo.List(ctx, corpCode)
	})
}

func (s *SourceService) read(ctx context.Context, corpCode string, fetch func() ([]domain.DsdSource, error)) ([]domain.DsdSource, error) {
	if s.repo == nil {
		return nil, ErrStoreDisabled
	}
	if corpCode == "" {
		return nil, ErrInvalidInput
	}

	rows, err := fetch()
	if err != nil {
		s.logger.ErrorContext(ctx, "listing sources failed",
			slog.String("corp_code", corpCode),
			slog.String("error", err.Error()))
		return nil, err
	}
	if rows == nil {
		rows = []domain.DsdSource{}
	}
	return rows, nil
}
