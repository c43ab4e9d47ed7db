package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/junyeongccom/railway-dsdgen/internal/errors"
	"github.com/junyeongccom/railway-dsdgen/internal/shared/testutil"
	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

func parseResult(corpCode string, n int) *domain.ParseResult {
	records := make([]domain.CanonicalRecord, n)
	for i := range records {
		records[i] = domain.CanonicalRecord{CorpCode: corpCode, Caption: "유동자산", Value: "1", Year: "2023", Unit: "원"}
	}
	return &domain.ParseResult{
		Filing:  &domain.FilingContext{CorpCode: corpCode},
		Records: records,
	}
}

func TestExtract(t *testing.T) {
	parser := new(MockExtractor)
	parser.On("Parse", mock.Anything, "00126380").Return(parseResult("00126380", 2), nil)

	svc := NewXBRLService(parser, nil, 1, nil)
	records := svc.Extract(context.Background(), "00126380")

	assert.Len(t, records, 2)
	parser.AssertExpectations(t)
}

func TestExtractFailureIsEmpty(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	parser := new(MockExtractor)
	parser.On("Parse", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError("filing directory for missing"))

	svc := NewXBRLService(parser, nil, 1, logger)
	records := svc.Extract(context.Background(), "missing")

	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.True(t, logs.ContainsAttr("error_type", string(apperrors.ErrTypeNotFound)))
}

func TestExtractRejectsBlankCode(t *testing.T) {
	parser := new(MockExtractor)
	svc := NewXBRLService(parser, nil, 1, nil)

	outcome := svc.ExtractAndStore(context.Background(), "  ")
	assert.Empty(t, outcome.Records)
	assert.Equal(t, ErrInvalidInput.Error(), outcome.Error)
	parser.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
}

func TestExtractAndStore(t *testing.T) {
	result := parseResult("00126380", 3)
	parser := new(MockExtractor)
	parser.On("Parse", mock.Anything, "00126380").Return(result, nil)
	store := new(MockUpserter)
	store.On("Upsert", mock.Anything, result.Records).
		Return(&domain.UpsertResult{Success: true, Inserted: 3, TotalRecords: 3})

	svc := NewXBRLService(parser, store, 1, nil)
	outcome := svc.ExtractAndStore(context.Background(), "00126380")

	assert.Len(t, outcome.Records, 3)
	require.NotNil(t, outcome.Upsert)
	assert.Equal(t, 3, outcome.Upsert.Inserted)
	store.AssertExpectations(t)
}

func TestExtractAndStoreKeepsRecordsOnStoreFailure(t *testing.T) {
	result := parseResult("00126380", 1)
	parser := new(MockExtractor)
	parser.On("Parse", mock.Anything, "00126380").Return(result, nil)
	store := new(MockUpserter)
	store.On("Upsert", mock.Anything, mock.Anything).
		Return(&domain.UpsertResult{ErrorKind: domain.UpsertErrDatabase, Message: "database error"})

	svc := NewXBRLService(parser, store, 1, nil)
	outcome := svc.ExtractAndStore(context.Background(), "00126380")

	assert.Len(t, outcome.Records, 1)
	assert.False(t, outcome.Upsert.Success)
}

func TestExtractAndStoreSkipsStoreAfterDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	result := parseResult("00126380", 2)
	parser := new(MockExtractor)
	parser.On("Parse", mock.Anything, "00126380").
		Run(func(mock.Arguments) { cancel() }).
		Return(result, nil)
	store := new(MockUpserter)

	svc := NewXBRLService(parser, store, 1, nil)
	outcome := svc.ExtractAndStore(ctx, "00126380")

	assert.Len(t, outcome.Records, 2)
	assert.Nil(t, outcome.Upsert)
	assert.Equal(t, context.Canceled.Error(), outcome.Error)
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestExtractAndStoreSkipsEmpty(t *testing.T) {
	parser := new(MockExtractor)
	parser.On("Parse", mock.Anything, "00126380").Return(parseResult("00126380", 0), nil)
	store := new(MockUpserter)

	svc := NewXBRLService(parser, store, 1, nil)
	outcome := svc.ExtractAndStore(context.Background(), "00126380")

	assert.Empty(t, outcome.Records)
	assert.Nil(t, outcome.Upsert)
	store.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

type slowExtractor struct {
	active, peak atomic.Int32
}

func (s *slowExtractor) Parse(ctx context.Context, corpCode string) (*domain.ParseResult, error) {
	n := s.active.Add(1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	s.active.Add(-1)
	if corpCode == "bad" {
		return nil, errors.New("boom")
	}
	return parseResult(corpCode, 1), nil
}

func TestExtractBatch(t *testing.T) {
	parser := &slowExtractor{}
	svc := NewXBRLService(parser, nil, 2, nil)

	codes := []string{"a", "b", "bad", "c", "d"}
	outcomes := svc.ExtractBatch(context.Background(), codes, false)

	require.Len(t, outcomes, len(codes))
	for i, o := range outcomes {
		assert.Equal(t, codes[i], o.CorpCode, "order is preserved")
	}
	assert.Empty(t, outcomes[2].Records)
	assert.Equal(t, "boom", outcomes[2].Error)
	assert.Len(t, outcomes[4].Records, 1)
	assert.LessOrEqual(t, parser.peak.Load(), int32(2))
}

func TestExtractBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewXBRLService(&slowExtractor{}, nil, 1, nil)
	outcomes := svc.ExtractBatch(ctx, []string{"a", "b"}, false)

	for _, o := range outcomes {
		assert.Empty(t, o.Records)
		assert.NotEmpty(t, o.Error)
	}
}
