package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Parse(ctx context.Context, corpCode string) (*domain.ParseResult, error) {
	args := m.Called(ctx, corpCode)
	result, _ := args.Get(0).(*domain.ParseResult)
	return result, args.Error(1)
}

type MockUpserter struct {
	mock.Mock
}

func (m *MockUpserter) Upsert(ctx context.Context, records []domain.CanonicalRecord) *domain.UpsertResult {
	args := m.Called(ctx, records)
	return args.Get(0).(*domain.UpsertResult)
}

type MockSourceReader struct {
	mock.Mock
}

func (m *MockSourceReader) ListByCorpCode(ctx context.Context, corpCode string, year *int) ([]domain.DsdSource, error) {
	args := m.Called(ctx, corpCode, year)
	rows, _ := args.Get(0).([]domain.DsdSource)
	return rows, args.Error(1)
}

func (m *MockSourceReader) List(ctx context.Context, corpCode string) ([]domain.DsdSource, error) {
	args := m.Called(ctx, corpCode)
	rows, _ := args.Get(0).([]domain.DsdSource)
	return rows, args.Error(1)
}

type MockSourceCounter struct {
	mock.Mock
}

func (m *MockSourceCounter) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
