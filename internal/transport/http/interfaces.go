package http

import (
	"context"
	"net/http"

	"github.com/junyeongccom/railway-dsdgen/internal/services"
	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

// XBRLServiceInterface is the extraction surface used by XBRLHandler
type XBRLServiceInterface interface {
	Extract(ctx context.Context, corpCode string) []domain.CanonicalRecord
	ExtractAndStore(ctx context.Context, corpCode string) services.ExtractOutcome
}

// SourceServiceInterface reads persisted source rows
type SourceServiceInterface interface {
	List(ctx context.Context, corpCode string, year *int) ([]domain.DsdSource, error)
	ListInOrder(ctx context.Context, corpCode string) ([]domain.DsdSource, error)
}

// RequestBinder binds and validates query parameters into request contracts
type RequestBinder interface {
	BindQuery(r *http.Request, dst interface{}) error
}
