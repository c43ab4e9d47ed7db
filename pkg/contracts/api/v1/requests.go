// Package api contains API contract definitions for the dsdgen service.
// Version v1 represents the current stable API version.
package api

import (
	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

// ExtractRequest is the query of the extraction endpoint.
type ExtractRequest struct {
	CorpCode string `json:"corp_code" query:"corp_code" validate:"required,max=64,corpcode"`
}

// ExportRequest is the query of the export endpoint.
type ExportRequest struct {
	CorpCode string `json:"corp_code" query:"corp_code" validate:"required,max=64,corpcode"`
	Format   string `json:"format" query:"format" validate:"omitempty,oneof=csv xlsx"`
}

// SourceQueryRequest is the query of the persisted source listing.
type SourceQueryRequest struct {
	CorpCode string `json:"corp_code" query:"corp_code" validate:"required,max=64,corpcode"`
	Year     *int   `json:"year,omitempty" query:"year" validate:"omitempty,min=1900,max=2999"`
}

// DsdSourceRequest is the query of the id-ordered source listing.
type DsdSourceRequest struct {
	CorpCode string `json:"corp_code" query:"corp_code" validate:"required,max=64,corpcode"`
}

// ExtractResponse is the envelope returned by the extraction endpoint.
type ExtractResponse struct {
	Success bool                     `json:"success"`
	Message string                   `json:"message"`
	Data    []domain.CanonicalRecord `json:"data"`
	Upsert  *domain.UpsertResult     `json:"upsert,omitempty"`
}

// SourceListResponse is the envelope returned by the source listing.
type SourceListResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    []domain.DsdSource `json:"data"`
	Count   int                `json:"count"`
}

// DsdSourceListResponse is the envelope returned by the id-ordered listing.
type DsdSourceListResponse struct {
	Success bool               `json:"success"`
	Data    []domain.DsdSource `json:"data"`
}
