package exporter

import (
	"encoding/json"
	"io"

	"github.com/junyeongccom/railway-dsdgen/pkg/contracts/domain"
)

// Encode writes records to w in the given format
func Encode(w io.Writer, format Format, records []domain.CanonicalRecord) error {
	switch format {
	case FormatCSV:
		return EncodeCSV(w, records)
	case FormatXLSX:
		return EncodeXLSX(w, records)
	default:
		return EncodeJSON(w, records)
	}
}

// EncodeJSON writes records as an indented JSON array
func EncodeJSON(w io.Writer, records []domain.CanonicalRecord) error {
	if records == nil {
		records = []domain.CanonicalRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
