package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	cause := stderrors.New("unexpected EOF")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantText string
	}{
		{
			name:     "not found",
			err:      NewNotFoundError("filing directory for 00126380"),
			wantType: ErrTypeNotFound,
			wantText: "[NOT_FOUND] filing directory for 00126380 not found",
		},
		{
			name:     "malformed input with cause",
			err:      NewMalformedInputError("failed to parse instance document", cause),
			wantType: ErrTypeMalformedInput,
			wantText: "[MALFORMED_INPUT] failed to parse instance document: unexpected EOF",
		},
		{
			name:     "persistence",
			err:      NewPersistenceError("upsert failed", cause),
			wantType: ErrTypePersistence,
			wantText: "[PERSISTENCE] upsert failed: unexpected EOF",
		},
		{
			name:     "normalization",
			err:      NewNormalizationError("non-numeric value", nil),
			wantType: ErrTypeNormalization,
			wantText: "[NORMALIZATION] non-numeric value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantText, tt.err.Error())
		})
	}
}

func TestAppErrorUnwrapAndTypeOf(t *testing.T) {
	cause := stderrors.New("boom")
	wrapped := fmt.Errorf("parse 00126380: %w", NewMalformedInputError("bad xml", cause))

	assert.True(t, stderrors.Is(wrapped, cause))
	assert.Equal(t, ErrTypeMalformedInput, TypeOf(wrapped))
	assert.True(t, IsType(wrapped, ErrTypeMalformedInput))
	assert.False(t, IsType(wrapped, ErrTypeNotFound))
	assert.Equal(t, ErrorType(""), TypeOf(cause))
}

func TestAppErrorWithContext(t *testing.T) {
	err := NewNotFoundError("instance document").
		WithContext("corp_code", "00126380").
		WithContext("directory", "/filings/00126380_2023")

	assert.Equal(t, "00126380", err.Context["corp_code"])
	assert.Len(t, err.Context, 2)

	var nilCtx AppError
	nilCtx.WithContext("k", 1)
	assert.Equal(t, 1, nilCtx.Context["k"])
}

func TestProblemDetailsMarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusNotFound, TypeFilingNotFound, "Not Found", "filing missing", "/xbrl-parser/xbrl-to-dataframe").
		WithExtension("trace_id", "req-1").
		WithExtension("status", 999)

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, TypeFilingNotFound, decoded["type"])
	assert.Equal(t, "filing missing", decoded["detail"])
	assert.Equal(t, "req-1", decoded["trace_id"])
	// standard members are never overridden by extensions
	assert.Equal(t, float64(http.StatusNotFound), decoded["status"])
}

func TestAPIErrorConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		status int
		code   string
	}{
		{"validation", ErrValidation("corp_code", "is required"), http.StatusBadRequest, CodeValidationFailed},
		{"invalid request", InvalidRequestWithError(stderrors.New("bad query")), http.StatusBadRequest, CodeInvalidRequest},
		{"unsupported format", ErrUnsupportedFormat("pdf"), http.StatusBadRequest, CodeUnsupportedFormat},
		{"no records", ErrNoRecords("00126380"), http.StatusNotFound, CodeNoRecords},
		{"store unavailable", ErrStoreUnavailable, http.StatusServiceUnavailable, CodeStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.code, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Error())
		})
	}

	details, ok := ErrValidation("year", "must be a valid integer").Details.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, details.Errors, 1)
	assert.Equal(t, "year", details.Errors[0].Field)
	assert.Contains(t, ErrUnsupportedFormat("pdf").Error(), `"pdf"`)
}

func TestProblemDetailsWithTraceID(t *testing.T) {
	problem := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "", "/xbrl-parser/export").
		WithTraceID("")
	assert.NotContains(t, problem.Extensions, "trace_id")

	problem.WithTraceID("abc123")
	assert.Equal(t, "abc123", problem.Extensions["trace_id"])
}
