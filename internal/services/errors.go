package services

import "errors"

var (
	// ErrNoRecords is returned when an extraction produced nothing
	ErrNoRecords = errors.New("no records extracted")

	// ErrStoreDisabled is returned when persistence is not configured
	ErrStoreDisabled = errors.New("source store is not configured")

	// ErrInvalidInput is returned for empty or malformed identifiers
	ErrInvalidInput = errors.New("invalid input")
)
