// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a capturing slog handler and XBRL filing
// fixtures (a small instance document, a Korean label linkbase and helpers
// that lay them out the way the retrieval job extracts filings).
package shared
