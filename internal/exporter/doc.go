// Package exporter writes canonical records as CSV, XLSX or JSON.
//
// CSV output starts with a UTF-8 BOM so spreadsheet tools read the Korean
// headers correctly. CSVWriter writes files under a base directory and can
// stream records for multi-entity runs; Encode writes any format to an
// io.Writer for HTTP downloads.
package exporter
