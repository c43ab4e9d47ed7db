// Package services holds the business logic between the HTTP and CLI
// front ends and the extraction and storage packages.
//
// XBRLService runs the parser for one or many entities and hands the
// records to the upsert engine. Failures below it are logged with their
// error type and reported as an empty record set, so callers only need to
// check for emptiness. SourceService reads stored rows back and
// HealthService backs the health endpoints.
package services
