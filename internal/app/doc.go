// Package app wires the dsdgen service together: configuration, logging,
// telemetry, the extraction pipeline, the optional Postgres store and the
// chi router.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, DSD_* environment)
//	2. Initialize slog and OpenTelemetry
//	3. Open the pool, migrate and prepare the upsert engine (database enabled only)
//	4. Build services, handlers and middleware
//	5. Start the HTTP server
//
// NewPipeline is also used by cmd/xbrlparse, which runs the same pipeline
// without the HTTP surface.
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM: in-flight requests are drained, the
// connection pool is closed and telemetry is flushed. The package never
// calls os.Exit.
package app
