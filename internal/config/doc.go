// Package config provides centralized configuration management for dsdgen.
// It loads configuration from defaults, an optional YAML file and the
// environment, validates it, and exposes typed sections to the rest of the
// application.
//
// # Configuration Sources
//
// Sources are applied in increasing order of precedence:
//
//	1. Default values (Default)
//	2. YAML file: $DSD_CONFIG_FILE, ./config.yaml or ./configs/config.yaml
//	3. Environment variables
//
// # Environment Variables
//
// Variables follow the pattern DSD_<SECTION>_<FIELD>:
//
//	DSD_SERVER_PORT=8080
//	DSD_FILINGS_ROOT=/app/app/dart_documents/extracted
//	DSD_FILINGS_ALLOW_FALLBACK=false
//	DSD_DATABASE_URL=postgres://user:pass@db:5432/dsd
//	DSD_LOGGING_LEVEL=debug
//
// Database host, port, user, password and name additionally accept the
// unprefixed DB_HOST, DB_PORT, DB_USER, DB_PASSWORD and DB_NAME variables
// used by existing deployments.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
