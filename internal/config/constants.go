package config

// Application constants
const (
	// AppName is used as the OpenTelemetry service name and in logs
	AppName = "dsdgen"

	// EnvPrefix namespaces every environment variable
	EnvPrefix = "DSD"

	DefaultLogFile = "logs/dsdgen.log"

	// Filing storage layout produced by the retrieval job
	DefaultFilingsRoot = "/app/app/dart_documents/extracted"
	DefaultInstanceExt = ".xbrl"
	DefaultLabelMarker = "lab-ko.xml"

	// Persistence
	DefaultTable         = "dsd_source"
	UniqueConstraintName = "unique_dsd_source_entry"
)
