package services

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"
)

// Pinger checks connectivity to a dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// SourceCounter counts persisted source rows
type SourceCounter interface {
	Count(ctx context.Context) (int64, error)
}

// HealthService provides health check functionality
type HealthService struct {
	version     string
	buildTime   string
	buildID     string
	filingsRoot string
	db          Pinger
	sources     SourceCounter
	pingTimeout time.Duration
	startTime   time.Time
	logger      *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Rows    *int64 `json:"rows,omitempty"`
}

// NewHealthService creates a health service. db may be nil when
// persistence is disabled.
func NewHealthService(version, buildTime, buildID, filingsRoot string, db Pinger, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("build_time", buildTime),
		slog.String("build_id", buildID),
		slog.Bool("database", db != nil))

	return &HealthService{
		version:     version,
		buildTime:   buildTime,
		buildID:     buildID,
		filingsRoot: filingsRoot,
		db:          db,
		pingTimeout: 2 * time.Second,
		startTime:   time.Now(),
		logger:      logger,
	}
}

// WithSourceCounter makes readiness query the source relation as well, so a
// missing or unreadable table is reported before the first upsert fails.
func (hs *HealthService) WithSourceCounter(c SourceCounter) *HealthService {
	hs.sources = c
	return hs
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports whether the database answers and the filing
// root is readable.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"database": hs.checkDatabase(ctx),
			"filings":  hs.checkFilings(),
		},
	}
	if hs.sources != nil {
		status.Services["sources"] = hs.checkSources(ctx)
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status == "error" {
			status.Status = "not_ready"
			break
		}
	}

	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "readiness check failed", slog.Any("services", status.Services))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}
	return result
}

func (hs *HealthService) checkDatabase(ctx context.Context) ServiceHealth {
	if hs.db == nil {
		return ServiceHealth{Status: "disabled"}
	}

	ctx, cancel := context.WithTimeout(ctx, hs.pingTimeout)
	defer cancel()
	if err := hs.db.Ping(ctx); err != nil {
		return ServiceHealth{Status: "error", Message: err.Error()}
	}
	return ServiceHealth{Status: "ready"}
}

func (hs *HealthService) checkSources(ctx context.Context) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, hs.pingTimeout)
	defer cancel()
	n, err := hs.sources.Count(ctx)
	if err != nil {
		return ServiceHealth{Status: "error", Message: err.Error()}
	}
	return ServiceHealth{Status: "ready", Rows: &n}
}

func (hs *HealthService) checkFilings() ServiceHealth {
	info, err := os.Stat(hs.filingsRoot)
	if err != nil {
		return ServiceHealth{Status: "error", Message: err.Error()}
	}
	if !info.IsDir() {
		return ServiceHealth{Status: "error", Message: "filing root is not a directory"}
	}
	return ServiceHealth{Status: "ready"}
}
