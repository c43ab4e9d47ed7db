package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Filings   FilingsConfig   `yaml:"filings" envconfig:"FILINGS"`
	Database  DatabaseConfig  `yaml:"database" envconfig:"DATABASE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Batch     BatchConfig     `yaml:"batch" envconfig:"BATCH"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// FilingsConfig describes where extracted filings live and how the
// instance and label documents are recognised.
type FilingsConfig struct {
	Root          string `yaml:"root" envconfig:"ROOT"`
	InstanceExt   string `yaml:"instance_ext" envconfig:"INSTANCE_EXT"`
	LabelMarker   string `yaml:"label_marker" envconfig:"LABEL_MARKER"`
	AllowFallback bool   `yaml:"allow_fallback" envconfig:"ALLOW_FALLBACK"`
}

// DatabaseConfig contains Postgres connection and upsert settings.
// Host, port, user, password and name also honour the bare DB_* variables.
type DatabaseConfig struct {
	Enabled          bool          `yaml:"enabled" envconfig:"ENABLED"`
	URL              string        `yaml:"url" envconfig:"URL"`
	Host             string        `yaml:"host" envconfig:"DB_HOST"`
	Port             int           `yaml:"port" envconfig:"DB_PORT"`
	User             string        `yaml:"user" envconfig:"DB_USER"`
	Password         string        `yaml:"password" envconfig:"DB_PASSWORD"`
	Name             string        `yaml:"name" envconfig:"DB_NAME"`
	SSLMode          string        `yaml:"ssl_mode" envconfig:"SSL_MODE"`
	MinConns         int32         `yaml:"min_conns" envconfig:"MIN_CONNS"`
	MaxConns         int32         `yaml:"max_conns" envconfig:"MAX_CONNS"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout" envconfig:"CONNECT_TIMEOUT"`
	StatementTimeout time.Duration `yaml:"statement_timeout" envconfig:"STATEMENT_TIMEOUT"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time" envconfig:"MAX_CONN_IDLE_TIME"`
	Table            string        `yaml:"table" envconfig:"TABLE"`
	StrictSchema     bool          `yaml:"strict_schema" envconfig:"STRICT_SCHEMA"`
	AutoMigrate      bool          `yaml:"auto_migrate" envconfig:"AUTO_MIGRATE"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled        bool   `yaml:"enabled" envconfig:"ENABLED"`
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
}

// BatchConfig controls multi-entity extraction runs
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" envconfig:"CONCURRENCY"`
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Load loads configuration with precedence defaults < config file < environment
func Load() (*Config, error) {
	return LoadWith(getConfigFilePath(), nil)
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	return LoadWith(configFile, nil)
}

// LoadWith is LoadFrom with an override applied after the environment and
// before validation, for command line flags.
func LoadWith(configFile string, override func(*Config)) (*Config, error) {
	cfg := Default()

	// Config file overrides defaults
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Environment overrides everything else
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if override != nil {
		override(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML settings onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates and normalizes the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if err := c.Logging.validate(); err != nil {
		return err
	}

	if err := c.Filings.validate(); err != nil {
		return err
	}

	if c.Database.Enabled {
		if err := c.Database.validate(); err != nil {
			return err
		}
	}

	if c.Batch.Concurrency < 1 {
		c.Batch.Concurrency = 1
	}

	return nil
}

func (l *LoggingConfig) validate() error {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	switch l.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", l.Level)
	}

	if l.Format != "json" && l.Format != "text" {
		l.Format = "json"
	}

	switch l.Output {
	case "stdout", "file", "both":
	default:
		l.Output = "stdout"
	}

	if l.Output != "stdout" && l.FilePath == "" {
		l.FilePath = DefaultLogFile
	}

	return nil
}

func (f *FilingsConfig) validate() error {
	if strings.TrimSpace(f.Root) == "" {
		return fmt.Errorf("filings root must be specified")
	}
	if !strings.HasPrefix(f.InstanceExt, ".") {
		return fmt.Errorf("instance extension must start with a dot: %q", f.InstanceExt)
	}
	if f.LabelMarker == "" {
		return fmt.Errorf("label marker must be specified")
	}
	return nil
}

func (d *DatabaseConfig) validate() error {
	if d.URL == "" {
		var missing []string
		if d.Host == "" {
			missing = append(missing, "DB_HOST")
		}
		if d.User == "" {
			missing = append(missing, "DB_USER")
		}
		if d.Password == "" {
			missing = append(missing, "DB_PASSWORD")
		}
		if d.Name == "" {
			missing = append(missing, "DB_NAME")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing database settings: %s", strings.Join(missing, ", "))
		}
		if d.Port <= 0 || d.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", d.Port)
		}
	}

	if d.MinConns < 0 || d.MaxConns < 1 || d.MinConns > d.MaxConns {
		return fmt.Errorf("invalid pool bounds: min=%d max=%d", d.MinConns, d.MaxConns)
	}

	if !tableNamePattern.MatchString(d.Table) {
		return fmt.Errorf("invalid table name: %q", d.Table)
	}

	return nil
}

// DSN returns the connection string for the configured database
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   d.Host + ":" + strconv.Itoa(d.Port),
		Path:   "/" + d.Name,
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{d.SSLMode}}.Encode()
	}
	return u.String()
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_FILE"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    120 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  90 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:3000", "https://conan.ai.kr"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: DefaultLogFile,
		},
		Filings: FilingsConfig{
			Root:          DefaultFilingsRoot,
			InstanceExt:   DefaultInstanceExt,
			LabelMarker:   DefaultLabelMarker,
			AllowFallback: true,
		},
		Database: DatabaseConfig{
			Enabled:          true,
			Port:             5432,
			SSLMode:          "disable",
			MinConns:         5,
			MaxConns:         20,
			ConnectTimeout:   30 * time.Second,
			StatementTimeout: 60 * time.Second,
			MaxConnIdleTime:  30 * time.Minute,
			Table:            DefaultTable,
			StrictSchema:     true,
		},
		Telemetry: TelemetryConfig{
			Enabled:        true,
			ServiceName:    AppName,
			Environment:    "production",
			TraceExporter:  "none",
			MetricsEnabled: true,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
	}
}
