package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Storage    StorageConfig    `yaml:"storage"`
	Backup     BackupConfig     `yaml:"backup"`
	Mirror     MirrorConfig     `yaml:"mirror"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Reports    ReportsConfig    `yaml:"reports"`
	Access     AccessConfig     `yaml:"access"`
	HTTP       HTTPConfig       `yaml:"http"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type StorageConfig struct {
	Driver string       `yaml:"driver"` // sqlite, redis, failover
	SQLite SQLiteConfig `yaml:"sqlite"`
	Redis  RedisConfig  `yaml:"redis"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address   string `yaml:"address"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	StoragePath   string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

type MirrorConfig struct {
	Driver          string       `yaml:"driver"` // webapp, sheets, none
	WebApp          WebAppConfig `yaml:"webapp"`
	Sheets          SheetsConfig `yaml:"sheets"`
	TimeoutSeconds  int          `yaml:"timeout_seconds"`
	PushesPerMinute int          `yaml:"pushes_per_minute"`
	SettleSeconds   int          `yaml:"settle_seconds"`
}

type WebAppConfig struct {
	URL string `yaml:"url"`
}

type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	CredentialsFile string `yaml:"credentials_file"`
	BookingsRange   string `yaml:"bookings_range"`
	ProvidersRange  string `yaml:"providers_range"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

type ReportsConfig struct {
	OutputDir string `yaml:"output_dir"`
}

type AccessConfig struct {
	AdminPassphrase     string `yaml:"admin_passphrase"`
	AdminPassphraseHash string `yaml:"admin_passphrase_hash"`
	SessionTTLMinutes   int    `yaml:"session_ttl_minutes"`
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type MonitoringConfig struct {
	HealthCheckPort   int  `yaml:"health_check_port"`
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

// Load reads .env (if present) and the YAML config at path.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Driver != "redis" {
		if err = os.MkdirAll(filepath.Dir(cfg.Storage.SQLite.Path), 0o755); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "sqlite"
	}
	if c.Storage.SQLite.Path == "" {
		c.Storage.SQLite.Path = "data/zencontrol.db"
	}
	if c.Storage.Redis.KeyPrefix == "" {
		c.Storage.Redis.KeyPrefix = "zencontrol:"
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "data/backups"
	}
	if c.Mirror.Driver == "" {
		c.Mirror.Driver = "none"
	}
	if c.Mirror.Sheets.BookingsRange == "" {
		c.Mirror.Sheets.BookingsRange = "Agendamentos!A2:O"
	}
	if c.Mirror.Sheets.ProvidersRange == "" {
		c.Mirror.Sheets.ProvidersRange = "Massagistas!A2:E"
	}
	if c.Reports.OutputDir == "" {
		c.Reports.OutputDir = "data/reports"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
}

// Validate checks driver names and driver-specific settings.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "sqlite":
	case "redis", "failover":
		if c.Storage.Redis.Address == "" {
			return fmt.Errorf("storage.redis.address is required for driver %s", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("storage.driver: unknown driver '%s'", c.Storage.Driver)
	}

	switch c.Mirror.Driver {
	case "none":
	case "webapp":
		if c.Mirror.WebApp.URL == "" {
			return fmt.Errorf("mirror.webapp.url is required")
		}
	case "sheets":
		if c.Mirror.Sheets.SpreadsheetID == "" || c.Mirror.Sheets.CredentialsFile == "" {
			return fmt.Errorf("mirror.sheets.spreadsheet_id and credentials_file are required")
		}
	default:
		return fmt.Errorf("mirror.driver: unknown driver '%s'", c.Mirror.Driver)
	}

	if c.Access.AdminPassphrase == "" && c.Access.AdminPassphraseHash == "" {
		return fmt.Errorf("access.admin_passphrase or access.admin_passphrase_hash is required")
	}

	return nil
}

func (c *Config) MirrorTimeout() time.Duration {
	if c.Mirror.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Mirror.TimeoutSeconds) * time.Second
}

// PushInterval is the minimum spacing between automatic mirror pushes.
func (c *Config) PushInterval() time.Duration {
	if c.Mirror.PushesPerMinute <= 0 {
		return time.Second
	}
	return time.Minute / time.Duration(c.Mirror.PushesPerMinute)
}

// SyncSettle is how long a successful sync status is shown before returning to idle.
func (c *Config) SyncSettle() time.Duration {
	if c.Mirror.SettleSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.Mirror.SettleSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	if c.Access.SessionTTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.Access.SessionTTLMinutes) * time.Minute
}

func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}
