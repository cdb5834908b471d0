// FilePath: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Devices    DeviceConfig
	PhotoStore PhotoStoreConfig
	Monitoring MonitoringConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"` // "sqlite3" or "postgres"
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// DeviceConfig carries the outbound-call timings for feeder hardware. Probes
// are short; the dispense path is longer since the physical action takes a
// few seconds.
type DeviceConfig struct {
	ProbeTimeout       time.Duration `mapstructure:"probe_timeout"`
	DispenseTimeout    time.Duration `mapstructure:"dispense_timeout"`
	CaptureTimeout     time.Duration `mapstructure:"capture_timeout"`
	CaptureDelay       time.Duration `mapstructure:"capture_delay"`
	SecondCaptureDelay time.Duration `mapstructure:"second_capture_delay"`
	SweepSchedule      string        `mapstructure:"sweep_schedule"` // cron spec, "" disables the sweep
}

type PhotoStoreConfig struct {
	BasePath    string        `mapstructure:"base_path"`
	MaxFileSize int64         `mapstructure:"max_file_size"`
	Retention   time.Duration `mapstructure:"retention"` // 0 disables the purge
}

type MonitoringConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("FEEDERHUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")
	viper.SetDefault("server.allowed_origins", []string{"*"})

	// Database defaults
	viper.SetDefault("database.driver", "sqlite3")
	viper.SetDefault("database.sqlite.path", "./data/feeder.db")
	viper.SetDefault("database.postgres.port", 5432)
	viper.SetDefault("database.postgres.sslmode", "disable")

	// Redis defaults (host empty = live-status cache disabled)
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttl", "5s")

	// Device call timings
	viper.SetDefault("devices.probe_timeout", "2s")
	viper.SetDefault("devices.dispense_timeout", "5s")
	viper.SetDefault("devices.capture_timeout", "3s")
	viper.SetDefault("devices.capture_delay", "5s")
	viper.SetDefault("devices.second_capture_delay", "10s")
	viper.SetDefault("devices.sweep_schedule", "@every 1m")

	// Photo store defaults
	viper.SetDefault("photostore.base_path", "./data/uploads")
	viper.SetDefault("photostore.max_file_size", 10*1024*1024) // 10MB
	viper.SetDefault("photostore.retention", "720h")           // 30 days

	// Monitoring defaults
	viper.SetDefault("monitoring.log_level", "info")
}

func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case "sqlite3":
		if config.Database.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case "postgres":
		if config.Database.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", config.Database.Driver)
	}
	if config.PhotoStore.BasePath == "" {
		return fmt.Errorf("photo store base path is required")
	}
	return nil
}
