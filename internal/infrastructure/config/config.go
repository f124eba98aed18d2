package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Study    StudyConfig    `mapstructure:"study"`
	Report   ReportConfig   `mapstructure:"report"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host        string   `mapstructure:"host"`
	HTTPPort    int      `mapstructure:"http_port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig holds database configuration. Path is only used by sqlite.
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	Path     string `mapstructure:"path"`
	LogSQL   bool   `mapstructure:"log_sql"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StudyConfig bounds session queues and controls idle-session expiry.
type StudyConfig struct {
	DefaultCardLimit int           `mapstructure:"default_card_limit"`
	MaxCardLimit     int           `mapstructure:"max_card_limit"`
	SessionIdleTTL   time.Duration `mapstructure:"session_idle_ttl"`
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`
}

// ReportConfig holds performance report defaults.
type ReportConfig struct {
	DefaultWindowDays int    `mapstructure:"default_window_days"`
	Timezone          string `mapstructure:"timezone"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	// Values from .env reach viper through the process environment as well,
	// so nested keys like DATABASE_DRIVER work either way.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	// An explicit file set through --config wins over the search paths.
	if viper.ConfigFileUsed() == "" {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.cors_origins", []string{"*"})

	// Database defaults
	viper.SetDefault("database.driver", DriverSQLite)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "studydeck")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.path", "data/studydeck.db")
	viper.SetDefault("database.log_sql", false)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	// Study defaults
	viper.SetDefault("study.default_card_limit", 20)
	viper.SetDefault("study.max_card_limit", 100)
	viper.SetDefault("study.session_idle_ttl", "30m")
	viper.SetDefault("study.sweep_interval", "1m")

	// Report defaults
	viper.SetDefault("report.default_window_days", 30)
	viper.SetDefault("report.timezone", "UTC")
}

// DatabaseDriver returns the normalized database/sql driver name.
func (c *Config) DatabaseDriver() (string, error) {
	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
}

// DatabaseURL returns the DSN for the configured driver.
func (c *Config) DatabaseURL() (string, error) {
	driver, err := c.DatabaseDriver()
	if err != nil {
		return "", err
	}
	if driver == DriverSQLite {
		path := strings.TrimSpace(c.Database.Path)
		if path == "" {
			return "", errors.New("database.path is required for sqlite")
		}
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path), nil
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     c.Database.Name,
		RawQuery: url.Values{"sslmode": []string{c.Database.SSLMode}}.Encode(),
	}
	return u.String(), nil
}

// ReportLocation resolves the timezone used to bucket answers by day.
func (c *Config) ReportLocation() (*time.Location, error) {
	name := strings.TrimSpace(c.Report.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load report timezone: %w", err)
	}
	return loc, nil
}
