package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultOriginURL   = "https://store.elyfevspare.com/"
	DefaultImageDir    = "product-images"
	DefaultCSVPath     = "products.csv"
	DefaultJSONPath    = "products.json"
	DefaultArchivePath = "product-images.zip"
	DefaultCurrency    = "INR"
	DefaultUnit        = "PCS"
)

type Config struct {
	Scraper  ScraperConfig
	Output   OutputConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Logging  LoggingConfig
}

type ScraperConfig struct {
	OriginURL string
	UserAgent string
	Currency  string
	Unit      string
}

type OutputConfig struct {
	ImageDir    string
	CSVPath     string
	JSONPath    string
	ArchivePath string
}

type DatabaseConfig struct {
	ImportEnabled bool
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	SSLMode       string
	MaxConns      int32
	MinConns      int32
	MaxConnLife   time.Duration
	MaxConnIdle   time.Duration
}

type RedisConfig struct {
	EventsEnabled bool
	Addr          string
	Password      string
	DB            int
	Stream        string
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads the environment. Without any variables set the result carries
// the fixed storefront origin and output paths.
func Load() (*Config, error) {
	cfg := &Config{
		Scraper: ScraperConfig{
			OriginURL: getEnvOrDefault("SCRAPER_ORIGIN_URL", DefaultOriginURL),
			UserAgent: getEnvOrDefault("SCRAPER_USER_AGENT", ""),
			Currency:  getEnvOrDefault("SCRAPER_CURRENCY", DefaultCurrency),
			Unit:      getEnvOrDefault("SCRAPER_UNIT", DefaultUnit),
		},
		Output: OutputConfig{
			ImageDir:    getEnvOrDefault("OUTPUT_IMAGE_DIR", DefaultImageDir),
			CSVPath:     getEnvOrDefault("OUTPUT_CSV", DefaultCSVPath),
			JSONPath:    getEnvOrDefault("OUTPUT_JSON", DefaultJSONPath),
			ArchivePath: getEnvOrDefault("OUTPUT_ARCHIVE", DefaultArchivePath),
		},
		Database: DatabaseConfig{
			ImportEnabled: getBoolOrDefault("CATALOG_IMPORT", false),
			Host:          getEnvOrDefault("DB_HOST", "localhost"),
			Port:          getIntOrDefault("DB_PORT", 5432),
			User:          getEnvOrDefault("DB_USER", "postgres"),
			Password:      getEnvOrDefault("DB_PASSWORD", ""),
			Name:          getEnvOrDefault("DB_NAME", "evspare_catalog"),
			SSLMode:       getEnvOrDefault("DB_SSL_MODE", "disable"),
			MaxConns:      int32(getIntOrDefault("DB_MAX_CONNS", 10)),
			MinConns:      int32(getIntOrDefault("DB_MIN_CONNS", 1)),
			MaxConnLife:   getDurationOrDefault("DB_MAX_CONN_LIFE", time.Hour),
			MaxConnIdle:   getDurationOrDefault("DB_MAX_CONN_IDLE", 30*time.Minute),
		},
		Redis: RedisConfig{
			EventsEnabled: getBoolOrDefault("EVENTS_ENABLED", false),
			Addr:          getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password:      getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:            getIntOrDefault("REDIS_DB", 0),
			Stream:        getEnvOrDefault("REDIS_STREAM", "stream:catalog"),
		},
		Server: ServerConfig{
			Port:            getIntOrDefault("SERVER_PORT", 5000),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getStringSliceOrDefault("SERVER_ALLOWED_ORIGINS", []string{"http://localhost:*", "https://localhost:*"}),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "text"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Scraper.OriginURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SCRAPER_ORIGIN_URL must be an absolute URL, got %q", c.Scraper.OriginURL)
	}

	if c.Output.ImageDir == "" || c.Output.CSVPath == "" || c.Output.JSONPath == "" || c.Output.ArchivePath == "" {
		return fmt.Errorf("output paths must not be empty")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.ImportEnabled && c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required when CATALOG_IMPORT is enabled")
	}

	return nil
}

// DSN renders the postgres connection string for pgx.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
