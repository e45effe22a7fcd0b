package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"quotecompare/internal/utils"
)

type Config struct {
	App       *AppConfig       `yaml:"app"`
	Log       *LogConfig       `yaml:"log"`
	Database  *DatabaseConfig  `yaml:"database"`
	Redis     *RedisConfig     `yaml:"redis"`
	Referral  *ReferralConfig  `yaml:"referral"`
	Security  *SecurityConfig  `yaml:"security"`
	Metrics   *MetricsConfig   `yaml:"metrics"`
	WebSocket *WebSocketConfig `yaml:"websocket"`
}

type AppConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Environment     string        `yaml:"environment"`
	Port            int           `yaml:"port"`
	Host            string        `yaml:"host"`
	Debug           bool          `yaml:"debug"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func (a *AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	Caller bool   `yaml:"caller"`
}

type SecurityConfig struct {
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	TrustedProxies     []string `yaml:"trusted_proxies"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads a .env file when one exists, then builds the configuration
// from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	referral, err := loadReferralConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		App:       loadAppConfig(),
		Log:       loadLogConfig(),
		Database:  loadDatabaseConfig(),
		Redis:     loadRedisConfig(),
		Referral:  referral,
		Security:  loadSecurityConfig(),
		Metrics:   loadMetricsConfig(),
		WebSocket: loadWebSocketConfig(),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case utils.DriverPostgres:
		if c.Database.Postgres.URL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	case utils.DriverMongoDB:
		if c.Database.Mongo.URI == "" {
			return errors.New("MONGODB_URI is required for the mongodb driver")
		}
	case utils.DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}

	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid APP_PORT %d", c.App.Port)
	}
	return nil
}

func loadAppConfig() *AppConfig {
	return &AppConfig{
		Name:            getEnv("APP_NAME", utils.AppName),
		Version:         getEnv("APP_VERSION", utils.AppVersion),
		Environment:     getEnv("APP_ENV", "development"),
		Port:            getEnvAsInt("APP_PORT", 3000),
		Host:            getEnv("APP_HOST", "0.0.0.0"),
		Debug:           getEnvAsBool("APP_DEBUG", false),
		ReadTimeout:     getEnvAsDuration("APP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvAsDuration("APP_WRITE_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadLogConfig() *LogConfig {
	return &LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", "json"),
		Output: getEnv("LOG_OUTPUT", "stdout"),
		Caller: getEnvAsBool("LOG_CALLER", false),
	}
}

func loadSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", nil),
	}
}

func loadMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		Enabled: getEnvAsBool("METRICS_ENABLED", true),
		Path:    getEnv("METRICS_PATH", "/metrics"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
