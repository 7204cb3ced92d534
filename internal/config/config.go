package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	defaultPayoutTimezone = "Asia/Kolkata"
)

type Config struct {
	Port            string        `yaml:"port"`
	DBUrl           string        `yaml:"db_url"`
	JWTSecret       string        `yaml:"jwt_secret"`
	AppEnv          string        `yaml:"app_env"`
	StoreDriver     string        `yaml:"store_driver"`
	SeedFile        string        `yaml:"seed_file"`
	RedisAddr       string        `yaml:"redis_addr"`
	RedisPassword   string        `yaml:"redis_password"`
	SummaryCacheTTL time.Duration `yaml:"summary_cache_ttl"`
	PayoutTimezone  string        `yaml:"payout_timezone"`
	S3Bucket        string        `yaml:"s3_bucket"`
	S3Region        string        `yaml:"s3_region"`
	S3Endpoint      string        `yaml:"s3_endpoint"`
	S3AccessKey     string        `yaml:"s3_access_key"`
	S3SecretKey     string        `yaml:"s3_secret_key"`
	LogLevel        string        `yaml:"log_level"`
}

func defaults() Config {
	return Config{
		Port:            "8080",
		AppEnv:          "production",
		StoreDriver:     StoreDriverPostgres,
		SummaryCacheTTL: 5 * time.Minute,
		PayoutTimezone:  defaultPayoutTimezone,
		S3Region:        "us-east-1",
		LogLevel:        "info",
	}
}

// LoadConfig reads .env, then the optional YAML file named by CONFIG_FILE,
// then the process environment. Later sources win.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBUrl = getEnv("DB_URL", cfg.DBUrl)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.AppEnv = normalizeEnv(getEnv("APP_ENV", cfg.AppEnv))
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", cfg.StoreDriver)))
	cfg.SeedFile = getEnv("SEED_FILE", cfg.SeedFile)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)
	cfg.PayoutTimezone = getEnv("PAYOUT_TIMEZONE", cfg.PayoutTimezone)
	cfg.S3Bucket = getEnv("S3_BUCKET", cfg.S3Bucket)
	cfg.S3Region = getEnv("S3_REGION", cfg.S3Region)
	cfg.S3Endpoint = getEnv("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3AccessKey = getEnv("S3_ACCESS_KEY", cfg.S3AccessKey)
	cfg.S3SecretKey = getEnv("S3_SECRET_KEY", cfg.S3SecretKey)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	ttl, err := getEnvDuration("SUMMARY_CACHE_TTL", cfg.SummaryCacheTTL)
	if err != nil {
		return nil, err
	}
	cfg.SummaryCacheTTL = ttl

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		if cfg.DBUrl == "" {
			return nil, fmt.Errorf("DB_URL is required for the postgres store driver")
		}
	case StoreDriverMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Location resolves PayoutTimezone, used to read plain dates in payout
// periods.
func (c *Config) Location() (*time.Location, error) {
	name := c.PayoutTimezone
	if name == "" {
		name = defaultPayoutTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid PAYOUT_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

func (c *Config) CacheEnabled() bool {
	return c != nil && c.RedisAddr != ""
}

func (c *Config) ArchiveEnabled() bool {
	return c != nil && c.S3Bucket != ""
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: decode yaml: %w", err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
