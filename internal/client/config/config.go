package config

import (
	"fmt"
	"os"
	"time"
)

const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendS3       = "s3"
	BackendMemory   = "memory"
)

// Config holds runtime settings for the SoraPrompter CLI.
//
// The env tags name the variables read by the environment layer. Unset
// variables leave the field untouched.
type Config struct {
	DataDir        string `env:"SORA_DATA_DIR"`
	StorageBackend string `env:"SORA_STORAGE"`
	SQLiteFile     string `env:"SORA_SQLITE_FILE"`
	PostgresDSN    string `env:"SORA_POSTGRES_DSN"`

	RedisAddr     string `env:"SORA_REDIS_ADDR"`
	RedisPassword string `env:"SORA_REDIS_PASSWORD"`
	RedisDB       int    `env:"SORA_REDIS_DB"`
	RedisPrefix   string `env:"SORA_REDIS_PREFIX"`

	S3Bucket       string `env:"SORA_S3_BUCKET"`
	S3Region       string `env:"SORA_S3_REGION"`
	S3BaseEndpoint string `env:"SORA_S3_ENDPOINT"`
	S3User         string `env:"SORA_S3_USER"`
	S3Password     string `env:"SORA_S3_PASSWORD"`
	S3Prefix       string `env:"SORA_S3_PREFIX"`

	SessionSecret string        `env:"SORA_SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SORA_SESSION_TTL"`
	Timezone      string        `env:"SORA_TIMEZONE"`

	GeminiAPIKey   string        `env:"API_KEY"`
	GeminiModel    string        `env:"SORA_GEMINI_MODEL"`
	GeminiBaseURL  string        `env:"SORA_GEMINI_BASE_URL"`
	ExtractTimeout time.Duration `env:"SORA_EXTRACT_TIMEOUT"`
	MaxUploadBytes int64         `env:"SORA_MAX_UPLOAD_BYTES"`

	AdminPassword string `env:"SORA_ADMIN_PASSWORD"`
	LogLevel      string `env:"SORA_LOG_LEVEL"`
}

// LoadDefaults populates c with defaults suitable for a single local user.
func (c *Config) LoadDefaults() {
	c.DataDir = ".soraprompter"
	c.StorageBackend = BackendSQLite
	c.SQLiteFile = "soraprompter.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = "soraprompter:"
	c.S3Region = "us-east-1"
	c.S3Prefix = "soraprompter/"
	c.Timezone = "UTC"
	c.GeminiModel = "gemini-2.5-flash"
	c.GeminiBaseURL = "https://generativelanguage.googleapis.com"
	c.ExtractTimeout = 2 * time.Minute
	c.MaxUploadBytes = 20 << 20
	c.LogLevel = "warn"
}

// Validate checks values that cannot be corrected later.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendSQLite, BackendMemory:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("storage backend %q needs a DSN", c.StorageBackend)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("storage backend %q needs an address", c.StorageBackend)
		}
	case BackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("storage backend %q needs a bucket", c.StorageBackend)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

// LoadConfig builds a Config from defaults, then JSON, environment and
// flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
