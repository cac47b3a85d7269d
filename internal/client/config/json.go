package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/soraprompter/internal/flagx"
	"github.com/dmitrijs2005/soraprompter/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations go through
// timex.Duration so both "90s" and integer nanoseconds are accepted.
type JsonConfig struct {
	DataDir        string `json:"data_dir"`
	StorageBackend string `json:"storage_backend"`
	SQLiteFile     string `json:"sqlite_file"`
	PostgresDSN    string `json:"postgres_dsn"`

	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
	RedisPrefix   string `json:"redis_prefix"`

	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
	S3User         string `json:"s3_user"`
	S3Password     string `json:"s3_password"`
	S3Prefix       string `json:"s3_prefix"`

	SessionSecret string         `json:"session_secret"`
	SessionTTL    timex.Duration `json:"session_ttl"`
	Timezone      string         `json:"timezone"`

	GeminiAPIKey   string         `json:"gemini_api_key"`
	GeminiModel    string         `json:"gemini_model"`
	GeminiBaseURL  string         `json:"gemini_base_url"`
	ExtractTimeout timex.Duration `json:"extract_timeout"`
	MaxUploadBytes int64          `json:"max_upload_bytes"`

	AdminPassword string `json:"admin_password"`
	LogLevel      string `json:"log_level"`
}

// parseJson overlays cfg with the JSON file named by -c or -config. Keys
// missing from the file keep their current values. Panics when the file
// cannot be read or parsed.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.ConfigFileFlag(args)
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.StorageBackend, jc.StorageBackend)
	setString(&cfg.SQLiteFile, jc.SQLiteFile)
	setString(&cfg.PostgresDSN, jc.PostgresDSN)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.RedisPassword, jc.RedisPassword)
	setString(&cfg.RedisPrefix, jc.RedisPrefix)
	setString(&cfg.S3Bucket, jc.S3Bucket)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	setString(&cfg.S3User, jc.S3User)
	setString(&cfg.S3Password, jc.S3Password)
	setString(&cfg.S3Prefix, jc.S3Prefix)
	setString(&cfg.SessionSecret, jc.SessionSecret)
	setString(&cfg.Timezone, jc.Timezone)
	setString(&cfg.GeminiAPIKey, jc.GeminiAPIKey)
	setString(&cfg.GeminiModel, jc.GeminiModel)
	setString(&cfg.GeminiBaseURL, jc.GeminiBaseURL)
	setString(&cfg.AdminPassword, jc.AdminPassword)
	setString(&cfg.LogLevel, jc.LogLevel)

	if jc.RedisDB != 0 {
		cfg.RedisDB = jc.RedisDB
	}
	if jc.MaxUploadBytes != 0 {
		cfg.MaxUploadBytes = jc.MaxUploadBytes
	}
	if jc.SessionTTL.Duration != 0 {
		cfg.SessionTTL = time.Duration(jc.SessionTTL.Duration)
	}
	if jc.ExtractTimeout.Duration != 0 {
		cfg.ExtractTimeout = time.Duration(jc.ExtractTimeout.Duration)
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
