package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/soraprompter/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags. Only
// the flags listed in the package doc are considered; -c, -config and -env
// are handled by the earlier layers.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-d", "-b", "-f", "-p", "-r", "-k", "-g", "-e", "-m", "-t", "-z", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.StorageBackend, "b", cfg.StorageBackend, "storage backend (sqlite, postgres, redis, s3, memory)")
	fs.StringVar(&cfg.SQLiteFile, "f", cfg.SQLiteFile, "SQLite file name")
	fs.StringVar(&cfg.PostgresDSN, "p", cfg.PostgresDSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address")
	fs.StringVar(&cfg.S3Bucket, "k", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.GeminiModel, "m", cfg.GeminiModel, "Gemini model")
	extractTimeout := fs.Int("t", int(cfg.ExtractTimeout.Seconds()), "prompt extraction timeout (in seconds)")
	fs.StringVar(&cfg.Timezone, "z", cfg.Timezone, "timezone for calendar days")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ExtractTimeout = time.Duration(*extractTimeout) * time.Second
}
