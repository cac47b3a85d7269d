// Package config loads runtime configuration for the SoraPrompter CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Environment, after an optional dotenv file (-env, or ./.env) is loaded.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string   data directory
//	-b string   storage backend: sqlite, postgres, redis, s3, memory
//	-f string   SQLite file name inside the data directory
//	-p string   PostgreSQL DSN
//	-r string   Redis address
//	-k string   S3 bucket
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-m string   Gemini model
//	-t int      prompt extraction timeout (seconds)
//	-z string   timezone for calendar days
//	-l string   log level
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "90s" or
// integer nanoseconds:
//
//	{
//	  "data_dir": ".soraprompter",
//	  "storage_backend": "redis",
//	  "redis_addr": "127.0.0.1:6379",
//	  "session_ttl": "720h",
//	  "extract_timeout": "90s"
//	}
package config
