// Package config loads runtime configuration for the huddle CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables prefixed with HUDDLE_, e.g. HUDDLE_DATABASE_PATH
//     or HUDDLE_S3_BUCKET.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-d string   path of the SQLite database file
//	-o string   directory for exported tracker sheets and backups
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Intervals use timex.Duration, so they can be strings like "30s" or integer
// nanoseconds:
//
//	{
//	  "database_path": "huddle.db",
//	  "export_dir": "exports",
//	  "log_level": "warn",
//	  "idle_check_interval": "15s",
//	  "s3": {"bucket": "huddle", "region": "us-east-1", "base_endpoint": "http://127.0.0.1:9000"}
//	}
//
// Secrets (S3 keys) are best supplied through the environment.
package config
