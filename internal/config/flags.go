package config

import (
	"flag"
)

// flagToSource maps flag names to source field names.
var flagToSource = map[string]string{
	"storage":        "storage",
	"key":            "storage_key",
	"session":        "session_id",
	"session-dir":    "session_dir",
	"quota":          "quota_bytes",
	"schema":         "schema_file",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
	"log-dir":        "log_dir",
	"redis-addr":     "redis.addr",
	"redis-db":       "redis.db",
	"redis-ttl":      "redis.ttl_seconds",
}

// parseFlags defines the global flags on fs, parses args and applies the
// flags that were set. Flags that were not given leave cfg untouched.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet(appName, flag.ContinueOnError)
	}

	// Parse into a copy so unset flags cannot clobber earlier layers.
	parsed := *cfg

	// Storage
	fs.StringVar(&parsed.Storage, "storage", cfg.Storage, "Storage medium (memory, file, redis)")
	fs.StringVar(&parsed.StorageKey, "key", cfg.StorageKey, "Storage key holding the task list")
	fs.StringVar(&parsed.SessionID, "session", cfg.SessionID, "Session id (default: the invoking shell)")
	fs.StringVar(&parsed.SessionDir, "session-dir", cfg.SessionDir, "Base directory for file sessions")
	fs.Int64Var(&parsed.QuotaBytes, "quota", cfg.QuotaBytes, "Storage quota in bytes")
	fs.StringVar(&parsed.SchemaFile, "schema", cfg.SchemaFile, "JSON Schema used by check")

	// Logging
	fs.StringVar(&parsed.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&parsed.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&parsed.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&parsed.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")
	fs.StringVar(&parsed.LogDir, "log-dir", cfg.LogDir, "Session log directory")

	// Redis
	fs.StringVar(&parsed.Redis.Addr, "redis-addr", cfg.Redis.Addr, "Redis address")
	fs.IntVar(&parsed.Redis.DB, "redis-db", cfg.Redis.DB, "Redis database")
	fs.IntVar(&parsed.Redis.TTLSeconds, "redis-ttl", cfg.Redis.TTLSeconds, "Redis session TTL in seconds (0 disables expiry)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		field, ok := flagToSource[f.Name]
		if !ok {
			return
		}
		sources[field] = SourceFlag
		applyField(cfg, &parsed, field)
	})
	return nil
}

// applyField copies one field from src to dst.
func applyField(dst, src *Config, field string) {
	switch field {
	case "storage":
		dst.Storage = src.Storage
	case "storage_key":
		dst.StorageKey = src.StorageKey
	case "session_id":
		dst.SessionID = src.SessionID
	case "session_dir":
		dst.SessionDir = src.SessionDir
	case "quota_bytes":
		dst.QuotaBytes = src.QuotaBytes
	case "schema_file":
		dst.SchemaFile = src.SchemaFile
	case "log_level":
		dst.LogLevel = src.LogLevel
	case "log_format":
		dst.LogFormat = src.LogFormat
	case "log_timestamps":
		dst.LogTimestamps = src.LogTimestamps
	case "log_caller":
		dst.LogCaller = src.LogCaller
	case "log_dir":
		dst.LogDir = src.LogDir
	case "redis.addr":
		dst.Redis.Addr = src.Redis.Addr
	case "redis.db":
		dst.Redis.DB = src.Redis.DB
	case "redis.ttl_seconds":
		dst.Redis.TTLSeconds = src.Redis.TTLSeconds
	}
}
