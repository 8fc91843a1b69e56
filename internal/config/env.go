package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// loadFromEnv overrides config from SESSIONTODO_* environment variables and
// records them as SourceEnv.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) error {
	setString := func(name, field string, target *string) {
		if v := os.Getenv(name); v != "" {
			*target = v
			sources[field] = SourceEnv
		}
	}
	setBool := func(name, field string, target *bool) {
		if v := os.Getenv(name); v != "" {
			*target = boolFromString(v)
			sources[field] = SourceEnv
		}
	}
	setInt := func(name, field string, target *int) error {
		v := os.Getenv(name)
		if v == "" {
			return nil
		}
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*target = i
		sources[field] = SourceEnv
		return nil
	}

	setString("SESSIONTODO_STORAGE", "storage", &cfg.Storage)
	setString("SESSIONTODO_STORAGE_KEY", "storage_key", &cfg.StorageKey)
	setString(EnvSession, "session_id", &cfg.SessionID)
	setString("SESSIONTODO_SESSION_DIR", "session_dir", &cfg.SessionDir)
	setString("SESSIONTODO_SCHEMA", "schema_file", &cfg.SchemaFile)

	if v := os.Getenv("SESSIONTODO_QUOTA_BYTES"); v != "" {
		q, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("SESSIONTODO_QUOTA_BYTES: %w", err)
		}
		cfg.QuotaBytes = q
		sources["quota_bytes"] = SourceEnv
	}

	// Logging configuration
	setString("SESSIONTODO_LOG_LEVEL", "log_level", &cfg.LogLevel)
	setString("SESSIONTODO_LOG_FORMAT", "log_format", &cfg.LogFormat)
	setBool("SESSIONTODO_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	setBool("SESSIONTODO_LOG_CALLER", "log_caller", &cfg.LogCaller)
	setString("SESSIONTODO_LOG_DIR", "log_dir", &cfg.LogDir)

	// Redis
	setString("SESSIONTODO_REDIS_ADDR", "redis.addr", &cfg.Redis.Addr)
	setString("SESSIONTODO_REDIS_PASSWORD", "redis.password", &cfg.Redis.Password)
	if err := setInt("SESSIONTODO_REDIS_DB", "redis.db", &cfg.Redis.DB); err != nil {
		return err
	}
	return setInt("SESSIONTODO_REDIS_TTL", "redis.ttl_seconds", &cfg.Redis.TTLSeconds)
}

// boolFromString parses common truthy spellings.
func boolFromString(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
