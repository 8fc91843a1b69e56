package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nibzard/sessiontodo/internal/storage"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, in load order.
	Files []string
}

// Source returns where key was set.
func (cws *ConfigWithSources) Source(key string) ConfigSource {
	if s, ok := cws.Sources[key]; ok {
		return s
	}
	return SourceDefault
}

// Default values.
const (
	DefaultStorage         = "file"
	DefaultStorageKey      = "todos"
	DefaultLogDir          = "~/.sessiontodo/logs"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultRedisAddr       = "localhost:6379"
	DefaultRedisTTLSeconds = 24 * 60 * 60
)

// EnvSession names the environment variable that selects the session.
const EnvSession = "SESSIONTODO_SESSION"

// Config holds the full configuration for sessiontodo.
type Config struct {
	// Storage
	Storage    string `toml:"storage"`
	StorageKey string `toml:"storage_key"`
	SessionID  string `toml:"session_id"`
	SessionDir string `toml:"session_dir"`
	QuotaBytes int64  `toml:"quota_bytes"`

	// Optional JSON Schema used by the check command
	SchemaFile string `toml:"schema_file"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
	LogDir        string `toml:"log_dir"`

	Redis RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis storage medium.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// Session returns the session id, falling back to the invoking shell.
func (c *Config) Session() string {
	if id := storage.SanitizeSessionID(c.SessionID); id != "" {
		return id
	}
	return storage.DefaultSessionID()
}

// StorageOptions converts the configuration into storage options.
func (c *Config) StorageOptions() (storage.Options, error) {
	kind, err := storage.ParseKind(c.Storage)
	if err != nil {
		return storage.Options{}, err
	}
	return storage.Options{
		Kind:       kind,
		SessionID:  c.Session(),
		Dir:        c.SessionDir,
		QuotaBytes: c.QuotaBytes,
		Redis: storage.RedisOptions{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			TTL:      time.Duration(c.Redis.TTLSeconds) * time.Second,
		},
	}, nil
}

// Field is one printable configuration value.
type Field struct {
	Key   string
	Value string
}

// Fields lists every configuration value in display order. The redis
// password is masked.
func (c *Config) Fields() []Field {
	password := ""
	if c.Redis.Password != "" {
		password = "********"
	}
	return []Field{
		{"storage", c.Storage},
		{"storage_key", c.StorageKey},
		{"session_id", c.SessionID},
		{"session_dir", c.SessionDir},
		{"quota_bytes", strconv.FormatInt(c.QuotaBytes, 10)},
		{"schema_file", c.SchemaFile},
		{"log_level", c.LogLevel},
		{"log_format", c.LogFormat},
		{"log_timestamps", strconv.FormatBool(c.LogTimestamps)},
		{"log_caller", strconv.FormatBool(c.LogCaller)},
		{"log_dir", c.LogDir},
		{"redis.addr", c.Redis.Addr},
		{"redis.password", password},
		{"redis.db", strconv.Itoa(c.Redis.DB)},
		{"redis.ttl_seconds", strconv.Itoa(c.Redis.TTLSeconds)},
	}
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	var c Config
	fields := c.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Key
	}
	return names
}

func (c *Config) validate() error {
	if _, err := storage.ParseKind(c.Storage); err != nil {
		return err
	}
	if c.StorageKey == "" {
		return fmt.Errorf("storage_key must not be empty")
	}
	if c.QuotaBytes < 0 {
		return fmt.Errorf("quota_bytes must not be negative")
	}
	if c.Redis.TTLSeconds < 0 {
		return fmt.Errorf("redis.ttl_seconds must not be negative")
	}
	return nil
}
