package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# sessiontodo configuration file
# Values can be overridden by SESSIONTODO_* environment variables or CLI flags

# Storage medium: memory, file or redis
storage = "file"

# Key holding the task list within the session
storage_key = "todos"

# Session id. Empty means the invoking shell, so each new shell starts fresh.
# Can also be set with SESSIONTODO_SESSION.
# session_id = "work"

# Base directory for file sessions (default: $TMPDIR/sessiontodo)
# session_dir = "/tmp/sessiontodo"

# Storage quota in bytes (default: 5 MiB)
quota_bytes = 5242880

# JSON Schema used by "sessiontodo check" (default: built in)
# schema_file = "tasks.schema.json"

# Logging
log_level = "info"       # debug, info, warn, error
log_format = "text"      # text, json, logfmt
log_timestamps = false
log_caller = false
log_dir = "~/.sessiontodo/logs"

[redis]
addr = "localhost:6379"
# password = ""
db = 0
ttl_seconds = 86400      # sliding expiry; 0 disables it
`
}
