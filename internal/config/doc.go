// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.sessiontodo/sessiontodo.toml or OS-specific config directory)
// 3. Project config file (sessiontodo.toml or .sessiontodo.toml in the working directory)
// 4. Environment variables (SESSIONTODO_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.sessiontodo/sessiontodo.toml (preferred)
// - Windows: %APPDATA%\sessiontodo\sessiontodo.toml
// - macOS: ~/Library/Application Support/sessiontodo/sessiontodo.toml
// - Linux/BSD: $XDG_CONFIG_HOME/sessiontodo/sessiontodo.toml or ~/.config/sessiontodo/sessiontodo.toml
package config
