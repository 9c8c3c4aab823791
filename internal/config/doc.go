// Package config handles configuration loading for bookmarkd.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// Optional fields receive defaults before validation.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from BOOKMARKD_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/bookmarkd/config.yaml
//  3. ~/.config/bookmarkd/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	session:
//	  secret: "${BOOKMARKD_SESSION_SECRET}"
//
// Unset variables expand to the empty string.
//
// # Configuration Sections
//
// Server:
//
//	server:
//	  http_addr: "localhost:8080"
//
// Storage:
//
//	storage:
//	  backend: file                 # file, sqlite, memory
//	  path: "~/.local/share/bookmarkd/bookmarks.json"
//	  format: ""                    # json, yaml, toml; inferred from extension when empty
//
// Sessions:
//
//	session:
//	  secret: "${BOOKMARKD_SESSION_SECRET}"  # at least 32 bytes
//	  ttl: "20m"
//	  max_sessions: 10000
//	  secure_cookies: false
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
