// Package config loads booknotes configuration from YAML or TOML files.
//
// # Loading
//
// Load reads a file, expands ${VAR} references from the environment, decodes
// it over Default, parses duration strings and validates the result.
// LoadOrDefault falls back to Default when the file does not exist.
//
// # Example
//
//	database:
//	  path: /var/lib/booknotes/books.db
//	  driver: sqlite
//	  max_open_conns: 1
//	  busy_timeout: 5s
//	server:
//	  http_addr: 127.0.0.1:8080
//	logging:
//	  level: info
//	  format: text
package config
