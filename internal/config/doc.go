// Package config loads the fars configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/fars/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// The FARS_PASSWORD environment variable replaces the configured password
// in every case, so the password does not have to live in the file.
//
// # TOML Format
//
//	base_url = "https://fars.example.org"   # no trailing slash
//	username = "alice"
//	password = "secret"
//	login_path = "/login/"
//	api_path = "/api/"
//	session_cookie = "sessionid"
//	csrf_cookie = "csrftoken"
//	csrf_field = "csrfmiddlewaretoken"
//	bookable = "sauna"                      # default bookable filter
//	days = 7                                # booking window, see BookingsFromToday
//	legacy_query = false                    # send empty after/before keys
//	log_dir = "~/.local/share/fars/logs"
//	log_level = "info"                      # debug, info, warn, error
//
// All fields are optional. A missing base_url is not an error here; the
// client reports it on the first request.
//
// # Path Expansion
//
// Tilde expansion is applied to the config path and to log_dir. Relative
// paths are made absolute against the working directory.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parse errors
//   - login_path/api_path values that are not absolute URL paths
package config
