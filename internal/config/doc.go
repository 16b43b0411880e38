// Package config loads tablesync configuration files.
//
// # Configuration Discovery
//
// Load resolves the path in this order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/tablesync/config.toml
//  3. If the file doesn't exist, fall back to defaults (local mode, ten
//     rows per page, no columns)
//
// Files ending in .yaml or .yml are parsed with gopkg.in/yaml.v3; anything
// else is TOML.
//
// # Format
//
//	mode = "remote"          # or "local"
//	page_size = 10
//	refresh_seconds = 0      # auto-refresh; zero disables it
//	log_file = "~/.local/state/tablesync/tablesync.log"  # relative paths resolve against the config
//
//	[[columns]]
//	key = "team.name"        # dotted path into each row
//	title = "Team"
//	searchable = true
//	sortable = true
//
//	[local]
//	rows_file = "rows.json"  # JSON or YAML array, relative to the config
//
//	[remote]
//	url = "https://example.com/api/rows"
//	method = "GET"
//	timeout_ms = 30000
//	max_retries = 3
//	retry_base_delay_ms = 1000
//	debounce_ms = 300
//
//	[remote.headers]
//	Authorization = "Bearer ..."
//
//	[remote.paths]
//	rows = "data"
//	total = "total"
//	error = "error"
//	token = "draw"
//
//	[selection]
//	mode = "multi"           # or "single"
//	id_key = "id"
//	prune = false
//
//	[initial]
//	page = 1
//	search = ""
//	sort_by = "name"
//	sort_dir = "asc"
//
// Setting retry_base_delay_ms or debounce_ms to zero disables the delay;
// leaving them out keeps the defaults.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - Parse errors
//   - Invalid values (unknown mode, remote mode without a url, bad sort
//     direction), reported as view.KindConfig errors
package config
