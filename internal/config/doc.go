// Package config provides configuration management for shelfsync.
//
// This package handles:
//   - Locating and parsing the TOML configuration file
//   - Default configuration values
//   - API key resolution from the file or the environment
//   - Conversion to options for the client, orchestrator and report
//
// # Locating the File
//
// Load searches, in order: the explicit path, $SHELFSYNC_CONFIG,
// ~/.config/shelfsync/config.toml and ./shelfsync.toml. A missing file is
// not an error; the defaults apply.
//
//	settings, path, exists, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
// # Servers
//
// Each [servers.<name>] section names one Audiobookshelf server:
//
//	[servers.main]
//	url = "abs.example.com"   # https:// is added
//	api_key_env = "ABS_TOKEN" # or api_key = "...", or SHELFSYNC_MAIN_API_KEY
//
//	client, err := settings.NewClient("main", logger)
//
// # Default Settings
//
// DefaultSettings mirrors a gentle download profile: 3 concurrent items, a
// 1 second delay between downloads, 3 retries with 1s/2s/4s backoff and a
// 30 second API timeout.
//
// CreateSample writes an annotated configuration file; 'shelfsync config
// init' calls it.
package config
