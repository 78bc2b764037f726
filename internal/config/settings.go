package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// ErrUnknownServer is returned by Settings.Server for a name that has no
// [servers.<name>] section.
var ErrUnknownServer = errors.New("unknown server")

// Server is one Audiobookshelf server.
type Server struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`

	// APIKeyEnv names an environment variable holding the API key.
	APIKeyEnv string `toml:"api_key_env"`
}

// Download contains the download orchestrator settings.
type Download struct {
	Path             string  `toml:"path"`
	MaxConcurrent    int     `toml:"max_concurrent"`
	DelaySeconds     float64 `toml:"delay_seconds"`
	MaxRetries       int     `toml:"max_retries"`
	RetryBaseSeconds float64 `toml:"retry_base_seconds"`
	OrganizeByAuthor bool    `toml:"organize_by_author"`

	// Cover art settings
	IncludeCover      bool `toml:"include_cover"`
	ConvertCoverToJPG bool `toml:"convert_cover_to_jpg"`
	CoverMaxSize      int  `toml:"cover_max_size"`

	// Post-processing
	TagMP3         bool   `toml:"tag_mp3"`
	CreatePlaylist bool   `toml:"create_playlist"`
	PlaylistFormat string `toml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `toml:"m3u_extended"`
}

// Client contains the HTTP client settings.
type Client struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
	PageSize       int `toml:"page_size"`
	MaxPages       int `toml:"max_pages"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Matching contains reconciliation settings.
type Matching struct {
	// SampleSize is the number of missing items listed per side.
	SampleSize int `toml:"sample_size"`

	// PrimaryAuthors maps a primary author to the co-contributors that
	// appear alongside them, in addition to the built-in table.
	PrimaryAuthors map[string][]string `toml:"primary_authors"`
}

// Settings holds all configuration options.
type Settings struct {
	Servers  map[string]Server `toml:"servers"`
	Download Download          `toml:"download"`
	Client   Client            `toml:"client"`
	Logging  Logging           `toml:"logging"`
	Matching Matching          `toml:"matching"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Servers: map[string]Server{},
		Download: Download{
			Path:              "./downloads",
			MaxConcurrent:     3,
			DelaySeconds:      1.0,
			MaxRetries:        3,
			RetryBaseSeconds:  1.0,
			OrganizeByAuthor:  true,
			IncludeCover:      true,
			ConvertCoverToJPG: true,
			CoverMaxSize:      1000,
			TagMP3:            false,
			CreatePlaylist:    false,
			PlaylistFormat:    "m3u",
			M3UExtended:       true,
		},
		Client: Client{
			TimeoutSeconds: 30,
			PageSize:       1000,
			MaxPages:       50,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
		Matching: Matching{
			SampleSize: 10,
		},
	}
}

// DefaultConfigPath returns ~/.config/shelfsync/config.toml.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/shelfsync/config.toml")
}

// Load locates, parses, normalizes and validates a configuration file.
//
// With an empty path the file is searched in $SHELFSYNC_CONFIG,
// ~/.config/shelfsync/config.toml and ./shelfsync.toml, in that order. A
// missing file is not an error: defaults are returned and exists is false.
func Load(path string) (settings *Settings, resolved string, exists bool, err error) {
	settings = DefaultSettings()

	resolved, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(settings); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := settings.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := settings.Validate(); err != nil {
		return nil, "", false, err
	}
	return settings, resolved, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv("SHELFSYNC_CONFIG"))
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("shelfsync.toml")
	if err != nil {
		return "", false, err
	}

	for _, candidate := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// Server returns the named server with its API key resolved.
func (s *Settings) Server(name string) (Server, error) {
	server, ok := s.Servers[name]
	if !ok {
		known := s.ServerNames()
		if len(known) == 0 {
			return Server{}, fmt.Errorf("%w %q: no servers configured (create a config with 'shelfsync config init')", ErrUnknownServer, name)
		}
		return Server{}, fmt.Errorf("%w %q (configured: %s)", ErrUnknownServer, name, strings.Join(known, ", "))
	}
	if server.APIKey == "" {
		return Server{}, fmt.Errorf("servers.%s.api_key is required. Set %s or api_key_env", name, envKeyName(name))
	}
	return server, nil
}

// ServerNames returns the configured server names, sorted.
func (s *Settings) ServerNames() []string {
	names := make([]string, 0, len(s.Servers))
	for name := range s.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Timeout returns the API call timeout.
func (c Client) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Delay returns the inter-download delay.
func (d Download) Delay() time.Duration {
	return seconds(d.DelaySeconds)
}

// RetryBase returns the first retry backoff.
func (d Download) RetryBase() time.Duration {
	return seconds(d.RetryBaseSeconds)
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath applies the same ~ and relative path expansion as Load.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
