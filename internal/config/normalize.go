package config

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/handiism/shelfsync/internal/abs"
)

func (s *Settings) normalize() error {
	s.normalizeServers()
	if err := s.normalizeDownload(); err != nil {
		return err
	}
	s.normalizeLogging()
	return nil
}

// normalizeServers resolves API keys: the file value first, then the
// variable named by api_key_env, then SHELFSYNC_<NAME>_API_KEY.
func (s *Settings) normalizeServers() {
	if s.Servers == nil {
		s.Servers = map[string]Server{}
	}
	for name, server := range s.Servers {
		server.URL = abs.NormalizeURL(server.URL)
		server.APIKey = strings.TrimSpace(server.APIKey)
		server.APIKeyEnv = strings.TrimSpace(server.APIKeyEnv)

		if server.APIKey == "" && server.APIKeyEnv != "" {
			server.APIKey = strings.TrimSpace(os.Getenv(server.APIKeyEnv))
		}
		if server.APIKey == "" {
			server.APIKey = strings.TrimSpace(os.Getenv(envKeyName(name)))
		}
		s.Servers[name] = server
	}
}

func (s *Settings) normalizeDownload() error {
	var err error
	if strings.TrimSpace(s.Download.Path) == "" {
		s.Download.Path = DefaultSettings().Download.Path
	}
	if s.Download.Path, err = expandPath(s.Download.Path); err != nil {
		return fmt.Errorf("download.path: %w", err)
	}
	s.Download.PlaylistFormat = strings.ToLower(strings.TrimSpace(s.Download.PlaylistFormat))
	if s.Download.PlaylistFormat == "" {
		s.Download.PlaylistFormat = "m3u"
	}
	return nil
}

func (s *Settings) normalizeLogging() {
	s.Logging.Level = strings.ToLower(strings.TrimSpace(s.Logging.Level))
	if s.Logging.Level == "" {
		s.Logging.Level = "info"
	}
	s.Logging.Format = strings.ToLower(strings.TrimSpace(s.Logging.Format))
	if s.Logging.Format == "" {
		s.Logging.Format = "console"
	}
	if file, err := expandPath(strings.TrimSpace(s.Logging.File)); err == nil {
		s.Logging.File = file
	}
}

// envKeyName returns SHELFSYNC_<NAME>_API_KEY with the server name
// upper-cased and every other character replaced by an underscore.
func envKeyName(server string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return unicode.ToUpper(r)
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, server)
	return "SHELFSYNC_" + name + "_API_KEY"
}
