package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
//
// Servers are checked for a usable URL only; a missing API key is reported
// when the server is used (see Server).
func (s *Settings) Validate() error {
	if err := s.validateServers(); err != nil {
		return err
	}
	if err := s.validateDownload(); err != nil {
		return err
	}
	if err := s.validateClient(); err != nil {
		return err
	}
	if err := s.validateLogging(); err != nil {
		return err
	}
	if s.Matching.SampleSize < 0 {
		return errors.New("matching.sample_size must be zero or positive")
	}
	return nil
}

func (s *Settings) validateServers() error {
	for _, name := range s.ServerNames() {
		server := s.Servers[name]
		if server.URL == "" {
			return fmt.Errorf("servers.%s.url must be set", name)
		}
		u, err := url.Parse(server.URL)
		if err != nil || u.Host == "" {
			return fmt.Errorf("servers.%s.url %q is not a valid URL", name, server.URL)
		}
	}
	return nil
}

func (s *Settings) validateDownload() error {
	d := s.Download
	if d.MaxConcurrent < 1 {
		return errors.New("download.max_concurrent must be at least 1")
	}
	if d.DelaySeconds < 0 {
		return errors.New("download.delay_seconds must not be negative")
	}
	if d.MaxRetries < 0 {
		return errors.New("download.max_retries must not be negative")
	}
	if d.RetryBaseSeconds < 0 {
		return errors.New("download.retry_base_seconds must not be negative")
	}
	if d.CoverMaxSize < 0 {
		return errors.New("download.cover_max_size must not be negative")
	}
	switch d.PlaylistFormat {
	case "m3u", "pls", "wpl", "zpl":
	default:
		return fmt.Errorf("download.playlist_format %q must be one of m3u, pls, wpl, zpl", d.PlaylistFormat)
	}
	return nil
}

func (s *Settings) validateClient() error {
	if s.Client.TimeoutSeconds < 1 {
		return errors.New("client.timeout_seconds must be at least 1")
	}
	if s.Client.PageSize < 1 {
		return errors.New("client.page_size must be at least 1")
	}
	if s.Client.MaxPages < 1 {
		return errors.New("client.max_pages must be at least 1")
	}
	return nil
}

func (s *Settings) validateLogging() error {
	switch s.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", s.Logging.Level)
	}
	switch s.Logging.Format {
	case "console", "text", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", s.Logging.Format)
	}
	return nil
}
