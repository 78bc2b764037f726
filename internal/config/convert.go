package config

import (
	"log/slog"

	"github.com/handiism/shelfsync/internal/abs"
	"github.com/handiism/shelfsync/internal/audio"
	"github.com/handiism/shelfsync/internal/download"
	"github.com/handiism/shelfsync/internal/normalize"
	"github.com/handiism/shelfsync/internal/report"
)

// ClientOptions converts the [client] section to abs client options.
func (s *Settings) ClientOptions(logger *slog.Logger) []abs.Option {
	return []abs.Option{
		abs.WithTimeout(s.Client.Timeout()),
		abs.WithPageSize(s.Client.PageSize),
		abs.WithMaxPages(s.Client.MaxPages),
		abs.WithLogger(logger),
	}
}

// NewClient creates a client for the named server. extra options are
// applied after the [client] section.
func (s *Settings) NewClient(name string, logger *slog.Logger, extra ...abs.Option) (*abs.Client, error) {
	server, err := s.Server(name)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("server", name)
	}
	return abs.NewClient(server.URL, server.APIKey, append(s.ClientOptions(logger), extra...)...), nil
}

// DownloadOptions converts the [download] section to orchestrator options.
func (s *Settings) DownloadOptions() download.Options {
	d := s.Download
	return download.Options{
		Destination:        d.Path,
		Concurrency:        d.MaxConcurrent,
		InterDownloadDelay: d.Delay(),
		MaxRetries:         d.MaxRetries,
		RetryBase:          d.RetryBase(),
		FlatLayout:         !d.OrganizeByAuthor,
		IncludeCover:       d.IncludeCover,
		ConvertCoverToJPG:  d.ConvertCoverToJPG,
		CoverMaxSize:       d.CoverMaxSize,
		TagMP3:             d.TagMP3,
		CreatePlaylist:     d.CreatePlaylist,
		PlaylistFormat:     audio.ParsePlaylistFormat(d.PlaylistFormat),
		PlaylistExtended:   d.M3UExtended,
	}
}

// Normalizer returns a normalizer including the configured primary authors.
func (s *Settings) Normalizer() *normalize.Normalizer {
	if len(s.Matching.PrimaryAuthors) == 0 {
		return normalize.Default()
	}
	return normalize.New(s.Matching.PrimaryAuthors)
}

// ReportOptions converts the [matching] section to report options.
func (s *Settings) ReportOptions() report.Options {
	return report.Options{MissingSample: s.Matching.SampleSize}
}
