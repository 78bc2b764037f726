package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/handiism/shelfsync/internal/audio"
	"github.com/handiism/shelfsync/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SHELFSYNC_CONFIG", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent")
	}
	if !strings.HasSuffix(resolved, filepath.Join(".config", "shelfsync", "config.toml")) {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}

	if cfg.Download.MaxConcurrent != 3 {
		t.Errorf("MaxConcurrent = %d, want 3", cfg.Download.MaxConcurrent)
	}
	if cfg.Download.Delay() != time.Second {
		t.Errorf("Delay() = %v, want 1s", cfg.Download.Delay())
	}
	if cfg.Download.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.Download.MaxRetries)
	}
	if cfg.Client.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v, want 30s", cfg.Client.Timeout())
	}
	if cfg.Client.MaxPages != 50 {
		t.Errorf("MaxPages = %d, want 50", cfg.Client.MaxPages)
	}
	if !filepath.IsAbs(cfg.Download.Path) || filepath.Base(cfg.Download.Path) != "downloads" {
		t.Errorf("Download.Path = %q, want absolute ./downloads", cfg.Download.Path)
	}
	if len(cfg.Servers) != 0 {
		t.Errorf("Servers = %v, want none", cfg.Servers)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[servers.main]
url = "abs.example.com/"
api_key = "k1"

[download]
path = "/srv/books"
max_concurrent = 5
delay_seconds = 0.5
organize_by_author = false
playlist_format = "PLS"

[client]
max_pages = 7

[logging]
level = "DEBUG"
format = "json"

[matching]
sample_size = 20

[matching.primary_authors]
"Terry Pratchett" = ["Neil Gaiman"]
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("Load resolved %q (exists=%v), want %q", resolved, exists, path)
	}

	server, err := cfg.Server("main")
	if err != nil {
		t.Fatalf("Server: %v", err)
	}
	if server.URL != "https://abs.example.com" {
		t.Errorf("URL = %q, want %q", server.URL, "https://abs.example.com")
	}
	if server.APIKey != "k1" {
		t.Errorf("APIKey = %q, want %q", server.APIKey, "k1")
	}

	if cfg.Download.Path != filepath.Clean("/srv/books") {
		t.Errorf("Download.Path = %q", cfg.Download.Path)
	}
	if cfg.Client.PageSize != 1000 {
		t.Errorf("PageSize = %d, want default 1000", cfg.Client.PageSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}

	opts := cfg.DownloadOptions()
	if opts.Concurrency != 5 || opts.InterDownloadDelay != 500*time.Millisecond {
		t.Errorf("DownloadOptions() = %+v", opts)
	}
	if !opts.FlatLayout {
		t.Error("organize_by_author = false should select the flat layout")
	}
	if opts.PlaylistFormat != audio.FormatPLS {
		t.Errorf("PlaylistFormat = %v, want PLS", opts.PlaylistFormat)
	}
	if got := cfg.ReportOptions().MissingSample; got != 20 {
		t.Errorf("MissingSample = %d, want 20", got)
	}
	if got := cfg.Normalizer().Author("Neil Gaiman, Terry Pratchett"); got != "terry pratchett" {
		t.Errorf("Normalizer().Author() = %q, want %q", got, "terry pratchett")
	}
}

func TestLoadUsesEnvConfigPath(t *testing.T) {
	path := writeConfig(t, "[client]\npage_size = 250\n")
	t.Setenv("SHELFSYNC_CONFIG", path)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved %q, want %q", resolved, path)
	}
	if cfg.Client.PageSize != 250 {
		t.Errorf("PageSize = %d, want 250", cfg.Client.PageSize)
	}
}

func TestServerAPIKeyFromEnvironment(t *testing.T) {
	path := writeConfig(t, `
[servers.home-lab]
url = "http://10.0.0.2:13378"

[servers.work]
url = "https://abs.work.example"
api_key_env = "WORK_ABS_TOKEN"

[servers.nokey]
url = "https://abs.other.example"
`)
	t.Setenv("SHELFSYNC_HOME_LAB_API_KEY", "from-default-env")
	t.Setenv("WORK_ABS_TOKEN", "from-named-env")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	tests := []struct {
		server string
		want   string
	}{
		{"home-lab", "from-default-env"},
		{"work", "from-named-env"},
	}
	for _, tt := range tests {
		server, err := cfg.Server(tt.server)
		if err != nil {
			t.Fatalf("Server(%q): %v", tt.server, err)
		}
		if server.APIKey != tt.want {
			t.Errorf("Server(%q).APIKey = %q, want %q", tt.server, server.APIKey, tt.want)
		}
	}

	if _, err := cfg.Server("nokey"); err == nil || !strings.Contains(err.Error(), "SHELFSYNC_NOKEY_API_KEY") {
		t.Errorf("Server(nokey) error = %v, want hint about SHELFSYNC_NOKEY_API_KEY", err)
	}
	if _, err := cfg.Server("missing"); !errors.Is(err, config.ErrUnknownServer) {
		t.Errorf("Server(missing) error = %v, want ErrUnknownServer", err)
	}
	if names := cfg.ServerNames(); strings.Join(names, ",") != "home-lab,nokey,work" {
		t.Errorf("ServerNames() = %v", names)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"concurrency", "[download]\nmax_concurrent = 0\n", "download.max_concurrent"},
		{"delay", "[download]\ndelay_seconds = -1\n", "download.delay_seconds"},
		{"retries", "[download]\nmax_retries = -2\n", "download.max_retries"},
		{"playlist", "[download]\nplaylist_format = \"xspf\"\n", "download.playlist_format"},
		{"pages", "[client]\nmax_pages = 0\n", "client.max_pages"},
		{"level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"server url", "[servers.a]\napi_key = \"k\"\n", "servers.a.url"},
		{"syntax", "[download\n", "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := config.Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(sample): %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if got := cfg.ServerNames(); len(got) != 2 {
		t.Errorf("ServerNames() = %v, want main and backup", got)
	}
}
