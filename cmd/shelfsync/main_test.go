package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/handiism/shelfsync/internal/download"
)

type book struct {
	id, title, author string
}

// newLibraryServer fakes an Audiobookshelf server with one library.
func newLibraryServer(t *testing.T, books ...book) *httptest.Server {
	t.Helper()

	byID := make(map[string]book, len(books))
	results := make([]map[string]any, 0, len(books))
	for _, b := range books {
		byID[b.id] = b
		results = append(results, itemJSON(b))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/libraries", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"libraries": []map[string]string{{"id": "lib1", "name": "Audiobooks", "mediaType": "book"}}})
	})
	mux.HandleFunc("GET /api/libraries/lib1/items", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"results": results, "total": len(results)})
	})
	mux.HandleFunc("GET /api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		b, ok := byID[r.PathValue("id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, itemJSON(b))
	})
	mux.HandleFunc("GET /api/items/{id}/download", func(w http.ResponseWriter, r *http.Request) {
		b, ok := byID[r.PathValue("id")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		zw := zip.NewWriter(w)
		f, err := zw.Create(b.title + ".mp3")
		if err == nil {
			_, _ = f.Write([]byte("audio"))
		}
		_ = zw.Close()
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func itemJSON(b book) map[string]any {
	return map[string]any{
		"id": b.id,
		"media": map[string]any{
			"metadata":      map[string]any{"title": b.title, "authorName": b.author},
			"numAudioFiles": 1,
		},
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// setupCLITestEnv isolates HOME and the working directory and writes a
// config for the given servers.
func setupCLITestEnv(t *testing.T, servers map[string]string) string {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("SHELFSYNC_CONFIG", "")
	t.Chdir(base)

	var b strings.Builder
	for name, url := range servers {
		fmt.Fprintf(&b, "[servers.%s]\nurl = %q\napi_key = \"secret\"\n\n", name, url)
	}
	fmt.Fprintf(&b, "[download]\npath = %q\ndelay_seconds = 0\nmax_retries = 0\ninclude_cover = false\n\n", filepath.Join(base, "downloads"))
	b.WriteString("[logging]\nlevel = \"error\"\n")

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func requireContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("output does not contain %q:\n%s", want, out)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	setupCLITestEnv(t, nil)

	target := filepath.Join(t.TempDir(), "shelfsync", "config.toml")
	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("second config init succeeded without --overwrite")
	}

	out, err = runCLI(t, "--config", target, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "https://backup.example.com")
}

func TestMatchDebug(t *testing.T) {
	setupCLITestEnv(t, nil)

	out, err := runCLI(t, "match-debug",
		"--title-a", "Who Moved My Cheese", "--author-a", "Spencer Johnson",
		"--title-b", "Who Moved My Cheese?", "--author-b", "Spencer Johnson, Kenneth Blanchard")
	if err != nil {
		t.Fatalf("match-debug: %v", err)
	}
	requireContains(t, out, "Book Matching Debug")
	requireContains(t, out, "who moved my cheese")
}

func TestLibrariesAndItems(t *testing.T) {
	primary := newLibraryServer(t, book{"li_1", "Steelheart", "Brandon Sanderson"})
	cfg := setupCLITestEnv(t, map[string]string{"main": primary.URL})

	out, err := runCLI(t, "--config", cfg, "libraries", "--server", "main")
	if err != nil {
		t.Fatalf("libraries: %v", err)
	}
	requireContains(t, out, "lib1")
	requireContains(t, out, "Audiobooks")

	out, err = runCLI(t, "--config", cfg, "items", "--server", "main", "--library", "lib1")
	if err != nil {
		t.Fatalf("items: %v", err)
	}
	requireContains(t, out, "Steelheart")
	requireContains(t, out, "1 item(s)")

	if _, err := runCLI(t, "--config", cfg, "items", "--server", "nope"); err == nil {
		t.Fatal("items on an unknown server succeeded")
	}
}

func TestDiffAndSync(t *testing.T) {
	primary := newLibraryServer(t,
		book{"li_1", "Steelheart", "Brandon Sanderson"},
		book{"li_2", "Dune", "Frank Herbert"},
	)
	backup := newLibraryServer(t,
		book{"bk_1", "Steelheart: A Reckoners Novel", "Brandon Sanderson"},
		book{"bk_2", "Elantris", "Brandon Sanderson"},
	)
	cfg := setupCLITestEnv(t, map[string]string{"main": primary.URL, "backup": backup.URL})

	out, err := runCLI(t, "--config", cfg, "diff", "--source", "main", "--target", "backup", "--yaml", "report.yaml")
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	requireContains(t, out, "Comparison Summary")
	requireContains(t, out, "Dune")
	requireContains(t, out, "1 missing on backup, 1 missing on main")
	if _, err := os.Stat("report.yaml"); err != nil {
		t.Fatalf("yaml report not written: %v", err)
	}

	dest := t.TempDir()
	out, err = runCLI(t, "--config", cfg, "sync", "--source", "main", "--target", "backup", "--dest", dest, "--dry-run")
	if err != nil {
		t.Fatalf("sync --dry-run: %v", err)
	}
	requireContains(t, out, "[Dry run] would download 1 item(s)")
	if _, err := os.Stat(filepath.Join(dest, "Frank Herbert")); !os.IsNotExist(err) {
		t.Fatalf("dry run wrote to the destination: %v", err)
	}

	out, err = runCLI(t, "--config", cfg, "sync", "--source", "main", "--target", "backup", "--dest", dest)
	if err != nil {
		t.Fatalf("sync: %v\n%s", err, out)
	}
	requireContains(t, out, "Complete! Downloaded 1/1")
	if _, err := os.Stat(filepath.Join(dest, "Frank Herbert", "Dune", "Dune.mp3")); err != nil {
		t.Fatalf("downloaded file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "Frank Herbert", "Dune", "Dune.zip")); !os.IsNotExist(err) {
		t.Fatalf("archive not removed: %v", err)
	}

	out, err = runCLI(t, "--config", cfg, "sync", "--source", "main", "--target", "backup", "--dest", dest, "--reverse")
	if err != nil {
		t.Fatalf("sync --reverse: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(dest, "Brandon Sanderson", "Elantris", "Elantris.mp3")); err != nil {
		t.Fatalf("reverse download missing: %v", err)
	}
}

func TestSyncRejectsSameServer(t *testing.T) {
	primary := newLibraryServer(t)
	cfg := setupCLITestEnv(t, map[string]string{"main": primary.URL})

	_, err := runCLI(t, "--config", cfg, "sync", "--source", "main", "--target", "main")
	if err != errSameServer {
		t.Fatalf("sync err = %v, want %v", err, errSameServer)
	}
}

func TestTrimAll(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"a"}, "a"},
		{[]string{"a, b", " ", "c"}, "a|b|c"},
	}
	for _, tt := range tests {
		if got := strings.Join(trimAll(tt.in), "|"); got != tt.want {
			t.Errorf("trimAll(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	emit := progressPrinter(&buf, false)

	emit(download.ProgressEvent{Message: "extracting", Level: download.LevelVerbose})
	emit(download.ProgressEvent{Message: "Downloaded: Dune", Level: download.LevelSuccess, Completed: 1, Total: 2})
	emit(download.ProgressEvent{Message: "Finished", Level: download.LevelInfo})

	want := "✓ [1/2] Downloaded: Dune\n› Finished\n"
	if buf.String() != want {
		t.Errorf("progress output = %q, want %q", buf.String(), want)
	}
}
