package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"normal-file.mp3", "normal-file.mp3"},
		{"file:with:colons.mp3", "file_with_colons.mp3"},
		{"file<with>brackets.mp3", "file_with_brackets.mp3"},
		{"file/with\\slashes.mp3", "file_with_slashes.mp3"},
		{"file|with|pipes.mp3", "file_with_pipes.mp3"},
		{"file?with*wildcards.mp3", "file_with_wildcards.mp3"},
		{"file\"with\"quotes.mp3", "file_with_quotes.mp3"},
		{"trailing dots...", "trailing dots"},
		{"multiple   spaces", "multiple spaces"},
		{"  padded  ", "padded"},
		{"dot then space. ", "dot then space"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := SanitizeFileName(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "book.zip")
	writeZip(t, archive, map[string]string{
		"Chapter 01.mp3":       "one",
		"disc2/Chapter 02.mp3": "two",
	})

	files, err := ExtractZip(context.Background(), archive, dir)
	if err != nil {
		t.Fatalf("ExtractZip() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("ExtractZip() wrote %d files, want 2", len(files))
	}

	data, err := os.ReadFile(filepath.Join(dir, "disc2", "Chapter 02.mp3"))
	if err != nil {
		t.Fatalf("read extracted file: %v", err)
	}
	if string(data) != "two" {
		t.Errorf("extracted content = %q, want %q", data, "two")
	}
}

func TestExtractZip_RejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.zip")
	writeZip(t, archive, map[string]string{"../../outside.txt": "x"})

	dest := filepath.Join(dir, "dest")
	if _, err := ExtractZip(context.Background(), archive, dest); err == nil {
		t.Fatal("ExtractZip() should reject entries outside the destination")
	}
	if FileExists(filepath.Join(dir, "outside.txt")) {
		t.Error("escaping entry was written")
	}
}

func TestExtractZip_NotAnArchive(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.zip")
	if err := WriteFile(bogus, []byte("not a zip")); err != nil {
		t.Fatal(err)
	}

	if _, err := ExtractZip(context.Background(), bogus, dir); err == nil {
		t.Error("ExtractZip() on garbage should fail")
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPrepareCover_ConvertsPNG(t *testing.T) {
	svc := NewImageService()
	out, err := svc.PrepareCover(context.Background(), encodePNG(t, 40, 20), 1000)
	if err != nil {
		t.Fatalf("PrepareCover() error = %v", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q, want jpeg", format)
	}
	if cfg.Width != 40 || cfg.Height != 20 {
		t.Errorf("size = %dx%d, want 40x20", cfg.Width, cfg.Height)
	}
}

func TestPrepareCover_ResizesLargeImages(t *testing.T) {
	svc := NewImageService()
	out, err := svc.PrepareCover(context.Background(), encodePNG(t, 300, 150), 100)
	if err != nil {
		t.Fatalf("PrepareCover() error = %v", err)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("size = %dx%d, want 100x50", cfg.Width, cfg.Height)
	}
}

func TestPrepareCover_RejectsGarbage(t *testing.T) {
	svc := NewImageService()
	if _, err := svc.PrepareCover(context.Background(), []byte("nope"), 100); err == nil {
		t.Error("PrepareCover() on garbage should fail")
	}
}
