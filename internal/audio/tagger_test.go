package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/handiism/shelfsync/internal/model"
)

func TestTagger_TagBook(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		filepath.Join(dir, "01.mp3"),
		filepath.Join(dir, "cover.jpg"),
		filepath.Join(dir, "02.MP3"),
	}
	for _, f := range files {
		if err := os.WriteFile(f, []byte("audio"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	item := model.CatalogItem{RawTitle: "Steelheart", RawAuthor: "Brandon Sanderson"}
	cfg := DefaultTagConfig()
	cfg.TrackTitle = TagModify

	n, err := NewTagger(cfg).TagBook(item, files, nil)
	if err != nil {
		t.Fatalf("TagBook() error = %v", err)
	}
	if n != 2 {
		t.Errorf("TagBook() tagged %d files, want 2", n)
	}

	tag, err := id3v2.Open(files[2], id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open tagged file: %v", err)
	}
	defer tag.Close()

	if got := tag.Artist(); got != "Brandon Sanderson" {
		t.Errorf("Artist = %q, want %q", got, "Brandon Sanderson")
	}
	if got := tag.Album(); got != "Steelheart" {
		t.Errorf("Album = %q, want %q", got, "Steelheart")
	}
	if got := tag.Title(); got != "Steelheart - Part 2" {
		t.Errorf("Title = %q, want %q", got, "Steelheart - Part 2")
	}
	if got := tag.Genre(); got != "Audiobook" {
		t.Errorf("Genre = %q, want %q", got, "Audiobook")
	}
	if got := tag.GetTextFrame("TRCK").Text; got != "2/2" {
		t.Errorf("TRCK = %q, want %q", got, "2/2")
	}

	// cover.jpg is untouched
	data, err := os.ReadFile(files[1])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "audio" {
		t.Errorf("non-mp3 file modified: %q", data)
	}
}

func TestTagger_NoModify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultTagConfig()
	cfg.ModifyTags = false

	item := model.CatalogItem{RawTitle: "Dune", RawAuthor: "Frank Herbert"}
	if _, err := NewTagger(cfg).TagBook(item, []string{path}, nil); err != nil {
		t.Fatalf("TagBook() error = %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer tag.Close()

	if tag.Artist() != "" {
		t.Errorf("Artist = %q, want empty", tag.Artist())
	}
}
