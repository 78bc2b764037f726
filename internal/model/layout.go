package model

import (
	"path/filepath"
	"strings"

	ioutils "github.com/handiism/shelfsync/internal/io"
)

const (
	unknownAuthor = "Unknown Author"
	unknownTitle  = "Unknown Title"

	// Windows MAX_PATH limits for folders and files.
	maxFolderPath = 248
	maxFilePath   = 260
)

// LayoutConfig holds the settings that decide where an item lands on disk.
//
// Example:
//
//	cfg := &LayoutConfig{
//	    Root:             "/srv/audiobooks",
//	    OrganizeByAuthor: true,
//	    CoverFileName:    "cover.jpg",
//	}
type LayoutConfig struct {
	// Root is the destination directory for all downloads.
	Root string

	// OrganizeByAuthor selects Root/<author>/<title>. When false the item
	// goes to Root/<author> - <title>.
	OrganizeByAuthor bool

	// CoverFileName is the file name of the saved cover image.
	CoverFileName string

	// PlaylistFileName is the file name of the generated playlist, without
	// extension. Empty means the sanitized title.
	PlaylistFileName string
}

// ItemLayout is the set of local paths used while downloading one item.
//
// Paths are computed by NewItemLayout and never change afterwards:
//
//	layout := NewItemLayout(item, cfg)
//	// layout.Dir         = "/srv/audiobooks/Brandon Sanderson/Steelheart"
//	// layout.ArchivePath = "/srv/audiobooks/Brandon Sanderson/Steelheart/Steelheart.zip"
//	// layout.CoverPath   = "/srv/audiobooks/Brandon Sanderson/Steelheart/cover.jpg"
type ItemLayout struct {
	// Dir is the item directory. The archive is extracted here.
	Dir string

	// ArchivePath is the staging file the archive is streamed to.
	ArchivePath string

	// CoverPath is where the cover image is saved.
	CoverPath string

	// PlaylistPath is where the playlist is written, without extension.
	PlaylistPath string
}

// NewItemLayout computes the local paths for an item.
//
// Author and title are sanitized for use as path components. Missing values
// fall back to "Unknown Author" and "Unknown Title". Paths are truncated if
// they exceed Windows path length limits (248 for folders, 260 for files).
func NewItemLayout(item CatalogItem, cfg *LayoutConfig) *ItemLayout {
	author := safeComponent(item.RawAuthor, unknownAuthor)
	title := safeComponent(item.RawTitle, unknownTitle)

	var dir string
	if cfg.OrganizeByAuthor {
		dir = filepath.Join(cfg.Root, author, title)
	} else {
		dir = filepath.Join(cfg.Root, author+" - "+title)
	}
	if len(dir) >= maxFolderPath {
		dir = dir[:maxFolderPath-1]
	}

	coverName := cfg.CoverFileName
	if coverName == "" {
		coverName = "cover.jpg"
	}

	playlistName := title
	if cfg.PlaylistFileName != "" {
		playlistName = ioutils.SanitizeFileName(cfg.PlaylistFileName)
	}

	return &ItemLayout{
		Dir:          dir,
		ArchivePath:  limitFilePath(dir, title, ".zip"),
		CoverPath:    filepath.Join(dir, coverName),
		PlaylistPath: limitFilePath(dir, playlistName, ""),
	}
}

func safeComponent(value, fallback string) string {
	value = strings.TrimSpace(value)
	if i := strings.IndexByte(value, '\n'); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	safe := ioutils.SanitizeFileName(value)
	if safe == "" {
		return fallback
	}
	return safe
}

// limitFilePath joins dir and name+ext, shortening name when the result
// would exceed the file path limit.
func limitFilePath(dir, name, ext string) string {
	full := filepath.Join(dir, name+ext)
	if len(full) < maxFilePath {
		return full
	}
	room := maxFilePath - 1 - len(dir) - 1 - len(ext)
	if room < 1 {
		room = 1
	}
	if room < len(name) {
		name = strings.TrimRight(name[:room], " ")
	}
	return filepath.Join(dir, name+ext)
}
