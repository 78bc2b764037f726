package dto

import (
	"strings"

	"github.com/handiism/shelfsync/internal/model"
)

const (
	unknownTitle  = "Unknown Title"
	unknownAuthor = "Unknown Author"
)

// LibrariesResponse is the body of GET /api/libraries.
type LibrariesResponse struct {
	Libraries []Library `json:"libraries"`
}

// Library is one entry of LibrariesResponse.
type Library struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
}

// ToLibrary converts Library to a model.Library.
func (l Library) ToLibrary() model.Library {
	return model.Library{ID: l.ID, Name: l.Name, MediaType: l.MediaType}
}

// ItemPage is the body of GET /api/libraries/{id}/items. Depending on the
// server version the entries are under "results" or "items".
type ItemPage struct {
	Results []Item `json:"results"`
	Items   []Item `json:"items"`
	Total   int    `json:"total"`
	Limit   int    `json:"limit"`
	Page    int    `json:"page"`
}

// Entries returns the page's items from whichever field carries them.
func (p ItemPage) Entries() []Item {
	if len(p.Items) > 0 {
		return p.Items
	}
	return p.Results
}

// Item is a library item as returned by the list and detail endpoints.
// The list endpoint omits most of the media details.
type Item struct {
	ID        string `json:"id"`
	LibraryID string `json:"libraryId"`

	// Top-level fallbacks used by older servers.
	Title  string `json:"title"`
	Author string `json:"author"`

	Size      Number `json:"size"`
	CoverPath string `json:"coverPath"`
	Media     Media  `json:"media"`
}

// Media holds the book part of an Item.
type Media struct {
	Metadata      Metadata    `json:"metadata"`
	Duration      Number      `json:"duration"`
	Size          Number      `json:"size"`
	CoverPath     string      `json:"coverPath"`
	NumAudioFiles int         `json:"numAudioFiles"`
	AudioFiles    []AudioFile `json:"audioFiles"`
	EbookFormat   string      `json:"ebookFormat"`
	EbookFile     *EbookFile  `json:"ebookFile"`
}

// Metadata is the descriptive part of Media.
type Metadata struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	AuthorName string `json:"authorName"`
	Duration   Number `json:"duration"`
}

// AudioFile is one audio track of an item.
type AudioFile struct {
	Index    int          `json:"index"`
	Duration Number       `json:"duration"`
	Size     Number       `json:"size"`
	Metadata FileMetadata `json:"metadata"`
}

// FileMetadata describes the file behind an AudioFile or EbookFile.
type FileMetadata struct {
	Filename string `json:"filename"`
	Ext      string `json:"ext"`
	Size     Number `json:"size"`
}

// EbookFile is the ebook attached to an item.
type EbookFile struct {
	Metadata FileMetadata `json:"metadata"`
}

// Bytes returns the file size from whichever field reports it.
func (a AudioFile) Bytes() int64 {
	if a.Size > 0 {
		return a.Size.Int()
	}
	return a.Metadata.Size.Int()
}

// ToCatalogItem converts Item to a model.CatalogItem listed in lib.
//
// Missing values fall back in order:
//   - title: media.metadata.title, title, "Unknown Title"
//   - author: media.metadata.authorName, author, "Unknown Author"
//   - duration: media.duration, media.metadata.duration, first audio file
//   - size: size, media.size, sum of audio file sizes
func (it Item) ToCatalogItem(lib model.Library) model.CatalogItem {
	return model.CatalogItem{
		ID:              it.ID,
		RawTitle:        firstNonEmpty(it.Media.Metadata.Title, it.Title, unknownTitle),
		RawAuthor:       firstNonEmpty(it.Media.Metadata.AuthorName, it.Author, unknownAuthor),
		DurationSeconds: it.duration(),
		SizeBytes:       it.size(),
		LibraryID:       lib.ID,
		LibraryName:     lib.Name,
		CoverPath:       it.coverPath(),
		HasAudio:        it.Media.NumAudioFiles > 0 || len(it.Media.AudioFiles) > 0,
		HasEbook:        it.Media.EbookFile != nil || it.Media.EbookFormat != "",
	}
}

// ToItemDetails converts a detail payload to a model.ItemDetails.
// Audio files are returned in the server's track order.
func (it Item) ToItemDetails() model.ItemDetails {
	files := make([]model.AudioFile, 0, len(it.Media.AudioFiles))
	for _, af := range it.Media.AudioFiles {
		files = append(files, model.AudioFile{
			Name:     af.Metadata.Filename,
			Duration: af.Duration.Float(),
			Size:     af.Bytes(),
		})
	}
	return model.ItemDetails{
		ID:         it.ID,
		CoverPath:  it.coverPath(),
		AudioFiles: files,
	}
}

func (it Item) duration() float64 {
	switch {
	case it.Media.Duration > 0:
		return it.Media.Duration.Float()
	case it.Media.Metadata.Duration > 0:
		return it.Media.Metadata.Duration.Float()
	case len(it.Media.AudioFiles) > 0:
		return it.Media.AudioFiles[0].Duration.Float()
	}
	return 0
}

func (it Item) size() int64 {
	if it.Size > 0 {
		return it.Size.Int()
	}
	if it.Media.Size > 0 {
		return it.Media.Size.Int()
	}
	var total int64
	for _, af := range it.Media.AudioFiles {
		total += af.Bytes()
	}
	return total
}

func (it Item) coverPath() string {
	return firstNonEmpty(it.CoverPath, it.Media.CoverPath)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
