package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/handiism/shelfsync/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
//
// Each tag field can be configured independently to determine whether
// it should be modified, cleared, or left unchanged.
type TagEditAction int

const (
	// TagEmpty clears the tag value (sets to empty string).
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value from the catalog.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// audiobookGenre is written to TCON when Genre is TagModify.
const audiobookGenre = "Audiobook"

// TagConfig holds tagging configuration for each ID3 field.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags:  true,
//	    Artist:      TagModify,      // author from the catalog
//	    Album:       TagModify,      // book title from the catalog
//	    TrackTitle:  TagDoNotModify, // keep chapter names from the publisher
//	    Comments:    TagEmpty,
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no string tags are modified.
	ModifyTags bool

	// Artist controls the TPE1 (Lead artist) frame: the book's author.
	Artist TagEditAction

	// AlbumArtist controls the TPE2 (Album artist) frame: the book's author.
	AlbumArtist TagEditAction

	// Album controls the TALB (Album title) frame: the book title.
	Album TagEditAction

	// TrackNumber controls the TRCK (Track number) frame as "n/total".
	TrackNumber TagEditAction

	// TrackTitle controls the TIT2 (Title) frame. Modify writes
	// "<title> - Part n" when a book has several files.
	TrackTitle TagEditAction

	// Genre controls the TCON frame.
	Genre TagEditAction

	// Comments controls the COMM (Comments) frame.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration.
//
// Author, book title, track number and genre are written; existing track
// titles, which usually name chapters, are kept.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		Artist:      TagModify,
		AlbumArtist: TagModify,
		Album:       TagModify,
		TrackNumber: TagModify,
		TrackTitle:  TagDoNotModify,
		Genre:       TagModify,
		Comments:    TagDoNotModify,
	}
}

// Track is one MP3 file of a book, as passed to SaveTags.
type Track struct {
	Path   string
	Number int
	Total  int
}

// Tagger writes ID3 tags to the MP3 files of a downloaded book.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	n, err := tagger.TagBook(item, extractedFiles, coverJPEG)
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// TagBook tags every MP3 among files, numbering them in the order given.
// Other files are ignored. It returns the number of files tagged and stops
// at the first failure.
func (t *Tagger) TagBook(item model.CatalogItem, files []string, artwork []byte) (int, error) {
	var mp3s []string
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f), ".mp3") {
			mp3s = append(mp3s, f)
		}
	}

	for i, path := range mp3s {
		track := Track{Path: path, Number: i + 1, Total: len(mp3s)}
		if err := t.SaveTags(track, item, artwork); err != nil {
			return i, fmt.Errorf("failed to tag %s: %w", filepath.Base(path), err)
		}
	}
	return len(mp3s), nil
}

// SaveTags writes ID3 tags to one MP3 file.
//
// This method:
//  1. Opens the existing MP3 file (or creates empty tags if none exist)
//  2. Updates string tags based on TagConfig settings
//  3. Embeds cover art if artwork bytes are provided
//  4. Saves the modified tags to the file
func (t *Tagger) SaveTags(track Track, item model.CatalogItem, artwork []byte) error {
	tag, err := id3v2.Open(track.Path, id3v2.Options{Parse: true})
	if err != nil {
		if os.IsNotExist(err) {
			tag = id3v2.NewEmptyTag()
		} else {
			return err
		}
	}
	defer tag.Close()

	if t.config.ModifyTags {
		t.updateStringTags(tag, track, item)
	}

	if artwork != nil {
		t.updateArtwork(tag, artwork)
	}

	return tag.Save()
}

// updateStringTags updates text-based ID3 frames based on configuration.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, track Track, item model.CatalogItem) {
	// Artist (TPE1)
	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		tag.SetArtist(item.RawAuthor)
	}

	// Album Artist (TPE2)
	switch t.config.AlbumArtist {
	case TagEmpty:
		tag.DeleteFrames("TPE2")
	case TagModify:
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, item.RawAuthor)
	}

	// Album (TALB)
	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		tag.SetAlbum(item.RawTitle)
	}

	// Track Number (TRCK)
	switch t.config.TrackNumber {
	case TagEmpty:
		tag.DeleteFrames("TRCK")
	case TagModify:
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, fmt.Sprintf("%d/%d", track.Number, track.Total))
	}

	// Track Title (TIT2)
	switch t.config.TrackTitle {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		title := item.RawTitle
		if track.Total > 1 {
			title = fmt.Sprintf("%s - Part %d", item.RawTitle, track.Number)
		}
		tag.SetTitle(title)
	}

	// Genre (TCON)
	switch t.config.Genre {
	case TagEmpty:
		tag.SetGenre("")
	case TagModify:
		tag.SetGenre(audiobookGenre)
	}

	// Comments (COMM)
	if t.config.Comments == TagEmpty {
		tag.DeleteFrames(tag.CommonID("Comments"))
	}
}

// updateArtwork embeds cover art as an attached picture frame.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	// Remove any existing cover pictures
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	}
	tag.AddAttachedPicture(pic)
}
