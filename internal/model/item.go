package model

import (
	"strconv"
)

// CatalogItem is one audiobook as reported by a library server.
//
// CatalogItem is built once from the server payload (see the abs/dto package)
// and is never modified afterwards. Everything downstream of the client works
// on this typed form only.
//
// DurationSeconds and SizeBytes are optional: zero means the server did not
// report a value.
//
// Example:
//
//	item := CatalogItem{
//	    ID:              "li_8f2c",
//	    RawTitle:        "Steelheart: A Reckoners Novel",
//	    RawAuthor:       "Brandon Sanderson",
//	    DurationSeconds: 34920,
//	    SizeBytes:       503316480,
//	    LibraryID:       "lib_main",
//	    LibraryName:     "Audiobooks",
//	}
type CatalogItem struct {
	// ID is unique within the catalog that produced the item.
	ID string

	// RawTitle is the title exactly as the server reported it.
	RawTitle string

	// RawAuthor is the author credit exactly as the server reported it.
	RawAuthor string

	// DurationSeconds is the total play time. Zero means unknown.
	DurationSeconds float64

	// SizeBytes is the total size of the item's media files. Zero means unknown.
	SizeBytes int64

	// LibraryID identifies the library the item was listed in.
	LibraryID string

	// LibraryName is the human-readable name of that library.
	LibraryName string

	// CoverPath is the server-relative cover image path, if the listing had one.
	CoverPath string

	// HasAudio reports whether the item carries audio files.
	HasAudio bool

	// HasEbook reports whether the item carries an ebook file.
	HasEbook bool
}

// HasDuration returns true if the server reported a play time.
func (c CatalogItem) HasDuration() bool {
	return c.DurationSeconds > 0
}

// HasSize returns true if the server reported a media size.
func (c CatalogItem) HasSize() bool {
	return c.SizeBytes > 0
}

// DurationLabel formats the duration the way fallback keys embed it:
// the plain number of seconds, or "unknown".
func (c CatalogItem) DurationLabel() string {
	if !c.HasDuration() {
		return "unknown"
	}
	return strconv.FormatFloat(c.DurationSeconds, 'f', -1, 64)
}

// Formats returns a short description of the formats available for the item,
// such as "audio", "ebook" or "audio+ebook".
func (c CatalogItem) Formats() string {
	switch {
	case c.HasAudio && c.HasEbook:
		return "audio+ebook"
	case c.HasEbook:
		return "ebook"
	case c.HasAudio:
		return "audio"
	default:
		return "none"
	}
}

// Library is one library on a server.
type Library struct {
	ID        string
	Name      string
	MediaType string
}

// NormalizedKey holds the canonical comparison keys of a CatalogItem.
//
// AuthorKey is the primary author after normalization. CreditKey is the
// author part of the primary-tier key: it equals AuthorKey unless the credit
// names several co-authors, in which case it lists all of them in sorted
// order.
type NormalizedKey struct {
	AuthorKey string
	CreditKey string
	TitleKey  string
}

// Primary returns the key used by the primary matching tier.
func (k NormalizedKey) Primary() string {
	return k.CreditKey + "|" + k.TitleKey
}

// HasAuthor reports whether the credit named a usable author. Items without
// one never take part in the primary tier.
func (k NormalizedKey) HasAuthor() bool {
	return k.CreditKey != ""
}
