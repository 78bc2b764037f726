package audio

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/shelfsync/internal/model"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for duration/title info.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS

	// FormatWPL creates .wpl files (Windows Media Player).
	FormatWPL

	// FormatZPL creates .zpl files (Zune/Groove Music).
	FormatZPL
)

// ParsePlaylistFormat maps a configuration value to a PlaylistFormat.
// Unknown values select M3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pls":
		return FormatPLS
	case "wpl":
		return FormatWPL
	case "zpl":
		return FormatZPL
	default:
		return FormatM3U
	}
}

// Extension returns the file extension for the format, including the dot.
func (f PlaylistFormat) Extension() string {
	switch f {
	case FormatPLS:
		return ".pls"
	case FormatWPL:
		return ".wpl"
	case FormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// audioExtensions lists the file types that go into a playlist.
var audioExtensions = map[string]bool{
	".mp3": true, ".m4b": true, ".m4a": true, ".aac": true, ".ogg": true,
	".opus": true, ".flac": true, ".wav": true, ".wma": true,
}

// IsAudioFile reports whether path has a known audio extension.
func IsAudioFile(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// Entry is one playlist line.
type Entry struct {
	// Path is relative to the playlist file.
	Path     string
	Title    string
	Duration float64
}

// Playlist is the ordered list of audio files of one book.
type Playlist struct {
	Title   string
	Author  string
	Entries []Entry
}

// NewPlaylist builds a playlist from the files extracted into dir.
//
// Only audio files are kept, in the order given. Durations come from the
// item's audio file list, matched by file name.
func NewPlaylist(item model.CatalogItem, details model.ItemDetails, dir string, files []string) Playlist {
	durations := make(map[string]float64, len(details.AudioFiles))
	for _, af := range details.AudioFiles {
		durations[af.Name] = af.Duration
	}

	p := Playlist{Title: item.RawTitle, Author: item.RawAuthor}
	for _, f := range files {
		if !IsAudioFile(f) {
			continue
		}
		rel, err := filepath.Rel(dir, f)
		if err != nil {
			rel = filepath.Base(f)
		}
		name := filepath.Base(f)
		p.Entries = append(p.Entries, Entry{
			Path:     filepath.ToSlash(rel),
			Title:    strings.TrimSuffix(name, filepath.Ext(name)),
			Duration: durations[name],
		})
	}
	return p
}

// PlaylistCreator generates playlist files in various formats.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(playlist)
//	os.WriteFile(layout.PlaylistPath+FormatM3U.Extension(), []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:1800,Brandon Sanderson - Steelheart 01
//	// Steelheart 01.mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// Parameters:
//   - format: The playlist format to generate
//   - extended: For M3U format, whether to include #EXTINF lines
//     (ignored for other formats)
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the creator's playlist format.
func (p *PlaylistCreator) Format() PlaylistFormat {
	return p.format
}

// CreatePlaylist generates playlist content for a book.
//
// Paths in the playlist are relative, assuming the playlist file sits in
// the book directory.
func (p *PlaylistCreator) CreatePlaylist(pl Playlist) string {
	switch p.format {
	case FormatPLS:
		return p.createPLS(pl)
	case FormatWPL:
		return p.createWPL(pl)
	case FormatZPL:
		return p.createZPL(pl)
	default:
		return p.createM3U(pl)
	}
}

// createM3U generates an M3U playlist.
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#EXTINF:1800,Author - Title
//	filename1.mp3
func (p *PlaylistCreator) createM3U(pl Playlist) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, e := range pl.Entries {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s - %s\n", int(e.Duration), pl.Author, e.Title)
		}
		sb.WriteString(e.Path + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
//	[playlist]
//	File1=filename1.mp3
//	Title1=Title
//	Length1=1800
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(pl Playlist) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, e := range pl.Entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, e.Path)
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, e.Title)
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, int(e.Duration))
	}

	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(pl.Entries))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// createWPL generates a Windows Media Player playlist.
func (p *PlaylistCreator) createWPL(pl Playlist) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(pl.Title))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range pl.Entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(e.Path))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL generates a Zune/Groove Music playlist with album, author and
// duration attributes.
func (p *PlaylistCreator) createZPL(pl Playlist) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(pl.Title))
	sb.WriteString("    <meta name=\"Generator\" content=\"shelfsync\"/>\n")
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(pl.Entries))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range pl.Entries {
		duration := time.Duration(e.Duration * float64(time.Second))
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" albumArtist=\"%s\" trackTitle=\"%s\" duration=\"%d\"/>\n",
			escapeXML(e.Path),
			escapeXML(pl.Title),
			escapeXML(pl.Author),
			escapeXML(e.Title),
			duration.Milliseconds())
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// escapeXML escapes special XML characters in a string.
//
// Replaces: & < > " '
// With:     &amp; &lt; &gt; &quot; &apos;
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
