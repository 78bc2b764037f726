// Package audio post-processes downloaded audiobooks: ID3 tag writing and
// playlist generation.
//
// # ID3 Tagging
//
// Use the Tagger to write catalog metadata into the MP3 files of a book:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	n, err := tagger.TagBook(item, extractedFiles, coverJPEG)
//
// Files are numbered in the order given. The tagger supports:
//   - Artist, Album Artist (the author credit)
//   - Album (the book title)
//   - Track Number as "n/total", Track Title
//   - Genre
//   - Cover Art (embedded in MP3)
//
// Non-MP3 files (m4b, flac, ...) are skipped.
//
// # Playlist Generation
//
// Generate a playlist over the extracted audio files:
//
//	pl := audio.NewPlaylist(item, details, layout.Dir, extractedFiles)
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(pl)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
