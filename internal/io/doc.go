// Package ioutils provides file system, archive and image utilities.
//
// This package contains functions for:
//   - File writing and directory creation
//   - Filename sanitization for cross-platform compatibility
//   - Zip archive extraction
//   - Cover image resizing and format conversion
//
// # File Operations
//
//	err := ioutils.EnsureDir("/books/Author/Title")
//	err = ioutils.WriteFile("/books/Author/Title/Title.m3u", content)
//
// # Filename Sanitization
//
//	safe := ioutils.SanitizeFileName("Dune: Part 1/2") // Returns "Dune_ Part 1_2"
//
// # Archive Extraction
//
// ExtractZip unpacks a downloaded item archive in place and rejects entries
// that would escape the destination:
//
//	files, err := ioutils.ExtractZip(ctx, layout.ArchivePath, layout.Dir)
//
// # Image Processing
//
//	svc := ioutils.NewImageService()
//	jpegData, err := svc.PrepareCover(ctx, raw, 1000)
package ioutils
