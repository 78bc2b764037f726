package ioutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ErrUnsafeArchivePath is returned when an archive entry would be written
// outside the destination directory.
var ErrUnsafeArchivePath = errors.New("archive entry escapes destination")

// ExtractZip extracts the archive at src into dest and returns the paths of
// the regular files it wrote, in archive order.
//
// Entries whose cleaned path leaves dest are rejected with
// ErrUnsafeArchivePath. The context is checked between entries, so a
// cancelled extraction stops at the next file boundary.
//
// Example:
//
//	files, err := ExtractZip(ctx, "/books/Author/Title/Title.zip", "/books/Author/Title")
//	if err != nil {
//	    // the archive is left in place for inspection
//	}
func ExtractZip(ctx context.Context, src, dest string) ([]string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	root, err := filepath.Abs(dest)
	if err != nil {
		return nil, err
	}
	if err := EnsureDir(root); err != nil {
		return nil, err
	}

	var written []string
	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		target := filepath.Join(root, f.Name)
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return written, fmt.Errorf("%w: %s", ErrUnsafeArchivePath, f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := EnsureDir(target); err != nil {
				return written, err
			}
			continue
		}

		if err := EnsureDir(filepath.Dir(target)); err != nil {
			return written, err
		}
		if err := extractEntry(f, target); err != nil {
			return written, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		written = append(written, target)
	}

	return written, nil
}

func extractEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
