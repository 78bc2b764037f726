package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/handiism/shelfsync/internal/download"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ansiBlue
	}
}

// printStatus writes one line, coloured when w is a terminal.
func printStatus(w io.Writer, kind statusKind, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if shouldColorize(w) {
		line = statusKindColor(kind) + line + ansiReset
	}
	fmt.Fprintln(w, line)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressPrinter renders batch events one per line. Verbose events are
// dropped unless verbose is set.
func progressPrinter(w io.Writer, verbose bool) func(download.ProgressEvent) {
	return func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !verbose {
			return
		}

		var prefix string
		kind := statusInfo
		switch event.Level {
		case download.LevelError:
			prefix, kind = "✗ ", statusError
		case download.LevelWarning:
			prefix, kind = "! ", statusWarn
		case download.LevelSuccess:
			prefix, kind = "✓ ", statusOK
		case download.LevelInfo:
			prefix = "› "
		default:
			prefix = "  "
		}

		if event.Total > 0 {
			printStatus(w, kind, "%s[%d/%d] %s", prefix, event.Completed, event.Total, event.Message)
			return
		}
		printStatus(w, kind, "%s%s", prefix, event.Message)
	}
}
