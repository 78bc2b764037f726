package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/handiism/shelfsync/internal/model"
)

// WriteLibraries lists the libraries of one server.
func WriteLibraries(w io.Writer, libs []model.Library) error {
	if len(libs) == 0 {
		_, err := io.WriteString(w, "No libraries found.\n")
		return err
	}

	rows := make([][]string, 0, len(libs))
	for _, lib := range libs {
		rows = append(rows, []string{lib.ID, lib.Name, lib.MediaType})
	}
	_, err := fmt.Fprintln(w, renderTable([]string{"ID", "Name", "Media"}, rows, nil))
	return err
}

// WriteItems lists catalog items with their library, formats, duration and
// size, followed by the item count.
func WriteItems(w io.Writer, items []model.CatalogItem) error {
	if len(items) == 0 {
		_, err := io.WriteString(w, "No items found.\n")
		return err
	}

	rows := make([][]string, 0, len(items))
	for i, item := range items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			item.RawTitle,
			item.RawAuthor,
			libraryName(item),
			item.Formats(),
			FormatDuration(item.DurationSeconds),
			FormatSize(item.SizeBytes),
			item.ID,
		})
	}
	table := renderTable(
		[]string{"#", "Title", "Author", "Library", "Formats", "Duration", "Size", "ID"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
	_, err := fmt.Fprintf(w, "%s\n%d item(s)\n", table, len(items))
	return err
}
