package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/handiism/shelfsync/internal/model"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range headers {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// WriteSummary writes the counts, the per-library breakdown of both missing
// lists and their samples.
func (r *Report) WriteSummary(w io.Writer) error {
	rows := [][]string{
		{"Items", strconv.Itoa(r.SourceTotal), strconv.Itoa(r.TargetTotal)},
	}
	for _, tc := range r.Tiers {
		rows = append(rows, []string{tc.Tier.Label(), strconv.Itoa(tc.Source), strconv.Itoa(tc.Target)})
	}
	rows = append(rows,
		[]string{"Matched", strconv.Itoa(r.MatchedSource), strconv.Itoa(r.MatchedTarget)},
		[]string{"Missing on the other side", strconv.Itoa(r.MissingInTarget.Count), strconv.Itoa(r.MissingInSource.Count)},
	)

	var b strings.Builder
	b.WriteString("Comparison Summary\n")
	b.WriteString(renderTable([]string{"", "Source", "Target"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}))
	b.WriteString("\n")

	writeMissing(&b, "Missing on target", r.MissingInTarget)
	writeMissing(&b, "Missing on source", r.MissingInSource)

	if r.InSync() {
		b.WriteString("\nNo missing items. Both servers are in sync.\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeMissing(b *strings.Builder, label string, m Missing) {
	if m.Count == 0 {
		return
	}

	rows := make([][]string, 0, len(m.ByLibrary))
	for _, lc := range m.ByLibrary {
		rows = append(rows, []string{lc.Library, strconv.Itoa(lc.Count)})
	}
	fmt.Fprintf(b, "\n%s (by library):\n", label)
	b.WriteString(renderTable([]string{"Library", "Items"}, rows, []columnAlignment{alignLeft, alignRight}))
	b.WriteString("\n")

	if len(m.Sample) == 0 {
		return
	}
	rows = rows[:0]
	for i, e := range m.Sample {
		rows = append(rows, []string{
			strconv.Itoa(i + 1), e.Title, e.Author, e.Library,
			FormatDuration(e.Duration), FormatSize(e.Size),
		})
	}
	fmt.Fprintf(b, "\nFirst %d entries:\n", len(m.Sample))
	b.WriteString(renderTable(
		[]string{"#", "Title", "Author", "Library", "Duration", "Size"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	))
	b.WriteString("\n")
	if more := m.Count - len(m.Sample); more > 0 {
		fmt.Fprintf(b, "  ... and %d more\n", more)
	}
}

// WriteMatches writes a bounded sample of the groups of every tier.
func (r *Report) WriteMatches(w io.Writer) error {
	var b strings.Builder
	b.WriteString("Matched Items\n")

	for _, tg := range r.Matches {
		fmt.Fprintf(&b, "\n%s: %d\n", tg.Tier.Label(), tg.Total)
		if len(tg.Groups) == 0 {
			continue
		}

		rows := make([][]string, 0, len(tg.Groups))
		for i, g := range tg.Groups {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				g.Title,
				summarizeSide(g.Source),
				summarizeSide(g.Target),
				normalizedSummary(g.Normalized),
				mediaDetails(g.Normalized),
			})
		}
		b.WriteString(renderTable(
			[]string{"#", "Title", "Source", "Target", "Normalized", "Details"},
			rows,
			[]columnAlignment{alignRight},
		))
		b.WriteString("\n")
		fmt.Fprintf(&b, "  Match reason: %s\n", tg.Groups[0].Reason)
		if more := tg.Total - len(tg.Groups); more > 0 {
			fmt.Fprintf(&b, "  ... and %d more\n", more)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteYAML encodes the whole report as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

// summarizeSide shows the first author and how many items each library holds,
// e.g. "Brandon Sanderson (Audiobooks x2)".
func summarizeSide(entries []Entry) string {
	if len(entries) == 0 {
		return "(none)"
	}

	var order []string
	counts := make(map[string]int)
	for _, e := range entries {
		if counts[e.Library] == 0 {
			order = append(order, e.Library)
		}
		counts[e.Library]++
	}

	parts := make([]string, len(order))
	for i, lib := range order {
		parts[i] = fmt.Sprintf("%s x%d", lib, counts[lib])
	}
	return fmt.Sprintf("%s (%s)", entries[0].Author, strings.Join(parts, ", "))
}

func normalizedSummary(n model.NormalizedInfo) string {
	var segments []string
	if n.Author != "" {
		segments = append(segments, fmt.Sprintf("author=%q", n.Author))
	} else {
		if n.SourceAuthor != "" {
			segments = append(segments, fmt.Sprintf("source_author=%q", n.SourceAuthor))
		}
		if n.TargetAuthor != "" {
			segments = append(segments, fmt.Sprintf("target_author=%q", n.TargetAuthor))
		}
	}
	segments = append(segments, fmt.Sprintf("title=%q", n.Title))
	if n.Key != "" {
		segments = append(segments, fmt.Sprintf("key=%q", n.Key))
	}
	return strings.Join(segments, "\n")
}

func mediaDetails(n model.NormalizedInfo) string {
	if n.SourceSize == 0 && n.TargetSize == 0 {
		return ""
	}
	return fmt.Sprintf("duration %s vs %s\nsize %s vs %s",
		FormatDuration(n.SourceDuration), FormatDuration(n.TargetDuration),
		FormatSize(n.SourceSize), FormatSize(n.TargetSize))
}

// FormatDuration renders seconds as "9h42m0s", or "-" when unknown.
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return time.Duration(seconds * float64(time.Second)).Round(time.Second).String()
}

// FormatSize renders bytes as "480 MiB", or "-" when unknown.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "-"
	}
	return humanize.IBytes(uint64(bytes))
}
