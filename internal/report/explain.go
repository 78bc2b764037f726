package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/handiism/shelfsync/internal/match"
)

// WriteExplanation prints every key of a match.Explanation and the per-tier
// verdicts. With trace set it also prints the output of every normalization
// step.
func WriteExplanation(w io.Writer, ex match.Explanation, trace bool) error {
	var b strings.Builder
	b.WriteString("Book Matching Debug\n")

	for _, s := range []struct {
		label string
		side  match.Side
	}{{"Book A", ex.A}, {"Book B", ex.B}} {
		fmt.Fprintf(&b, "\n%s: %q by %q\n", s.label, s.side.Item.RawTitle, s.side.Item.RawAuthor)
		fmt.Fprintf(&b, "  normalized:   %q by %q\n", s.side.Key.TitleKey, s.side.Key.AuthorKey)
		fmt.Fprintf(&b, "  primary key:  %q\n", s.side.Key.Primary())
		fmt.Fprintf(&b, "  all authors:  %s\n", strings.Join(s.side.Authors, ", "))
		fmt.Fprintf(&b, "  duration:     %s, size: %s\n", FormatDuration(s.side.Item.DurationSeconds), FormatSize(s.side.Item.SizeBytes))
		if s.side.ExactKey != "" {
			fmt.Fprintf(&b, "  exact key:    %q\n", s.side.ExactKey)
			fmt.Fprintf(&b, "  flexible key: %q\n", s.side.FlexibleKey)
		}
		if trace {
			b.WriteString("  title steps:\n")
			for _, t := range s.side.TitleTrace {
				fmt.Fprintf(&b, "    %-20s %q\n", t.Step, t.Output)
			}
			b.WriteString("  author steps:\n")
			for _, t := range s.side.AuthorTrace {
				fmt.Fprintf(&b, "    %-20s %q\n", t.Step, t.Output)
			}
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Primary key equal:    %s\n", yesNo(ex.PrimaryEqual))
	fmt.Fprintf(&b, "Title equal:          %s\n", yesNo(ex.TitleEqual))
	fmt.Fprintf(&b, "Authors overlap:      %s\n", yesNo(ex.AuthorOverlap))
	fmt.Fprintf(&b, "Exact media equal:    %s\n", yesNo(ex.ExactEqual))
	fmt.Fprintf(&b, "Flexible media equal: %s\n", yesNo(ex.FlexibleEqual))

	if ex.Matched {
		fmt.Fprintf(&b, "\nResult: MATCH (%s)\n  %s\n", ex.Tier.Label(), ex.Reason)
	} else {
		b.WriteString("\nResult: NO MATCH\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
