package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	unicodeSpaces = regexp.MustCompile(`[\x{00A0}\x{2000}-\x{200B}\x{2060}\x{FEFF}]`)
	unicodeDashes = regexp.MustCompile(`[\x{2010}-\x{2015}\x{2212}]`)
	curlyQuotes   = regexp.MustCompile(`[\x{2018}\x{2019}\x{201C}\x{201D}]`)

	// Anything that is not a letter, digit, underscore or whitespace.
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// step is one named stage of a normalization pipeline.
type step struct {
	name string
	fn   func(string) string
}

// Trace records the output of every step of one pipeline pass.
type Trace struct {
	Step   string
	Output string
}

// maxPasses bounds run. Every pass after the first can only remove text,
// so real inputs settle after two or three passes.
const maxPasses = 16

// run applies steps in order until the output no longer changes, so the
// result is a fixed point of the pipeline and normalizing twice is a no-op.
func run(steps []step, s string) string {
	out := pass(steps, s, nil)
	for i := 1; i < maxPasses; i++ {
		next := pass(steps, out, nil)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func pass(steps []step, s string, trace *[]Trace) string {
	for _, st := range steps {
		s = st.fn(s)
		if trace != nil {
			*trace = append(*trace, Trace{Step: st.name, Output: s})
		}
	}
	return s
}

func foldUnicode(s string) string {
	return strings.ToLower(norm.NFKD.String(s))
}

func canonicalSpacesAndDashes(s string) string {
	s = unicodeSpaces.ReplaceAllString(s, " ")
	return unicodeDashes.ReplaceAllString(s, "-")
}

func canonicalQuotes(s string) string {
	return curlyQuotes.ReplaceAllString(s, "'")
}

func stripPunctuation(s string) string {
	return collapseSpace(punctuation.ReplaceAllString(s, ""))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
