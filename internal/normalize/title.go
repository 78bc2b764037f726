package normalize

import (
	"regexp"
	"strings"
)

var (
	editionSuffix       = regexp.MustCompile(`(?i)\s*\([^)]*edition[^)]*\)\s*$`)
	versionSuffix       = regexp.MustCompile(`(?i)\s*\([^)]*version[^)]*\)\s*$`)
	trailingParenthesis = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	seriesNumber        = regexp.MustCompile(`(?i)(?:\b(?:book|bk|volume|vol\.?|part|episode)\s+\d+|#\d+)\b`)
	seriesSuffix        = regexp.MustCompile(`(?i)\s*-\s*[^-]*\bseries\b[^-]*$`)
	authorPrefix        = regexp.MustCompile(`^[A-Za-z.\s]+ - (?:[A-Za-z\s]+ - )?(.+)$`)
	leadingArticle      = regexp.MustCompile(`(?i)^\s*(?:the|a|an)\s+`)

	subtitleKeywords = []string{"story", "novel", "series", "tale", "book", "edition"}
)

var titleSteps = []step{
	{"fold-unicode", foldUnicode},
	{"canonical-chars", func(s string) string { return canonicalQuotes(canonicalSpacesAndDashes(s)) }},
	{"first-line", firstLine},
	{"edition", stripEdition},
	{"colon-subtitle", stripColonSubtitle},
	{"dash-subtitle", stripDashSubtitle},
	{"parenthetical", stripTrailingParenthetical},
	{"series-number", stripSeriesNumber},
	{"series-suffix", stripSeriesSuffix},
	{"author-prefix", stripAuthorPrefix},
	{"article", stripLeadingArticle},
	{"punctuation", stripPunctuation},
}

// Title reduces a raw title to its canonical comparison form.
//
// Subtitles, edition and series annotations, numbering, author prefixes and
// leading articles are removed:
//
//	Title("Steelheart: A Reckoners Novel")        // "steelheart"
//	Title("Be Useful (German edition)")           // "be useful"
//	Title("R.L. Stine - Goosebumps - The Haunted Mask II") // "haunted mask ii"
func Title(s string) string {
	return run(titleSteps, s)
}

// TraceTitle returns the output of every title step for a single pass.
func TraceTitle(s string) []Trace {
	var trace []Trace
	pass(titleSteps, s, &trace)
	return trace
}

// firstLine keeps the first non-empty line; audiobook metadata sometimes
// carries the synopsis after the title.
func firstLine(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return s
}

func stripEdition(s string) string {
	s = editionSuffix.ReplaceAllString(s, "")
	return versionSuffix.ReplaceAllString(s, "")
}

func stripColonSubtitle(s string) string {
	before, _, found := strings.Cut(s, ":")
	if !found {
		return s
	}
	return strings.TrimSpace(before)
}

// stripDashSubtitle drops the part after " - " only when the split is
// unambiguous (exactly two parts) and the second part reads like a subtitle.
func stripDashSubtitle(s string) string {
	parts := strings.Split(s, " - ")
	if len(parts) != 2 {
		return s
	}
	second := strings.TrimSpace(parts[1])
	if len(strings.Fields(second)) >= 2 || containsAny(second, subtitleKeywords) {
		return strings.TrimSpace(parts[0])
	}
	return s
}

func stripTrailingParenthetical(s string) string {
	return trailingParenthesis.ReplaceAllString(s, "")
}

func stripSeriesNumber(s string) string {
	return collapseSpace(seriesNumber.ReplaceAllString(s, " "))
}

func stripSeriesSuffix(s string) string {
	return seriesSuffix.ReplaceAllString(s, "")
}

func stripAuthorPrefix(s string) string {
	if m := authorPrefix.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

func stripLeadingArticle(s string) string {
	return leadingArticle.ReplaceAllString(s, "")
}
