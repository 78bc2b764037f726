package normalize

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Unknown is the placeholder for an author credit that names nobody usable,
// such as a publisher or an empty string.
const Unknown = "unknown"

var (
	generationalSuffix = regexp.MustCompile(`(?i)[\s,]+(?:jr|sr|ii|iii|iv)\.?\s*$`)
	translatorCredit   = regexp.MustCompile(`(?i)\s*-\s*translator\s+(.+)$`)
	performerCredit    = regexp.MustCompile(`(?i)\s*-\s*(?:adaptation|narrator|reader|performed by).*$`)
	contributorCredit  = regexp.MustCompile(`(?i)\s*-\s*(?:foreword|foreward|introduction|preface|afterword|adaptation|narrator|reader|performed by).*$`)
	publisherName      = regexp.MustCompile(`(?i)audiobooks?!?|audio books?|recorded books?|blackstone audio`)
	placeholderAuthor  = regexp.MustCompile(`(?i)^\s*unknown(?:\s+author)?\s*$`)
	initialLetter      = regexp.MustCompile(`\b([a-z])\.`)
)

var (
	// Roles that mark the second name of a pair as a non-author contributor.
	prefaceRoles = []string{"foreword", "foreward", "introduction", "preface", "afterword"}

	// Any role at all; a name carrying one is never a co-author.
	contributorRoles = []string{
		"foreword", "foreward", "introduction", "preface", "afterword",
		"adaptation", "narrator", "reader", "translator", "performed by",
	}

	performerRoles   = []string{"adaptation", "narrator", "reader"}
	creatorRoleWords = []string{"author", "writer"}

	// Used when splitting for AllAuthors, where preface roles also rule out
	// the "Last, First" reading.
	allAuthorsExclusions = []string{"adaptation", "narrator", "reader", "foreword", "foreward", "introduction"}
)

// credit is an author string split into its primary author and any
// co-authors named alongside without a role marker.
type credit struct {
	primary   string
	coAuthors []string
}

func (n *Normalizer) authorSteps() []step {
	return []step{
		{"fold-unicode", foldUnicode},
		{"canonical-chars", canonicalSpacesAndDashes},
		{"generational-suffix", stripGenerationalSuffix},
		{"primary-author", func(s string) string { return n.resolveCredit(s).primary }},
		{"contribution-credit", stripContributionCredit},
		{"publisher", clearUnattributed},
		{"initials", normalizeInitials},
		{"punctuation", stripPunctuation},
	}
}

// Author reduces a raw author credit to its primary author in canonical form.
//
// Multi-author credits resolve to one name: "Last, First" is reordered,
// foreword contributors are dropped, the override table is consulted and
// otherwise the first listed author wins:
//
//	n.Author("J.R.R. Tolkien")                                // "j r r tolkien"
//	n.Author("Sanderson, Brandon")                            // "brandon sanderson"
//	n.Author("Chrissie Wellington, Lance Armstrong - foreward") // "chrissie wellington"
//	n.Author("Goosebumps Audiobooks!")                        // ""
//	n.Author("Unknown Author")                                // ""
//
// An empty result means the credit names nobody usable.
func (n *Normalizer) Author(s string) string {
	return run(n.authorSteps(), s)
}

// TraceAuthor returns the output of every author step for a single pass.
func (n *Normalizer) TraceAuthor(s string) []Trace {
	var trace []Trace
	pass(n.authorSteps(), s, &trace)
	return trace
}

// CreditKey returns the author part of the primary matching key.
//
// For a single author it equals Author. When the credit names co-authors
// without a role marker ("Spencer Johnson, Kenneth Blanchard") every author
// is normalized and the sorted names are joined with " & ", so the same
// co-authored credit matches regardless of author order but never matches a
// single-author credit.
func (n *Normalizer) CreditKey(s string) string {
	folded := stripGenerationalSuffix(canonicalSpacesAndDashes(foldUnicode(s)))
	c := n.resolveCredit(folded)
	if len(c.coAuthors) == 0 {
		return n.Author(s)
	}

	seen := make(map[string]struct{})
	var names []string
	for _, name := range append([]string{c.primary}, c.coAuthors...) {
		key := n.Author(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, key)
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return strings.Join(names, " & ")
}

// AllAuthors returns every author named in a raw credit, each normalized on
// its own. Publishers, names of two characters or fewer and contributor
// clauses are dropped. An empty credit, or one naming nobody usable, yields
// the set {Unknown}.
//
//	n.AllAuthors("Spencer Johnson, Kenneth Blanchard") // {spencer johnson, kenneth blanchard}
//	n.AllAuthors("R. L. Stine/Emily Eiden")            // {r l stine, emily eiden}
func (n *Normalizer) AllAuthors(s string) map[string]struct{} {
	set := make(map[string]struct{})
	if strings.TrimSpace(s) != "" {
		for _, name := range splitAllAuthors(canonicalSpacesAndDashes(foldUnicode(s))) {
			if v := singleAuthor(name); v != Unknown {
				set[v] = struct{}{}
			}
		}
	}
	if len(set) == 0 {
		set[Unknown] = struct{}{}
	}
	return set
}

// Overlap reports whether two author sets share a real author. Unknown never
// counts: two unattributed credits are not evidence of the same book.
func Overlap(a, b map[string]struct{}) bool {
	for name := range a {
		if name == Unknown {
			continue
		}
		if _, ok := b[name]; ok {
			return true
		}
	}
	return false
}

// AuthorsOverlap reports whether two raw credits name a common author.
func (n *Normalizer) AuthorsOverlap(a, b string) bool {
	return Overlap(n.AllAuthors(a), n.AllAuthors(b))
}

func (n *Normalizer) resolveCredit(s string) credit {
	if strings.Contains(s, "/") {
		parts := splitTrim(s, "/")
		return credit{primary: parts[0], coAuthors: coAuthors(parts[1:])}
	}
	if !strings.Contains(s, ",") {
		return credit{primary: s}
	}

	parts := splitTrim(s, ",")
	if len(parts) != 2 {
		return credit{primary: parts[0], coAuthors: coAuthors(parts[1:])}
	}

	first, second := parts[0], parts[1]
	switch {
	case containsAny(second, prefaceRoles):
		return credit{primary: first}
	case isLastFirst(first, second, performerRoles):
		return credit{primary: strings.TrimSpace(second + " " + first)}
	}
	if primary, ok := n.knownPrimary(first, second); ok {
		return credit{primary: primary}
	}
	return credit{primary: first, coAuthors: coAuthors([]string{second})}
}

// isLastFirst reports whether a two-part comma credit reads as
// "Surname, Given Names".
func isLastFirst(first, second string, excluded []string) bool {
	return len(strings.Fields(second)) <= 2 &&
		len(strings.Fields(first)) == 1 &&
		!containsAny(second, excluded) &&
		!containsAny(first, creatorRoleWords)
}

func splitAllAuthors(s string) []string {
	switch {
	case strings.Contains(s, "/"):
		return splitTrim(s, "/")
	case strings.Contains(s, ","):
		parts := splitTrim(s, ",")
		if len(parts) == 2 && isLastFirst(parts[0], parts[1], allAuthorsExclusions) {
			return []string{strings.TrimSpace(parts[1] + " " + parts[0])}
		}
		return parts
	default:
		return []string{s}
	}
}

// singleAuthor normalizes one name taken from a multi-author credit.
func singleAuthor(name string) string {
	s := contributorCredit.ReplaceAllString(name, "")
	if m := translatorCredit.FindStringSubmatch(s); m != nil {
		s = strings.TrimSpace(m[1])
	}
	s = stripGenerationalSuffix(s)
	if publisherName.MatchString(s) || placeholderAuthor.MatchString(s) {
		return Unknown
	}
	s = stripPunctuation(normalizeInitials(s))
	if utf8.RuneCountInString(s) <= 2 {
		return Unknown
	}
	return s
}

func coAuthors(parts []string) []string {
	var out []string
	for _, p := range parts {
		if p == "" || containsAny(p, contributorRoles) || publisherName.MatchString(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func stripGenerationalSuffix(s string) string {
	return generationalSuffix.ReplaceAllString(s, "")
}

// stripContributionCredit resolves " - translator X" to X, and otherwise
// drops trailing adaptation, narrator and reader credits.
func stripContributionCredit(s string) string {
	if m := translatorCredit.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return performerCredit.ReplaceAllString(s, "")
}

// clearUnattributed empties publisher credits and placeholders such as
// "Unknown Author".
func clearUnattributed(s string) string {
	if publisherName.MatchString(s) || placeholderAuthor.MatchString(s) {
		return ""
	}
	return s
}

// normalizeInitials turns "j.r.r." and "j. r. r." alike into "j r r".
func normalizeInitials(s string) string {
	return collapseSpace(initialLetter.ReplaceAllString(s, "${1} "))
}
