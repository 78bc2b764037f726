package normalize

import (
	"sort"
	"strings"

	"github.com/handiism/shelfsync/internal/model"
)

// DefaultOverrides lists authors whose books are credited with a regular
// co-contributor in either order. The key is the primary author; the values
// are the names that appear alongside.
func DefaultOverrides() map[string][]string {
	return map[string][]string{
		"chrissie wellington": {"lance armstrong"},
	}
}

// Normalizer computes canonical comparison keys.
//
// All methods are pure and safe for concurrent use. The zero value is not
// usable; call New.
//
// Example:
//
//	n := normalize.New(map[string][]string{"terry pratchett": {"neil gaiman"}})
//	key := n.Key(item)
//	fmt.Println(key.Primary()) // "terry pratchett|good omens"
type Normalizer struct {
	overrides map[string][]string
	primaries []string
}

// New returns a Normalizer using DefaultOverrides plus extra. Names in extra
// are folded to lowercase; entries for an existing primary are appended.
func New(extra map[string][]string) *Normalizer {
	overrides := DefaultOverrides()
	for primary, contributors := range extra {
		key := strings.ToLower(strings.TrimSpace(primary))
		if key == "" {
			continue
		}
		for _, c := range contributors {
			if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
				overrides[key] = append(overrides[key], c)
			}
		}
	}

	primaries := make([]string, 0, len(overrides))
	for primary := range overrides {
		primaries = append(primaries, primary)
	}
	sort.Strings(primaries)

	return &Normalizer{overrides: overrides, primaries: primaries}
}

var std = New(nil)

// Default returns the package-level Normalizer built from DefaultOverrides.
func Default() *Normalizer {
	return std
}

// Title reduces a raw title to its canonical comparison form. See Title.
func (n *Normalizer) Title(s string) string {
	return Title(s)
}

// Key computes every comparison key of a catalog item.
func (n *Normalizer) Key(item model.CatalogItem) model.NormalizedKey {
	return model.NormalizedKey{
		AuthorKey: n.Author(item.RawAuthor),
		CreditKey: n.CreditKey(item.RawAuthor),
		TitleKey:  Title(item.RawTitle),
	}
}

// knownPrimary checks the override table for a pair of names. Primaries are
// visited in sorted order so the result never depends on map iteration.
func (n *Normalizer) knownPrimary(first, second string) (string, bool) {
	for _, primary := range n.primaries {
		if primary != first && primary != second {
			continue
		}
		for _, contributor := range n.overrides[primary] {
			if contributor == first || contributor == second {
				return primary, true
			}
		}
	}
	return "", false
}

// Author normalizes a raw author credit with the default override table.
func Author(s string) string {
	return std.Author(s)
}

// CreditKey returns the primary-tier author key using the default override table.
func CreditKey(s string) string {
	return std.CreditKey(s)
}

// AllAuthors returns every author named in a raw credit.
func AllAuthors(s string) map[string]struct{} {
	return std.AllAuthors(s)
}
