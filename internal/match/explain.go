package match

import (
	"sort"

	"github.com/handiism/shelfsync/internal/model"
	"github.com/handiism/shelfsync/internal/normalize"
)

// Side holds every key computed for one item of an Explanation.
type Side struct {
	Item        model.CatalogItem
	Key         model.NormalizedKey
	Authors     []string
	ExactKey    string
	FlexibleKey string
	TitleTrace  []normalize.Trace
	AuthorTrace []normalize.Trace
}

// Explanation describes how two single items fare against each tier.
type Explanation struct {
	A, B Side

	// Matched is false when no tier pairs the items; Tier and Reason are then empty.
	Matched bool
	Tier    model.Tier
	Reason  string

	PrimaryEqual  bool
	TitleEqual    bool
	AuthorOverlap bool
	ExactEqual    bool
	FlexibleEqual bool
}

// Explain reports every key of a and b and the tier, if any, that would
// match them when they are the only items on each side.
func (m *Matcher) Explain(a, b model.CatalogItem) Explanation {
	sa, sb := m.side(a), m.side(b)

	ex := Explanation{
		A:             sa,
		B:             sb,
		PrimaryEqual:  sa.Key.HasAuthor() && sa.Key.Primary() == sb.Key.Primary(),
		TitleEqual:    sa.Key.TitleKey == sb.Key.TitleKey,
		AuthorOverlap: m.norm.AuthorsOverlap(a.RawAuthor, b.RawAuthor),
		ExactEqual:    sa.ExactKey != "" && sa.ExactKey == sb.ExactKey,
		FlexibleEqual: sa.FlexibleKey != "" && sa.FlexibleKey == sb.FlexibleKey,
	}

	result := m.Match([]model.CatalogItem{a}, []model.CatalogItem{b})
	if len(result.MatchGroups) > 0 {
		g := result.MatchGroups[0]
		ex.Matched, ex.Tier, ex.Reason = true, g.Tier, g.Reason
	}
	return ex
}

func (m *Matcher) side(item model.CatalogItem) Side {
	e := &entry{item: item, key: m.norm.Key(item)}

	authors := make([]string, 0)
	for name := range m.allAuthors(e) {
		authors = append(authors, name)
	}
	sort.Strings(authors)

	s := Side{
		Item:        item,
		Key:         e.key,
		Authors:     authors,
		TitleTrace:  normalize.TraceTitle(item.RawTitle),
		AuthorTrace: m.norm.TraceAuthor(item.RawAuthor),
	}
	if k, ok := exactKey(e); ok {
		s.ExactKey = k
	}
	if k, ok := flexibleKey(e); ok {
		s.FlexibleKey = k
	}
	return s
}

// Explain compares two items with the default normalizer.
func Explain(a, b model.CatalogItem) Explanation {
	return New(nil).Explain(a, b)
}
