package match

import (
	"math"
	"strconv"
	"strings"

	"github.com/handiism/shelfsync/internal/model"
	"github.com/handiism/shelfsync/internal/normalize"
)

// Reasons attached to the groups of each tier.
const (
	ReasonPrimary          = "Matched by normalized author and title"
	ReasonAuthorOverlap    = "Matched by normalized title with overlapping authors"
	ReasonFallbackExact    = "Matched by title with identical duration and size"
	ReasonFallbackFlexible = "Matched by title with similar duration and size (tolerance applied)"
)

const (
	durationStep = 300              // seconds
	sizeStep     = 10 * 1024 * 1024 // bytes
	prefixWords  = 3
)

// Matcher partitions two catalogs into match groups and missing sets.
type Matcher struct {
	norm *normalize.Normalizer
}

// New returns a Matcher using n for every key. A nil n selects
// normalize.Default.
func New(n *normalize.Normalizer) *Matcher {
	if n == nil {
		n = normalize.Default()
	}
	return &Matcher{norm: n}
}

// Match partitions source and target with the default normalizer.
func Match(source, target []model.CatalogItem) *model.ReconciliationResult {
	return New(nil).Match(source, target)
}

// entry is one catalog item together with its precomputed keys.
type entry struct {
	item    model.CatalogItem
	key     model.NormalizedKey
	authors map[string]struct{}
	matched bool
}

func (m *Matcher) prepare(items []model.CatalogItem) []*entry {
	entries := make([]*entry, len(items))
	for i, item := range items {
		entries[i] = &entry{item: item, key: m.norm.Key(item)}
	}
	return entries
}

// allAuthors is computed on first use; only tier 2 needs it.
func (m *Matcher) allAuthors(e *entry) map[string]struct{} {
	if e.authors == nil {
		e.authors = m.norm.AllAuthors(e.item.RawAuthor)
	}
	return e.authors
}

// Match runs every tier in order and returns the partition.
//
// Each tier only sees items that no earlier tier matched. Groups are emitted
// tier by tier, and within a tier in the order their key first appears on
// the source side. Leftovers keep input order.
func (m *Matcher) Match(source, target []model.CatalogItem) *model.ReconciliationResult {
	src, tgt := m.prepare(source), m.prepare(target)

	result := &model.ReconciliationResult{
		SourceTotal: len(source),
		TargetTotal: len(target),
	}

	result.MatchGroups = append(result.MatchGroups, m.primary(src, tgt)...)
	result.MatchGroups = append(result.MatchGroups, m.authorOverlap(src, tgt)...)
	result.MatchGroups = append(result.MatchGroups,
		pairByKey(src, tgt, model.TierFallbackExact, ReasonFallbackExact, exactKey)...)
	result.MatchGroups = append(result.MatchGroups,
		pairByKey(src, tgt, model.TierFallbackFlexible, ReasonFallbackFlexible, flexibleKey)...)

	result.MissingInTarget = unmatched(src)
	result.MissingInSource = unmatched(tgt)
	return result
}

// primary matches every item sharing a primary key, on both sides, in a
// single group per key. Unattributed items are left to the later tiers.
func (m *Matcher) primary(src, tgt []*entry) []model.MatchGroup {
	primaryKey := func(e *entry) (string, bool) { return e.key.Primary(), e.key.HasAuthor() }
	keys, sourceGroups := index(src, primaryKey)
	_, targetGroups := index(tgt, primaryKey)

	var groups []model.MatchGroup
	for _, key := range keys {
		targets, ok := targetGroups[key]
		if !ok {
			continue
		}
		sources := sourceGroups[key]
		groups = append(groups, model.MatchGroup{
			Tier:        model.TierPrimary,
			SourceItems: consume(sources...),
			TargetItems: consume(targets...),
			Reason:      ReasonPrimary,
			Normalized: model.NormalizedInfo{
				Title:  sources[0].key.TitleKey,
				Author: sources[0].key.CreditKey,
				Key:    key,
			},
		})
	}
	return groups
}

// authorOverlap pairs items with the same title whose author sets
// intersect. Each source item takes the first available target, so a title
// never yields more pairs than the smaller side holds.
func (m *Matcher) authorOverlap(src, tgt []*entry) []model.MatchGroup {
	titleKey := func(e *entry) (string, bool) { return e.key.TitleKey, true }
	titles, sourceGroups := index(src, titleKey)
	_, targetGroups := index(tgt, titleKey)

	var groups []model.MatchGroup
	for _, title := range titles {
		targets, ok := targetGroups[title]
		if !ok {
			continue
		}
		for _, s := range sourceGroups[title] {
			for _, t := range targets {
				if t.matched || !normalize.Overlap(m.allAuthors(s), m.allAuthors(t)) {
					continue
				}
				groups = append(groups, model.MatchGroup{
					Tier:        model.TierAuthorOverlap,
					SourceItems: consume(s),
					TargetItems: consume(t),
					Reason:      ReasonAuthorOverlap,
					Normalized: model.NormalizedInfo{
						Title:        title,
						SourceAuthor: s.key.AuthorKey,
						TargetAuthor: t.key.AuthorKey,
						SourceKey:    s.key.Primary(),
						TargetKey:    t.key.Primary(),
					},
				})
				break
			}
		}
	}
	return groups
}

// pairByKey pairs items with equal keys one to one, in input order.
func pairByKey(src, tgt []*entry, tier model.Tier, reason string, keyFn func(*entry) (string, bool)) []model.MatchGroup {
	keys, sourceGroups := index(src, keyFn)
	_, targetGroups := index(tgt, keyFn)

	var groups []model.MatchGroup
	for _, key := range keys {
		sources, targets := sourceGroups[key], targetGroups[key]
		for i := 0; i < len(sources) && i < len(targets); i++ {
			s, t := sources[i], targets[i]
			groups = append(groups, model.MatchGroup{
				Tier:        tier,
				SourceItems: consume(s),
				TargetItems: consume(t),
				Reason:      reason,
				Normalized: model.NormalizedInfo{
					Title:          s.key.TitleKey,
					SourceAuthor:   s.key.AuthorKey,
					TargetAuthor:   t.key.AuthorKey,
					Key:            key,
					SourceKey:      s.key.Primary(),
					TargetKey:      t.key.Primary(),
					SourceDuration: s.item.DurationSeconds,
					TargetDuration: t.item.DurationSeconds,
					SourceSize:     s.item.SizeBytes,
					TargetSize:     t.item.SizeBytes,
				},
			})
		}
	}
	return groups
}

// index groups the unmatched entries by key. keys lists every key in the
// order it was first seen.
func index(entries []*entry, keyFn func(*entry) (string, bool)) (keys []string, groups map[string][]*entry) {
	groups = make(map[string][]*entry)
	for _, e := range entries {
		if e.matched {
			continue
		}
		key, ok := keyFn(e)
		if !ok {
			continue
		}
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], e)
	}
	return keys, groups
}

func consume(entries ...*entry) []model.CatalogItem {
	items := make([]model.CatalogItem, len(entries))
	for i, e := range entries {
		e.matched = true
		items[i] = e.item
	}
	return items
}

func unmatched(entries []*entry) []model.CatalogItem {
	var items []model.CatalogItem
	for _, e := range entries {
		if !e.matched {
			items = append(items, e.item)
		}
	}
	return items
}

// exactKey is "title|duration|size"; items without a size take no part.
func exactKey(e *entry) (string, bool) {
	if !e.item.HasSize() {
		return "", false
	}
	return e.key.TitleKey + "|" + e.item.DurationLabel() + "|" + strconv.FormatInt(e.item.SizeBytes, 10), true
}

// flexibleKey is "first three title words|duration to 5 min|size to 10 MiB".
func flexibleKey(e *entry) (string, bool) {
	if !e.item.HasSize() {
		return "", false
	}
	duration := "unknown"
	if e.item.HasDuration() {
		duration = strconv.FormatInt(roundTo(e.item.DurationSeconds, durationStep), 10)
	}
	size := strconv.FormatInt(roundTo(float64(e.item.SizeBytes), sizeStep), 10)
	return firstWords(e.key.TitleKey, prefixWords) + "|" + duration + "|" + size, true
}

func roundTo(v float64, step int64) int64 {
	return int64(math.Round(v/float64(step))) * step
}

func firstWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
