package report

import (
	"sort"
	"strings"

	"github.com/handiism/shelfsync/internal/model"
)

// Default sample sizes.
const (
	DefaultMissingSample = 10
	DefaultGroupSample   = 25
)

const unknownLibrary = "Unknown Library"

// Options bounds the samples kept in a Report. Zero values select the
// defaults; a negative value keeps everything.
type Options struct {
	MissingSample int
	GroupSample   int
}

func (o Options) withDefaults() Options {
	if o.MissingSample == 0 {
		o.MissingSample = DefaultMissingSample
	}
	if o.GroupSample == 0 {
		o.GroupSample = DefaultGroupSample
	}
	return o
}

// Entry is one catalog item as shown in a report.
type Entry struct {
	ID       string  `yaml:"id"`
	Title    string  `yaml:"title"`
	Author   string  `yaml:"author"`
	Library  string  `yaml:"library"`
	Duration float64 `yaml:"duration_seconds,omitempty"`
	Size     int64   `yaml:"size_bytes,omitempty"`
}

// LibraryCount is the number of items of one library.
type LibraryCount struct {
	Library string `yaml:"library"`
	Count   int    `yaml:"count"`
}

// Missing summarizes one side's missing items.
type Missing struct {
	Count     int            `yaml:"count"`
	ByLibrary []LibraryCount `yaml:"by_library,omitempty"`
	Sample    []Entry        `yaml:"sample,omitempty"`
}

// TierCount holds the matched counts of one tier.
type TierCount struct {
	Tier   model.Tier `yaml:"tier"`
	Groups int        `yaml:"groups"`
	Source int        `yaml:"source_items"`
	Target int        `yaml:"target_items"`
}

// Group is one match group as shown in a report.
type Group struct {
	Title      string               `yaml:"title"`
	Reason     string               `yaml:"reason"`
	Source     []Entry              `yaml:"source"`
	Target     []Entry              `yaml:"target"`
	Normalized model.NormalizedInfo `yaml:"normalized"`
}

// TierGroups holds a bounded sample of the groups of one tier.
type TierGroups struct {
	Tier   model.Tier `yaml:"tier"`
	Total  int        `yaml:"total"`
	Groups []Group    `yaml:"groups,omitempty"`
}

// Report aggregates a ReconciliationResult for display and export.
type Report struct {
	SourceTotal     int          `yaml:"source_total"`
	TargetTotal     int          `yaml:"target_total"`
	MatchedSource   int          `yaml:"matched_source"`
	MatchedTarget   int          `yaml:"matched_target"`
	Tiers           []TierCount  `yaml:"tiers"`
	MissingInTarget Missing      `yaml:"missing_in_target"`
	MissingInSource Missing      `yaml:"missing_in_source"`
	Matches         []TierGroups `yaml:"matches"`
}

// InSync reports whether neither side is missing anything.
func (r *Report) InSync() bool {
	return r.MissingInTarget.Count == 0 && r.MissingInSource.Count == 0
}

// Build aggregates result. Tiers are listed in matching order even when they
// matched nothing.
func Build(result *model.ReconciliationResult, opts Options) *Report {
	opts = opts.withDefaults()

	r := &Report{
		SourceTotal:     result.SourceTotal,
		TargetTotal:     result.TargetTotal,
		MatchedSource:   result.MatchedSource(),
		MatchedTarget:   result.MatchedTarget(),
		MissingInTarget: summarizeMissing(result.MissingInTarget, opts.MissingSample),
		MissingInSource: summarizeMissing(result.MissingInSource, opts.MissingSample),
	}

	for _, tier := range model.Tiers {
		groups := result.GroupsByTier(tier)

		count := TierCount{Tier: tier, Groups: len(groups)}
		sample := TierGroups{Tier: tier, Total: len(groups)}
		for i, g := range groups {
			count.Source += len(g.SourceItems)
			count.Target += len(g.TargetItems)
			if limit(i, opts.GroupSample) {
				sample.Groups = append(sample.Groups, newGroup(g))
			}
		}
		r.Tiers = append(r.Tiers, count)
		r.Matches = append(r.Matches, sample)
	}
	return r
}

func limit(i, max int) bool {
	return max < 0 || i < max
}

func summarizeMissing(items []model.CatalogItem, sample int) Missing {
	m := Missing{Count: len(items), ByLibrary: ByLibrary(items)}
	for i, item := range items {
		if !limit(i, sample) {
			break
		}
		m.Sample = append(m.Sample, newEntry(item))
	}
	return m
}

// ByLibrary counts items per library name, sorted case-insensitively.
func ByLibrary(items []model.CatalogItem) []LibraryCount {
	counts := make(map[string]int)
	for _, item := range items {
		counts[libraryName(item)]++
	}

	out := make([]LibraryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, LibraryCount{Library: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Library), strings.ToLower(out[j].Library)
		if a != b {
			return a < b
		}
		return out[i].Library < out[j].Library
	})
	return out
}

func libraryName(item model.CatalogItem) string {
	if item.LibraryName == "" {
		return unknownLibrary
	}
	return item.LibraryName
}

func newEntry(item model.CatalogItem) Entry {
	return Entry{
		ID:       item.ID,
		Title:    item.RawTitle,
		Author:   item.RawAuthor,
		Library:  libraryName(item),
		Duration: item.DurationSeconds,
		Size:     item.SizeBytes,
	}
}

func newEntries(items []model.CatalogItem) []Entry {
	out := make([]Entry, len(items))
	for i, item := range items {
		out[i] = newEntry(item)
	}
	return out
}

func newGroup(g model.MatchGroup) Group {
	title := "Unknown Title"
	switch {
	case len(g.SourceItems) > 0:
		title = g.SourceItems[0].RawTitle
	case len(g.TargetItems) > 0:
		title = g.TargetItems[0].RawTitle
	}
	return Group{
		Title:      title,
		Reason:     g.Reason,
		Source:     newEntries(g.SourceItems),
		Target:     newEntries(g.TargetItems),
		Normalized: g.Normalized,
	}
}
