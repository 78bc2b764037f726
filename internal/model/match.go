package model

// Tier names one of the ordered matching strategies.
type Tier string

const (
	// TierPrimary matches on normalized author and title.
	TierPrimary Tier = "primary"

	// TierAuthorOverlap matches on normalized title when the author sets intersect.
	TierAuthorOverlap Tier = "author_overlap"

	// TierFallbackExact matches on title, exact duration and exact size.
	TierFallbackExact Tier = "fallback_exact"

	// TierFallbackFlexible matches on the first title words, rounded duration and rounded size.
	TierFallbackFlexible Tier = "fallback_flexible"
)

// Tiers lists every tier in the order the matcher runs them.
var Tiers = []Tier{TierPrimary, TierAuthorOverlap, TierFallbackExact, TierFallbackFlexible}

// Rank returns the position of the tier in the matching order, or -1.
func (t Tier) Rank() int {
	for i, tier := range Tiers {
		if tier == t {
			return i
		}
	}
	return -1
}

// Label returns a display name for the tier.
func (t Tier) Label() string {
	switch t {
	case TierPrimary:
		return "Primary (author + title)"
	case TierAuthorOverlap:
		return "Author overlap"
	case TierFallbackExact:
		return "Fallback (exact duration/size)"
	case TierFallbackFlexible:
		return "Fallback (flexible duration/size)"
	default:
		return string(t)
	}
}

// NormalizedInfo records the normalized values that produced a match.
type NormalizedInfo struct {
	Title        string `yaml:"title"`
	Author       string `yaml:"author,omitempty"`
	SourceAuthor string `yaml:"source_author,omitempty"`
	TargetAuthor string `yaml:"target_author,omitempty"`
	Key          string `yaml:"key,omitempty"`
	SourceKey    string `yaml:"source_key,omitempty"`
	TargetKey    string `yaml:"target_key,omitempty"`

	// Populated by the fallback tiers only.
	SourceDuration float64 `yaml:"source_duration,omitempty"`
	TargetDuration float64 `yaml:"target_duration,omitempty"`
	SourceSize     int64   `yaml:"source_size,omitempty"`
	TargetSize     int64   `yaml:"target_size,omitempty"`
}

// MatchGroup is a set of source items and target items judged to be the same
// audiobook by one tier.
type MatchGroup struct {
	Tier        Tier
	SourceItems []CatalogItem
	TargetItems []CatalogItem
	Reason      string
	Normalized  NormalizedInfo
}

// ReconciliationResult partitions two catalogs.
//
// Every source item appears in exactly one of a MatchGroup or
// MissingInTarget, and every target item in exactly one of a MatchGroup or
// MissingInSource.
type ReconciliationResult struct {
	MissingInTarget []CatalogItem
	MissingInSource []CatalogItem
	MatchGroups     []MatchGroup
	SourceTotal     int
	TargetTotal     int
}

// MatchedSource returns the number of source items that ended up in a group.
func (r *ReconciliationResult) MatchedSource() int {
	n := 0
	for _, g := range r.MatchGroups {
		n += len(g.SourceItems)
	}
	return n
}

// MatchedTarget returns the number of target items that ended up in a group.
func (r *ReconciliationResult) MatchedTarget() int {
	n := 0
	for _, g := range r.MatchGroups {
		n += len(g.TargetItems)
	}
	return n
}

// GroupsByTier returns the groups of one tier in emission order.
func (r *ReconciliationResult) GroupsByTier(tier Tier) []MatchGroup {
	var groups []MatchGroup
	for _, g := range r.MatchGroups {
		if g.Tier == tier {
			groups = append(groups, g)
		}
	}
	return groups
}
