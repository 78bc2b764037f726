// Package match partitions two audiobook catalogs into matched groups and
// missing items.
//
// Four tiers run in a fixed order, each over the items the previous tiers
// left unmatched:
//
//  1. primary: equal normalized author and title. All items sharing a key on
//     both sides form one group.
//  2. author_overlap: equal normalized title and at least one author in
//     common. Pairs are one to one, first available target wins.
//  3. fallback_exact: equal title, duration and size. Items without a size
//     are skipped.
//  4. fallback_flexible: equal first three title words, duration rounded to
//     five minutes and size rounded to 10 MiB.
//
// Matching is single-threaded and deterministic: keys are visited in the
// order they first appear in the source slice, never in map order, so the
// same input always yields the same groups.
//
// Example:
//
//	result := match.Match(sourceItems, targetItems)
//	for _, g := range result.MatchGroups {
//	    fmt.Println(g.Tier, g.Reason, g.Normalized.Title)
//	}
//	fmt.Println(len(result.MissingInTarget), "items to copy")
//
// Explain runs the same rules on a single pair of items and exposes every
// intermediate key, which is what the match-debug command prints.
package match
