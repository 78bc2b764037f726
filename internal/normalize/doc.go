// Package normalize reduces raw audiobook titles and author credits to
// canonical comparison keys.
//
// Every rule is a small named function over strings, and the rules run as a
// fixed, ordered pipeline. The pipeline is repeated until its output stops
// changing, which makes Title and Author idempotent:
//
//	normalize.Title(normalize.Title(s)) == normalize.Title(s)
//
// # Titles
//
//	normalize.Title("Steelheart: A Reckoners Novel")   // "steelheart"
//	normalize.Title("Dune (Movie Tie-In Edition)")     // "dune"
//	normalize.Title("The Way of Kings (Stormlight, Book 1)") // "way of kings"
//
// # Authors
//
//	normalize.Author("R.L. Stine")          // "r l stine"
//	normalize.Author("Herbert, Frank")      // "frank herbert"
//	normalize.Author("Ken Liu - Translator Baoshu") // "baoshu"
//
// AllAuthors keeps every author of a multi-author credit and is used by the
// author-overlap matching tier. CreditKey is the author part of the primary
// tier key.
//
// # Overrides
//
// A small data table lists primary authors whose books are credited with a
// regular co-contributor in varying order. Extend it with New:
//
//	n := normalize.New(map[string][]string{"chrissie wellington": {"lance armstrong"}})
//
// Normalization never fails. Ambiguous credits resolve to the first listed
// author.
package normalize
