// Package model defines the core data structures shared by the
// reconciliation engine and the download orchestrator.
//
// # CatalogItem
//
// CatalogItem is one audiobook reported by a library server. It is created
// from the server payload at the client boundary and is immutable afterwards:
//
//	item := model.CatalogItem{ID: "li_1", RawTitle: "Dune", RawAuthor: "Frank Herbert"}
//	fmt.Println(item.DurationLabel()) // "unknown" when no duration was reported
//
// # Matching
//
// MatchGroup and ReconciliationResult carry the matcher output. Tier names the
// strategy that produced a group:
//
//	for _, g := range result.GroupsByTier(model.TierPrimary) {
//	    fmt.Println(g.Reason, len(g.SourceItems), len(g.TargetItems))
//	}
//
// # Item Layout
//
// ItemLayout computes where a downloaded item lands on disk:
//
//	layout := model.NewItemLayout(item, &model.LayoutConfig{Root: "/srv/books", OrganizeByAuthor: true})
//	fmt.Println(layout.Dir)         // /srv/books/Frank Herbert/Dune
//	fmt.Println(layout.ArchivePath) // /srv/books/Frank Herbert/Dune/Dune.zip
//
// # Outcomes
//
// DownloadOutcome records one item's download; Summarize folds a batch into
// DownloadSummary counts.
package model
