// Package report turns a reconciliation result into something people can
// read.
//
// Build aggregates the totals, per-tier match counts, a per-library
// breakdown of each missing list and bounded samples. The Report can then be
// rendered as tables or exported:
//
//	r := report.Build(result, report.Options{})
//	r.WriteSummary(os.Stdout) // counts, libraries, first 10 missing items
//	r.WriteMatches(os.Stdout) // up to 25 groups per tier
//	r.WriteYAML(file)
package report
