// Package reconcile is the entry point for comparing two Audiobookshelf
// servers and fetching what one of them lacks.
//
//	svc := reconcile.NewService(reconcile.WithLogger(logger))
//	result, err := svc.Reconcile(ctx, source, target, reconcile.Filter{})
//	if err != nil {
//	    return err // abs.ErrConnectivity when a server is unreachable
//	}
//	summary, err := svc.DownloadMissing(ctx, source, result.MissingInTarget, "/srv/books", reconcile.ConcurrencyConfig{})
//
// Both catalogs are fetched in parallel. Matching itself is synchronous and
// deterministic (see package match).
package reconcile
