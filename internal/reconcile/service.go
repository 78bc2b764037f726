package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/handiism/shelfsync/internal/download"
	"github.com/handiism/shelfsync/internal/match"
	"github.com/handiism/shelfsync/internal/model"
	"golang.org/x/sync/errgroup"
)

// Catalog is the listing side of a library client. *abs.Client implements it.
type Catalog interface {
	GetLibraries(ctx context.Context) ([]model.Library, error)
	GetLibraryItems(ctx context.Context, lib model.Library) ([]model.CatalogItem, error)
}

// Pinger is implemented by clients that can check the server before a batch.
type Pinger interface {
	TestConnection(ctx context.Context) error
}

// Filter restricts each side to a set of library IDs. An empty list means
// every library.
type Filter struct {
	Source []string
	Target []string
}

// ConcurrencyConfig overrides the admission settings of a download batch.
// A zero Concurrency and nil pointers keep the service defaults, so a caller
// can still ask for no delay or no retries:
//
//	none := 0
//	cc := reconcile.ConcurrencyConfig{Concurrency: 2, MaxRetries: &none}
type ConcurrencyConfig struct {
	Concurrency        int
	InterDownloadDelay *time.Duration
	MaxRetries         *int
}

// Service wires catalogs, the matcher and the download orchestrator.
type Service struct {
	matcher  *match.Matcher
	download download.Options
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMatcher replaces the default matcher.
func WithMatcher(m *match.Matcher) Option {
	return func(s *Service) {
		if m != nil {
			s.matcher = m
		}
	}
}

// WithDownloadOptions sets the base options of every download batch.
func WithDownloadOptions(opts download.Options) Option {
	return func(s *Service) {
		s.download = opts
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service.
func NewService(opts ...Option) *Service {
	s := &Service{
		matcher:  match.New(nil),
		download: download.DefaultOptions(""),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reconcile loads both catalogs concurrently and partitions them.
//
// Any listing failure aborts the reconciliation; the error wraps the
// client's error, so errors.Is(err, abs.ErrConnectivity) holds for
// unreachable servers.
func (s *Service) Reconcile(ctx context.Context, source, target Catalog, filter Filter) (*model.ReconciliationResult, error) {
	var sourceItems, targetItems []model.CatalogItem

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.LoadCatalog(gctx, source, filter.Source)
		if err != nil {
			return fmt.Errorf("source catalog: %w", err)
		}
		sourceItems = items
		return nil
	})
	g.Go(func() error {
		items, err := s.LoadCatalog(gctx, target, filter.Target)
		if err != nil {
			return fmt.Errorf("target catalog: %w", err)
		}
		targetItems = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("comparing catalogs", "source_items", len(sourceItems), "target_items", len(targetItems))
	result := s.matcher.Match(sourceItems, targetItems)
	s.logger.Info("comparison finished",
		"matched_source", result.MatchedSource(),
		"missing_in_target", len(result.MissingInTarget),
		"missing_in_source", len(result.MissingInSource))
	return result, nil
}

// LoadCatalog returns every item of the catalog, restricted to libraryIDs
// when non-empty.
//
// Items without an ID are skipped with a warning. An ID seen twice keeps its
// first occurrence.
func (s *Service) LoadCatalog(ctx context.Context, c Catalog, libraryIDs []string) ([]model.CatalogItem, error) {
	libs, err := c.GetLibraries(ctx)
	if err != nil {
		return nil, err
	}
	if len(libs) == 0 {
		s.logger.Warn("no libraries found on server")
		return nil, nil
	}

	wanted := make(map[string]bool, len(libraryIDs))
	for _, id := range libraryIDs {
		if id != "" {
			wanted[id] = true
		}
	}
	found := make(map[string]bool, len(libs))

	var items []model.CatalogItem
	seen := make(map[string]bool)
	for _, lib := range libs {
		found[lib.ID] = true
		if len(wanted) > 0 && !wanted[lib.ID] {
			s.logger.Info("skipping library", "library", lib.Name, "library_id", lib.ID)
			continue
		}

		libItems, err := c.GetLibraryItems(ctx, lib)
		if err != nil {
			return nil, fmt.Errorf("library %s: %w", lib.Name, err)
		}

		for _, item := range libItems {
			if item.ID == "" {
				s.logger.Warn("item without ID, skipping", "library", lib.Name, "title", item.RawTitle)
				continue
			}
			if seen[item.ID] {
				s.logger.Debug("duplicate item ID, keeping first", "item", item.ID)
				continue
			}
			seen[item.ID] = true
			items = append(items, item)
		}
	}

	for _, id := range libraryIDs {
		if id != "" && !found[id] {
			s.logger.Warn("library not found on server", "library_id", id)
		}
	}

	s.logger.Info("loaded catalog", "items", len(items))
	return items, nil
}

// DownloadMissing downloads items into destination and returns the counts.
//
// When client implements Pinger the server is checked first, and a failed
// check aborts the batch before anything is written. Per-item failures are
// logged and counted, never returned.
func (s *Service) DownloadMissing(ctx context.Context, client download.Client, items []model.CatalogItem, destination string, cc ConcurrencyConfig) (model.DownloadSummary, error) {
	if len(items) == 0 {
		return model.DownloadSummary{}, nil
	}

	if p, ok := client.(Pinger); ok {
		if err := p.TestConnection(ctx); err != nil {
			return model.DownloadSummary{Total: len(items), Failed: len(items)}, err
		}
	}

	opts := s.download
	opts.Destination = destination
	if cc.Concurrency > 0 {
		opts.Concurrency = cc.Concurrency
	}
	if cc.InterDownloadDelay != nil {
		opts.InterDownloadDelay = max(*cc.InterDownloadDelay, 0)
	}
	if cc.MaxRetries != nil {
		opts.MaxRetries = max(*cc.MaxRetries, 0)
	}
	if opts.Logger == nil {
		opts.Logger = s.logger
	}

	outcomes, summary, err := download.New(client, opts).DownloadAll(ctx, items)
	if err != nil {
		return summary, err
	}
	for _, o := range outcomes {
		if !o.Success {
			s.logger.Warn("download failed", "item", o.ItemID, "title", o.Title, "attempts", o.Attempts, "error", o.Err)
		}
	}
	return summary, nil
}
