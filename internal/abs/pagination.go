package abs

import (
	"context"
	"log/slog"

	"github.com/handiism/shelfsync/internal/abs/dto"
)

type pageFetcher func(ctx context.Context, page int) (dto.ItemPage, error)

// paginate collects the items of every page, starting at page 0.
//
// At most maxPages requests are made. Items are de-duplicated by ID; items
// without an ID are kept and left for the caller to report.
func paginate(ctx context.Context, fetch pageFetcher, pageSize, maxPages int, logger *slog.Logger) ([]dto.Item, error) {
	first, err := fetch(ctx, 0)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var items []dto.Item
	add := func(entries []dto.Item) int {
		added := 0
		for _, it := range entries {
			if it.ID != "" {
				if _, dup := seen[it.ID]; dup {
					continue
				}
				seen[it.ID] = struct{}{}
			}
			items = append(items, it)
			added++
		}
		return added
	}

	add(first.Entries())
	total := first.Total
	if total <= len(items) {
		return items, nil
	}
	logger.Debug("pagination detected", "total", total, "first_page", len(items))

	page := 1
	for ; page < maxPages && len(items) < total; page++ {
		p, err := fetch(ctx, page)
		if err != nil {
			return nil, err
		}

		entries := p.Entries()
		if len(entries) == 0 {
			logger.Warn("empty page, stopping pagination", "page", page, "fetched", len(items), "total", total)
			break
		}
		added := add(entries)
		if added == 0 {
			logger.Warn("page repeats earlier items, stopping pagination", "page", page, "fetched", len(items), "total", total)
			break
		}
		logger.Debug("fetched page", "page", page, "new", added, "fetched", len(items))

		if len(entries) < pageSize {
			break
		}
	}

	if page >= maxPages && len(items) < total {
		logger.Warn("page limit reached, catalog may be incomplete", "max_pages", maxPages, "fetched", len(items), "total", total)
	}
	return items, nil
}
