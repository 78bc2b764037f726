package reconcile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/handiism/shelfsync/internal/abs"
	"github.com/handiism/shelfsync/internal/download"
	"github.com/handiism/shelfsync/internal/model"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	libraries []model.Library
	items     map[string][]model.CatalogItem
	err       error

	mu     sync.Mutex
	listed []string
}

func (f *fakeCatalog) GetLibraries(ctx context.Context) ([]model.Library, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.libraries, nil
}

func (f *fakeCatalog) GetLibraryItems(ctx context.Context, lib model.Library) ([]model.CatalogItem, error) {
	f.mu.Lock()
	f.listed = append(f.listed, lib.ID)
	f.mu.Unlock()

	items := make([]model.CatalogItem, 0, len(f.items[lib.ID]))
	for _, it := range f.items[lib.ID] {
		it.LibraryID, it.LibraryName = lib.ID, lib.Name
		items = append(items, it)
	}
	return items, nil
}

func book(id, title, author string) model.CatalogItem {
	return model.CatalogItem{ID: id, RawTitle: title, RawAuthor: author}
}

func TestReconcile(t *testing.T) {
	source := &fakeCatalog{
		libraries: []model.Library{{ID: "s1", Name: "Audiobooks"}, {ID: "s2", Name: "Podcasts"}},
		items: map[string][]model.CatalogItem{
			"s1": {
				book("a", "Steelheart: A Reckoners Novel", "Brandon Sanderson"),
				book("b", "Who Moved My Cheese", "Spencer Johnson"),
				book("c", "Project Hail Mary", "Andy Weir"),
				book("", "No ID", "Nobody"),
				book("a", "Steelheart (duplicate)", "Brandon Sanderson"),
			},
			"s2": {book("p", "Some Podcast", "Host")},
		},
	}
	target := &fakeCatalog{
		libraries: []model.Library{{ID: "t1", Name: "Books"}},
		items: map[string][]model.CatalogItem{
			"t1": {
				book("x", "Steelheart", "Brandon Sanderson"),
				book("y", "Who Moved My Cheese", "Spencer Johnson, Kenneth Blanchard"),
				book("z", "Dune", "Frank Herbert"),
			},
		},
	}

	svc := NewService()
	result, err := svc.Reconcile(context.Background(), source, target, Filter{Source: []string{"s1"}})
	require.NoError(t, err)

	assert.Equal(t, 3, result.SourceTotal)
	assert.Equal(t, 3, result.TargetTotal)
	assert.Equal(t, []string{"s1"}, source.listed)

	require.Len(t, result.MatchGroups, 2)
	assert.Equal(t, model.TierPrimary, result.MatchGroups[0].Tier)
	assert.Equal(t, model.TierAuthorOverlap, result.MatchGroups[1].Tier)

	require.Len(t, result.MissingInTarget, 1)
	assert.Equal(t, "c", result.MissingInTarget[0].ID)
	assert.Equal(t, "Audiobooks", result.MissingInTarget[0].LibraryName)

	require.Len(t, result.MissingInSource, 1)
	assert.Equal(t, "z", result.MissingInSource[0].ID)
}

func TestReconcile_UnknownLibraryFilter(t *testing.T) {
	source := &fakeCatalog{
		libraries: []model.Library{{ID: "s1", Name: "Audiobooks"}},
		items:     map[string][]model.CatalogItem{"s1": {book("a", "Dune", "Frank Herbert")}},
	}
	target := &fakeCatalog{libraries: nil}

	result, err := NewService().Reconcile(context.Background(), source, target, Filter{Source: []string{"nope"}})
	require.NoError(t, err)

	assert.Zero(t, result.SourceTotal)
	assert.Zero(t, result.TargetTotal)
	assert.Empty(t, source.listed)
}

func TestReconcile_ConnectivityErrorAborts(t *testing.T) {
	unreachable := fmt.Errorf("%w: dial tcp: connection refused", abs.ErrConnectivity)
	source := &fakeCatalog{libraries: []model.Library{{ID: "s1"}}}
	target := &fakeCatalog{err: unreachable}

	result, err := NewService().Reconcile(context.Background(), source, target, Filter{})
	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, abs.ErrConnectivity)
	assert.Contains(t, err.Error(), "target catalog")
}

// downloadClient serves a one-file archive for every item.
type downloadClient struct {
	archive []byte
	pingErr error
	pings   int

	mu    sync.Mutex
	calls map[string]int
}

func (d *downloadClient) archiveCalls(itemID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[itemID]
}

func (d *downloadClient) TestConnection(ctx context.Context) error {
	d.pings++
	return d.pingErr
}

func (d *downloadClient) GetItemDetails(ctx context.Context, itemID string) (model.ItemDetails, error) {
	return model.ItemDetails{ID: itemID}, nil
}

func (d *downloadClient) DownloadItemArchive(ctx context.Context, itemID, destPath string, onProgress func(written, total int64)) error {
	d.mu.Lock()
	if d.calls == nil {
		d.calls = make(map[string]int)
	}
	d.calls[itemID]++
	d.mu.Unlock()

	switch itemID {
	case "broken":
		return &abs.StatusError{StatusCode: 404}
	case "flaky":
		return errors.New("connection reset")
	}
	return os.WriteFile(destPath, d.archive, 0644)
}

func (d *downloadClient) DownloadCover(ctx context.Context, itemID, coverPath string) ([]byte, error) {
	return nil, errors.New("no cover")
}

func oneFileZip(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("book.m4b")
	require.NoError(t, err)
	_, err = w.Write([]byte("audio"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDownloadMissing(t *testing.T) {
	client := &downloadClient{archive: oneFileZip(t)}
	dest := t.TempDir()
	items := []model.CatalogItem{
		book("a", "Dune", "Frank Herbert"),
		book("broken", "Lost Book", "Unknown"),
	}

	svc := NewService(WithDownloadOptions(download.Options{IncludeCover: true}))
	retries := 1
	summary, err := svc.DownloadMissing(context.Background(), client, items, dest, ConcurrencyConfig{Concurrency: 2, MaxRetries: &retries})
	require.NoError(t, err)

	assert.Equal(t, model.DownloadSummary{Total: 2, Success: 1, Failed: 1}, summary)
	assert.Equal(t, 1, client.pings)
	assert.FileExists(t, filepath.Join(dest, "Frank Herbert", "Dune", "book.m4b"))
}

func TestDownloadMissing_ZeroOverridesDefaults(t *testing.T) {
	noSleep := func(ctx context.Context, d time.Duration) error {
		if d > 0 {
			t.Errorf("unexpected wait of %s", d)
		}
		return nil
	}
	items := []model.CatalogItem{book("flaky", "Dune", "Frank Herbert")}

	tests := []struct {
		name      string
		cc        ConcurrencyConfig
		wantCalls int
	}{
		{"defaults", ConcurrencyConfig{}, 4},
		{"no retries", ConcurrencyConfig{MaxRetries: new(int)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &downloadClient{}
			svc := NewService(WithDownloadOptions(download.Options{
				MaxRetries: 3,
				Sleep: func(ctx context.Context, d time.Duration) error {
					return nil
				},
			}))

			summary, err := svc.DownloadMissing(context.Background(), client, items, t.TempDir(), tt.cc)
			require.NoError(t, err)
			assert.Equal(t, 1, summary.Failed)
			assert.Equal(t, tt.wantCalls, client.archiveCalls("flaky"))
		})
	}

	t.Run("no delay", func(t *testing.T) {
		client := &downloadClient{archive: oneFileZip(t)}
		delay := time.Duration(0)
		svc := NewService(WithDownloadOptions(download.Options{InterDownloadDelay: time.Hour, Sleep: noSleep}))

		summary, err := svc.DownloadMissing(context.Background(), client,
			[]model.CatalogItem{book("a", "Dune", "Frank Herbert"), book("b", "Emma", "Jane Austen")},
			t.TempDir(), ConcurrencyConfig{Concurrency: 1, InterDownloadDelay: &delay})
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Success)
	})
}

func TestDownloadMissing_ConnectivityAborts(t *testing.T) {
	client := &downloadClient{pingErr: fmt.Errorf("%w: timeout", abs.ErrConnectivity)}
	dest := filepath.Join(t.TempDir(), "books")

	summary, err := NewService().DownloadMissing(context.Background(), client, []model.CatalogItem{book("a", "Dune", "Frank Herbert")}, dest, ConcurrencyConfig{})
	assert.ErrorIs(t, err, abs.ErrConnectivity)
	assert.Equal(t, 1, summary.Failed)
	assert.NoDirExists(t, dest)
}

func TestDownloadMissing_Empty(t *testing.T) {
	client := &downloadClient{}
	summary, err := NewService().DownloadMissing(context.Background(), client, nil, t.TempDir(), ConcurrencyConfig{})
	require.NoError(t, err)
	assert.Zero(t, summary)
	assert.Zero(t, client.pings)
}
