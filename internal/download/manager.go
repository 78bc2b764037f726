package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/handiism/shelfsync/internal/audio"
	ioutils "github.com/handiism/shelfsync/internal/io"
	"github.com/handiism/shelfsync/internal/model"
	"golang.org/x/sync/semaphore"
)

// ErrExtract marks an item whose archive downloaded but could not be
// extracted. The staging archive and any extracted files are left on disk.
var ErrExtract = errors.New("archive extraction failed")

const (
	DefaultConcurrency        = 3
	DefaultInterDownloadDelay = time.Second
	DefaultMaxRetries         = 3
	DefaultCoverMaxSize       = 1000
)

// Client is the part of the library client the orchestrator downloads with.
// *abs.Client implements it.
type Client interface {
	GetItemDetails(ctx context.Context, itemID string) (model.ItemDetails, error)
	DownloadItemArchive(ctx context.Context, itemID, destPath string, onProgress func(written, total int64)) error
	DownloadCover(ctx context.Context, itemID, coverPath string) ([]byte, error)
}

// Options configures a batch.
type Options struct {
	// Destination is the root directory items are written under.
	Destination string

	// Concurrency is the number of items downloading at once.
	Concurrency int

	// InterDownloadDelay is held by a finished task before its slot is
	// released.
	InterDownloadDelay time.Duration

	// MaxRetries is the number of extra archive download attempts.
	MaxRetries int

	// RetryBase is the first backoff delay. Zero means DefaultRetryBase.
	RetryBase time.Duration

	// FlatLayout writes items to <dest>/<author> - <title> instead of
	// <dest>/<author>/<title>.
	FlatLayout bool

	IncludeCover      bool
	ConvertCoverToJPG bool
	CoverMaxSize      int

	// TagMP3 writes catalog author and title into extracted MP3 files.
	TagMP3 bool

	CreatePlaylist   bool
	PlaylistFormat   audio.PlaylistFormat
	PlaylistExtended bool

	Logger     *slog.Logger
	OnProgress func(ProgressEvent)

	// Sleep replaces the timer used for backoff and the inter-download
	// delay. Tests inject it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions(dest string) Options {
	return Options{
		Destination:        dest,
		Concurrency:        DefaultConcurrency,
		InterDownloadDelay: DefaultInterDownloadDelay,
		MaxRetries:         DefaultMaxRetries,
		RetryBase:          DefaultRetryBase,
		IncludeCover:       true,
		ConvertCoverToJPG:  true,
		CoverMaxSize:       DefaultCoverMaxSize,
		PlaylistExtended:   true,
	}
}

// Orchestrator downloads batches of items under a concurrency cap.
//
// Every item runs as one task:
//
//	details -> archive stream (retried) -> extract -> remove archive
//	        -> cover (best-effort) -> MP3 tags, playlist (optional)
//
// A failed item never stops the batch. An Orchestrator runs one batch at a
// time; the destination lock keeps other processes out of the same tree.
//
// Example:
//
//	orch := download.New(client, download.DefaultOptions("/srv/audiobooks"))
//	outcomes, summary, err := orch.DownloadAll(ctx, result.MissingInTarget)
type Orchestrator struct {
	client   Client
	opts     Options
	retry    RetryPolicy
	layout   model.LayoutConfig
	tagger   *audio.Tagger
	playlist *audio.PlaylistCreator
	images   *ioutils.ImageService
	logger   *slog.Logger

	counters counters
	mu       sync.Mutex // serializes OnProgress
}

// New creates an Orchestrator. Zero or negative Concurrency selects
// DefaultConcurrency.
func New(client Client, opts Options) *Orchestrator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = DefaultRetryBase
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Orchestrator{
		client: client,
		opts:   opts,
		retry: RetryPolicy{
			MaxRetries: opts.MaxRetries,
			Backoff:    ExponentialBackoff(opts.RetryBase),
			Sleep:      opts.Sleep,
		},
		layout: model.LayoutConfig{
			Root:             opts.Destination,
			OrganizeByAuthor: !opts.FlatLayout,
		},
		tagger:   audio.NewTagger(audio.DefaultTagConfig()),
		playlist: audio.NewPlaylistCreator(opts.PlaylistFormat, opts.PlaylistExtended),
		images:   ioutils.NewImageService(),
		logger:   logger,
	}
}

// Progress returns the live counts of the running (or last) batch.
func (o *Orchestrator) Progress() Snapshot {
	return o.counters.snapshot()
}

// DownloadAll downloads items and returns one outcome per item, in
// completion order, with the aggregated counts.
//
// The error is non-nil only when the batch could not start.
func (o *Orchestrator) DownloadAll(ctx context.Context, items []model.CatalogItem) ([]model.DownloadOutcome, model.DownloadSummary, error) {
	stream, err := o.Stream(ctx, items)
	if err != nil {
		return nil, model.DownloadSummary{Total: len(items), Failed: len(items)}, err
	}

	outcomes := make([]model.DownloadOutcome, 0, len(items))
	for outcome := range stream {
		outcomes = append(outcomes, outcome)
	}
	return outcomes, model.Summarize(outcomes), nil
}

// Stream starts the batch and returns a channel that receives each outcome
// as its item finishes. The channel is closed after the last outcome.
//
// When ctx is cancelled, in-flight requests abort and items not yet started
// are reported failed with the context error.
func (o *Orchestrator) Stream(ctx context.Context, items []model.CatalogItem) (<-chan model.DownloadOutcome, error) {
	lock, err := lockDestination(o.opts.Destination)
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	logger := o.logger.With("batch", batchID)
	logger.Info("starting batch",
		"items", len(items),
		"concurrency", o.opts.Concurrency,
		"delay", o.opts.InterDownloadDelay,
		"destination", o.opts.Destination)

	o.counters.reset(len(items))
	out := make(chan model.DownloadOutcome, len(items))
	sem := semaphore.NewWeighted(int64(o.opts.Concurrency))

	go func() {
		var wg sync.WaitGroup
		defer func() {
			wg.Wait()
			if err := lock.Unlock(); err != nil {
				logger.Warn("failed to release destination lock", "error", err)
			}
			s := o.counters.snapshot()
			logger.Info("batch finished", "success", s.Succeeded, "failed", s.Failed)
			o.progress(ProgressEvent{
				Message: fmt.Sprintf("Finished: %d succeeded, %d failed", s.Succeeded, s.Failed),
				Level:   LevelInfo,
			})
			close(out)
		}()

		for i, item := range items {
			err := ctx.Err()
			if err == nil {
				err = sem.Acquire(ctx, 1)
			}
			if err != nil {
				for _, rest := range items[i:] {
					out <- o.cancelled(rest, err)
				}
				return
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				outcome := o.run(ctx, logger, item)
				out <- outcome

				// Hold the slot to bound the request rate.
				_ = o.opts.Sleep(ctx, o.opts.InterDownloadDelay)
				sem.Release(1)
			}()
		}
	}()

	return out, nil
}

// run wraps downloadItem with the shared counters and progress events.
func (o *Orchestrator) run(ctx context.Context, logger *slog.Logger, item model.CatalogItem) model.DownloadOutcome {
	o.counters.inFlight.Add(1)
	o.progress(ProgressEvent{
		Message: fmt.Sprintf("Downloading: %s - %s", item.RawAuthor, item.RawTitle),
		Level:   LevelInfo,
		ItemID:  item.ID,
	})

	start := time.Now()
	outcome := o.downloadItem(ctx, logger.With("item", item.ID), item)
	outcome.Elapsed = time.Since(start)

	o.counters.inFlight.Add(-1)
	if outcome.Success {
		o.counters.succeeded.Add(1)
		o.progress(ProgressEvent{
			Message: fmt.Sprintf("Downloaded: %s (%s)", item.RawTitle, outcome.Elapsed.Round(time.Millisecond)),
			Level:   LevelSuccess,
			ItemID:  item.ID,
		})
	} else {
		o.counters.failed.Add(1)
		o.progress(ProgressEvent{
			Message: fmt.Sprintf("Failed: %s: %v", item.RawTitle, outcome.Err),
			Level:   LevelError,
			ItemID:  item.ID,
		})
	}
	return outcome
}

func (o *Orchestrator) cancelled(item model.CatalogItem, err error) model.DownloadOutcome {
	o.counters.failed.Add(1)
	return model.DownloadOutcome{
		ItemID: item.ID,
		Title:  item.RawTitle,
		Err:    err,
	}
}

func (o *Orchestrator) downloadItem(ctx context.Context, logger *slog.Logger, item model.CatalogItem) model.DownloadOutcome {
	layout := model.NewItemLayout(item, &o.layout)
	outcome := model.DownloadOutcome{ItemID: item.ID, Title: item.RawTitle, Dir: layout.Dir}

	details, err := o.client.GetItemDetails(ctx, item.ID)
	if err != nil {
		outcome.Err = fmt.Errorf("get item details: %w", err)
		return outcome
	}

	if err := ioutils.EnsureDir(layout.Dir); err != nil {
		outcome.Err = fmt.Errorf("create item directory: %w", err)
		return outcome
	}

	policy := o.retry
	policy.OnRetry = func(attempt int, err error) {
		logger.Warn("archive download failed, retrying", "attempt", attempt, "error", err)
		o.progress(ProgressEvent{
			Message: fmt.Sprintf("Retrying %s (attempt %d failed): %v", item.RawTitle, attempt, err),
			Level:   LevelWarning,
			ItemID:  item.ID,
		})
	}
	res := policy.Do(ctx, func(ctx context.Context) error {
		return o.client.DownloadItemArchive(ctx, item.ID, layout.ArchivePath, o.trackBytes())
	})
	outcome.Attempts = res.Attempts
	if !res.OK() {
		// A partial stream is never useful.
		_ = os.Remove(layout.ArchivePath)
		outcome.Err = fmt.Errorf("download archive after %d attempts: %w", res.Attempts, res.Err)
		return outcome
	}

	files, err := o.extract(ctx, layout)
	if err != nil {
		logger.Error("extraction failed, archive kept", "archive", layout.ArchivePath, "error", err)
		outcome.Err = fmt.Errorf("%w: %w", ErrExtract, err)
		return outcome
	}
	if err := os.Remove(layout.ArchivePath); err != nil {
		logger.Warn("failed to remove archive", "archive", layout.ArchivePath, "error", err)
	}
	logger.Debug("extracted archive", "files", len(files), "dir", layout.Dir)

	var artwork []byte
	if o.opts.IncludeCover {
		artwork = o.saveCover(ctx, logger, item, details, layout)
	}

	if o.opts.TagMP3 {
		if n, err := o.tagger.TagBook(item, files, artwork); err != nil {
			logger.Warn("tagging failed", "tagged", n, "error", err)
		}
	}

	if o.opts.CreatePlaylist {
		o.writePlaylist(logger, item, details, layout, files)
	}

	outcome.Success = true
	return outcome
}

// extract runs the extraction in its own goroutine. A cancelled ctx returns
// at once; the extraction stops at its next entry.
func (o *Orchestrator) extract(ctx context.Context, layout *model.ItemLayout) ([]string, error) {
	type result struct {
		files []string
		err   error
	}

	done := make(chan result, 1)
	go func() {
		files, err := ioutils.ExtractZip(ctx, layout.ArchivePath, layout.Dir)
		done <- result{files, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.files, r.err
	}
}

// saveCover fetches and stores the cover. Failures are logged and ignored.
// The returned bytes are JPEG, or nil.
func (o *Orchestrator) saveCover(ctx context.Context, logger *slog.Logger, item model.CatalogItem, details model.ItemDetails, layout *model.ItemLayout) []byte {
	coverPath := details.CoverPath
	if coverPath == "" {
		coverPath = item.CoverPath
	}
	if coverPath == "" {
		return nil
	}

	data, err := o.client.DownloadCover(ctx, item.ID, coverPath)
	if err != nil {
		logger.Debug("cover download failed", "error", err)
		return nil
	}

	var artwork []byte
	if o.opts.ConvertCoverToJPG {
		jpeg, err := o.images.PrepareCover(ctx, data, o.opts.CoverMaxSize)
		if err != nil {
			logger.Debug("cover conversion failed", "error", err)
		} else {
			data, artwork = jpeg, jpeg
		}
	}

	if err := ioutils.WriteFile(layout.CoverPath, data); err != nil {
		logger.Warn("failed to save cover", "path", layout.CoverPath, "error", err)
		return nil
	}
	return artwork
}

func (o *Orchestrator) writePlaylist(logger *slog.Logger, item model.CatalogItem, details model.ItemDetails, layout *model.ItemLayout, files []string) {
	pl := audio.NewPlaylist(item, details, layout.Dir, files)
	if len(pl.Entries) == 0 {
		return
	}

	path := layout.PlaylistPath + o.playlist.Format().Extension()
	if err := ioutils.WriteFile(path, []byte(o.playlist.CreatePlaylist(pl))); err != nil {
		logger.Warn("failed to write playlist", "path", path, "error", err)
	}
}

// trackBytes returns an archive progress callback feeding the batch byte
// counter.
func (o *Orchestrator) trackBytes() func(written, total int64) {
	var last int64
	return func(written, total int64) {
		if written < last {
			last = 0
		}
		o.counters.bytesReceived.Add(written - last)
		last = written
	}
}

func (o *Orchestrator) progress(event ProgressEvent) {
	if o.opts.OnProgress == nil {
		return
	}
	s := o.counters.snapshot()
	event.Completed, event.InFlight, event.Remaining, event.Total = s.Completed, s.InFlight, s.Remaining, s.Total

	o.mu.Lock()
	defer o.mu.Unlock()
	o.opts.OnProgress(event)
}

// FormatBytes renders a byte count for progress displays.
func FormatBytes(n int64) string {
	return humanize.IBytes(uint64(max(n, 0)))
}
