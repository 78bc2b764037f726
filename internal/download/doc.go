// Package download provides the download orchestration logic for fetching
// missing audiobooks from an Audiobookshelf server.
//
// # Orchestrator
//
// The Orchestrator runs each item as one task:
//
//  1. Fetch item details (cover path, audio file list)
//  2. Stream the item archive to <dest>/<author>/<title>/<title>.zip
//  3. Extract the archive in place and delete it
//  4. Save cover.jpg (best-effort)
//  5. Tag MP3 files with ID3 metadata (optional)
//  6. Generate a playlist (optional)
//
// # Basic Usage
//
//	opts := download.DefaultOptions("/srv/audiobooks")
//	opts.OnProgress = func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	}
//
//	orch := download.New(client, opts)
//	outcomes, summary, err := orch.DownloadAll(ctx, items)
//
// Stream delivers outcomes as items complete instead of collecting them.
//
// # Concurrency
//
// A weighted semaphore of size Options.Concurrency admits items. A finished
// task holds its slot for Options.InterDownloadDelay before releasing it,
// which bounds the sustained request rate against the server.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    ItemID  string
//	    Completed, InFlight, Remaining, Total int
//	}
//
// Progress returns the same counts on demand.
//
// # Retry Logic
//
// Failed archive downloads are retried by a RetryPolicy with exponential
// backoff (1s, 2s, 4s, ...). 4xx responses other than 408 and 429 are not
// retried. An item that exhausts its retries is reported failed and the
// batch continues.
//
// # Failures
//
// An archive that cannot be extracted fails the item with ErrExtract; the
// archive and whatever was extracted stay on disk for inspection.
package download
