package abs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/handiism/shelfsync/internal/abs/dto"
	"github.com/handiism/shelfsync/internal/model"
)

// Defaults applied by NewClient.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultPageSize = 1000
	DefaultMaxPages = 50
)

// Client talks to one Audiobookshelf server.
//
// Client provides:
//   - Bearer authentication on every request
//   - Paginated catalog listing with de-duplication and a page bound
//   - Item details, archive and cover downloads
//
// API calls share one timeout. Archive downloads have no overall deadline so
// large books are not cut off; they stop when ctx is cancelled.
//
// Example usage:
//
//	client := abs.NewClient("https://abs.example.com", apiKey, abs.WithLogger(logger))
//
//	libs, err := client.GetLibraries(ctx)
//	items, err := client.GetLibraryItems(ctx, libs[0])
//
//	err = client.DownloadItemArchive(ctx, items[0].ID, "/books/steelheart.zip", func(written, total int64) {
//	    fmt.Printf("%d / %d bytes\n", written, total)
//	})
type Client struct {
	baseURL        string
	apiKey         string
	userAgent      string
	httpClient     *http.Client
	downloadClient *http.Client
	pageSize       int
	maxPages       int
	logger         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the client used for API calls and downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
		c.downloadClient = hc
	}
}

// WithTimeout sets the timeout of API calls.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithPageSize sets the number of items requested per catalog page.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithMaxPages bounds the number of catalog pages fetched per library.
func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithLogger sets the logger for pagination anomalies and request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the server at serverURL. A URL without a
// scheme gets "https://"; a trailing slash is dropped.
func NewClient(serverURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:        NormalizeURL(serverURL),
		apiKey:         apiKey,
		userAgent:      "shelfsync",
		httpClient:     &http.Client{Timeout: DefaultTimeout},
		downloadClient: &http.Client{},
		pageSize:       DefaultPageSize,
		maxPages:       DefaultMaxPages,
		logger:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeURL adds "https://" to a URL without a scheme and trims trailing
// slashes.
func NormalizeURL(serverURL string) string {
	u := strings.TrimSpace(serverURL)
	if u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	return strings.TrimRight(u, "/")
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) newRequest(ctx context.Context, path string, query url.Values) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req and returns the response when its status is 200. The caller
// closes the body.
func (c *Client) do(hc *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return nil, c.transportError(req, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{Method: req.Method, Path: req.URL.Path, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// transportError wraps err in ErrConnectivity with the token removed from
// the request URL. Context errors are returned as they are.
func (c *Client) transportError(req *http.Request, err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = req.URL.Path
	}
	if ctxErr := req.Context().Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %w", ErrConnectivity, err)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	req, err := c.newRequest(ctx, path, query)
	if err != nil {
		return err
	}
	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// listJSON is getJSON for list endpoints, where any non-200 response means
// the catalog cannot be read.
func (c *Client) listJSON(ctx context.Context, path string, query url.Values, v any) error {
	err := c.getJSON(ctx, path, query, v)
	var se *StatusError
	if errors.As(err, &se) {
		return fmt.Errorf("%w: %w", ErrConnectivity, err)
	}
	return err
}

// TestConnection checks that the server answers and accepts the API key.
func (c *Client) TestConnection(ctx context.Context) error {
	var resp dto.LibrariesResponse
	return c.listJSON(ctx, "/api/libraries", nil, &resp)
}

// GetLibraries lists the server's libraries.
func (c *Client) GetLibraries(ctx context.Context) ([]model.Library, error) {
	var resp dto.LibrariesResponse
	if err := c.listJSON(ctx, "/api/libraries", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list libraries: %w", err)
	}

	libs := make([]model.Library, 0, len(resp.Libraries))
	for _, l := range resp.Libraries {
		libs = append(libs, l.ToLibrary())
	}
	return libs, nil
}

// GetLibraryItems lists every item of lib, following pagination.
//
// Items are de-duplicated by ID across pages. Pagination stops when a page
// is empty or brings nothing new, once the reported total is reached, after
// a short page, or after the page bound; these anomalies are logged and the
// items gathered so far are returned. Failing requests are returned as
// errors.
func (c *Client) GetLibraryItems(ctx context.Context, lib model.Library) ([]model.CatalogItem, error) {
	path := "/api/libraries/" + url.PathEscape(lib.ID) + "/items"

	fetch := func(ctx context.Context, page int) (dto.ItemPage, error) {
		query := url.Values{}
		query.Set("limit", fmt.Sprint(c.pageSize))
		if page > 0 {
			query.Set("page", fmt.Sprint(page))
		}
		var p dto.ItemPage
		err := c.listJSON(ctx, path, query, &p)
		return p, err
	}

	raw, err := paginate(ctx, fetch, c.pageSize, c.maxPages, c.logger.With("library", lib.Name, "library_id", lib.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to list items of library %s: %w", lib.ID, err)
	}

	items := make([]model.CatalogItem, 0, len(raw))
	for _, it := range raw {
		items = append(items, it.ToCatalogItem(lib))
	}
	return items, nil
}

// GetItemDetails fetches the detail payload of one item.
func (c *Client) GetItemDetails(ctx context.Context, itemID string) (model.ItemDetails, error) {
	var it dto.Item
	if err := c.getJSON(ctx, "/api/items/"+url.PathEscape(itemID), nil, &it); err != nil {
		return model.ItemDetails{}, fmt.Errorf("failed to get item %s: %w", itemID, err)
	}
	if it.ID == "" {
		it.ID = itemID
	}
	return it.ToItemDetails(), nil
}

// DownloadItemArchive streams the zip archive of an item to destPath.
//
// The file is created (or truncated) and the body is copied straight to
// disk. onProgress, when non-nil, receives (bytesWritten, totalBytes); total
// is -1 when the server sends no Content-Length.
func (c *Client) DownloadItemArchive(ctx context.Context, itemID, destPath string, onProgress func(written, total int64)) error {
	query := url.Values{}
	query.Set("token", c.apiKey)
	req, err := c.newRequest(ctx, "/api/items/"+url.PathEscape(itemID)+"/download", query)
	if err != nil {
		return err
	}

	resp, err := c.do(c.downloadClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	file, err := os.Create(destPath)
	if err != nil {
		return err
	}

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	if _, err := io.Copy(writer, resp.Body); err != nil {
		file.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", ErrConnectivity, err)
	}
	return file.Close()
}

// DownloadCover fetches an item's cover image from the item cover endpoint.
// When that answers with an error status and coverPath is an absolute path,
// coverPath is requested from the server as a fallback.
func (c *Client) DownloadCover(ctx context.Context, itemID, coverPath string) ([]byte, error) {
	paths := []string{"/api/items/" + url.PathEscape(itemID) + "/cover"}
	if strings.HasPrefix(coverPath, "/") {
		paths = append(paths, coverPath)
	}

	var lastErr error
	for _, path := range paths {
		data, err := c.getBytes(ctx, path)
		if err == nil {
			return data, nil
		}
		lastErr = err

		var se *StatusError
		if !errors.As(err, &se) {
			break
		}
	}
	return nil, fmt.Errorf("failed to get cover of %s: %w", itemID, lastErr)
}

func (c *Client) getBytes(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
