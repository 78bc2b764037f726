// Package abs provides a client for the Audiobookshelf REST API.
//
// The Client in this package handles:
//   - Bearer authentication
//   - Paginated catalog listing that always terminates
//   - Item details, archive downloads with progress tracking, and covers
//
// # Basic Usage
//
//	client := abs.NewClient("abs.example.com", apiKey) // https:// is added
//
//	libs, err := client.GetLibraries(ctx)
//	for _, lib := range libs {
//	    items, err := client.GetLibraryItems(ctx, lib)
//	    ...
//	}
//
// # Errors
//
// Transport failures and error responses of the list endpoints wrap
// ErrConnectivity. Every non-200 response is a *StatusError:
//
//	if errors.Is(err, abs.ErrConnectivity) { /* abort */ }
//	if abs.IsPermanent(err) { /* do not retry */ }
//
// The API key is sent in the Authorization header and, for archive
// downloads, as the token query parameter. It never appears in returned
// errors.
//
// The JSON payloads and their conversion to model types live in the dto
// subpackage.
package abs
