// Package fetcher performs rate-limited HTTP downloads and JSON decoding for
// the upstream regulatory sources.
package fetcher

import (
	"context"
	"io"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download issues a single GET and returns the response body. Non-2xx
	// responses are returned as errors; the body is closed in that case.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}
