// Package fetch retrieves search-results markup for the watcher.
package fetch

import "context"

// Fetcher returns the markup of a single page. Implementations own their
// timeouts and wait strategies; callers receive either markup or an error,
// never a partial page silently.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}
