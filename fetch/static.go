package fetch

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
)

// StaticFetcher retrieves a page over plain HTTP, for result pages that do
// not require a browser. The robots policy check happens upstream, so the
// collector's own robots handling is disabled.
type StaticFetcher struct {
	userAgent string
	timeout   time.Duration
}

// NewStaticFetcher builds a plain-HTTP fetcher.
func NewStaticFetcher(userAgent string, timeout time.Duration) *StaticFetcher {
	return &StaticFetcher{userAgent: userAgent, timeout: timeout}
}

// Fetch downloads pageURL and returns the response body as markup.
func (f *StaticFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse page url: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("page url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(f.userAgent),
	)
	collector.SetRequestTimeout(f.timeout)
	collector.IgnoreRobotsTxt = true

	var body []byte
	var fetchErr error
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	if err := collector.Visit(pageURL); err != nil {
		return "", fmt.Errorf("static fetch %s: %w", pageURL, err)
	}
	collector.Wait()

	if fetchErr != nil {
		return "", fmt.Errorf("static fetch %s: %w", pageURL, fetchErr)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("static fetch %s: empty response", pageURL)
	}
	return string(body), nil
}
