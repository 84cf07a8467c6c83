package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// RenderedFetcher drives a headless browser so JS-populated result pages
// arrive fully rendered. Each Fetch launches a fresh browser; the watcher
// fetches one page per run, so keeping a browser alive buys nothing.
type RenderedFetcher struct {
	userAgent string
	timeout   time.Duration
}

// NewRenderedFetcher builds a browser-backed fetcher.
func NewRenderedFetcher(userAgent string, timeout time.Duration) *RenderedFetcher {
	return &RenderedFetcher{userAgent: userAgent, timeout: timeout}
}

// Fetch navigates to pageURL and returns the rendered document markup.
func (f *RenderedFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(f.userAgent),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, f.timeout)
	defer cancelRun()

	var markup string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("rendered fetch %s: %w", pageURL, err)
	}
	return markup, nil
}
