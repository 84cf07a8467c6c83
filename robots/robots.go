// Package robots decides whether the watcher may fetch a URL.
package robots

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

// Checker consults a site's robots.txt before a fetch. A robots.txt that
// cannot be read counts as a denial: when in doubt, the watcher stays away.
type Checker struct {
	client    *http.Client
	userAgent string
}

// NewChecker builds a checker with the given HTTP timeout. userAgent is the
// agent name matched against robots.txt groups ("*" matches the catch-all).
func NewChecker(timeout time.Duration, userAgent string) *Checker {
	return &Checker{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Allowed reports whether target may be fetched, along with a descriptor of
// the robots.txt source consulted for the operator notification.
func (c *Checker) Allowed(ctx context.Context, target string) (bool, string) {
	parsed, err := url.Parse(target)
	if err != nil || parsed.Host == "" {
		return false, fmt.Sprintf("invalid target url %q", target)
	}
	robotsURL := parsed.Scheme + "://" + parsed.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return false, fmt.Sprintf("%s (failed to read: %v)", robotsURL, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Sprintf("%s (failed to read: %v)", robotsURL, err)
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return false, fmt.Sprintf("%s (failed to read: %v)", robotsURL, err)
	}
	return data.TestAgent(parsed.RequestURI(), c.userAgent), robotsURL
}
