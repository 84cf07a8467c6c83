package robots

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
)

const searchURL = "https://www.example.test/vehicle-search?make=honda&page=1"

func newTestChecker(t *testing.T) *Checker {
	t.Helper()
	checker := NewChecker(5*time.Second, "*")
	httpmock.ActivateNonDefault(checker.client)
	t.Cleanup(httpmock.DeactivateAndReset)
	return checker
}

func TestAllowedWhenRobotsPermits(t *testing.T) {
	checker := newTestChecker(t)
	httpmock.RegisterResponder(http.MethodGet, "https://www.example.test/robots.txt",
		httpmock.NewStringResponder(200, "User-agent: *\nDisallow: /admin\n"))

	allowed, source := checker.Allowed(context.Background(), searchURL)
	if !allowed {
		t.Fatalf("expected fetch to be allowed")
	}
	if source != "https://www.example.test/robots.txt" {
		t.Errorf("source = %q", source)
	}
}

func TestDeniedWhenRobotsDisallows(t *testing.T) {
	checker := newTestChecker(t)
	httpmock.RegisterResponder(http.MethodGet, "https://www.example.test/robots.txt",
		httpmock.NewStringResponder(200, "User-agent: *\nDisallow: /vehicle-search\n"))

	allowed, _ := checker.Allowed(context.Background(), searchURL)
	if allowed {
		t.Fatalf("expected fetch to be denied")
	}
}

func TestAllowedWhenRobotsMissing(t *testing.T) {
	checker := newTestChecker(t)
	httpmock.RegisterResponder(http.MethodGet, "https://www.example.test/robots.txt",
		httpmock.NewStringResponder(404, "not found"))

	allowed, _ := checker.Allowed(context.Background(), searchURL)
	if !allowed {
		t.Fatalf("a 404 robots.txt permits fetching")
	}
}

func TestDeniedWhenRobotsUnreachable(t *testing.T) {
	checker := newTestChecker(t)
	httpmock.RegisterResponder(http.MethodGet, "https://www.example.test/robots.txt",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	allowed, source := checker.Allowed(context.Background(), searchURL)
	if allowed {
		t.Fatalf("unreachable robots.txt must deny the fetch")
	}
	if !strings.Contains(source, "failed to read") {
		t.Errorf("source should describe the failure, got %q", source)
	}
}

func TestDeniedForInvalidTarget(t *testing.T) {
	checker := newTestChecker(t)

	allowed, source := checker.Allowed(context.Background(), "not a url")
	if allowed {
		t.Fatalf("invalid target must be denied")
	}
	if !strings.Contains(source, "invalid target url") {
		t.Errorf("source = %q", source)
	}
}
