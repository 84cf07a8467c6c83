package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestStaticFetcherReturnsBody(t *testing.T) {
	const page = `<html><body><ul><li><a href="/used-cars/vehicle-1234">Car</a></li></ul></body></html>`
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.UserAgent()
		w.Write([]byte(page))
	}))
	defer server.Close()

	f := NewStaticFetcher("watcher-test/1.0", 5*time.Second)
	markup, err := f.Fetch(context.Background(), server.URL+"/vehicle-search")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if markup != page {
		t.Errorf("markup = %q", markup)
	}
	if gotAgent != "watcher-test/1.0" {
		t.Errorf("user agent = %q", gotAgent)
	}
}

func TestStaticFetcherServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	f := NewStaticFetcher("watcher-test/1.0", 5*time.Second)
	if _, err := f.Fetch(context.Background(), server.URL+"/vehicle-search"); err == nil {
		t.Fatalf("expected error for a 503 response")
	}
}

func TestStaticFetcherInvalidURL(t *testing.T) {
	f := NewStaticFetcher("watcher-test/1.0", time.Second)
	_, err := f.Fetch(context.Background(), "not a url")
	if err == nil || !strings.Contains(err.Error(), "host") {
		t.Fatalf("err = %v, want host validation error", err)
	}
}

func TestStaticFetcherHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewStaticFetcher("watcher-test/1.0", time.Second)
	if _, err := f.Fetch(ctx, "https://www.example.test/vehicle-search"); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}
