package discovery

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pevans/quotescrape/page"
)

// Fetcher retrieves and parses a single page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*page.Document, error)
}

// HTTPFetcher fetches pages with a plain GET request.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher. A zero timeout leaves requests
// unbounded, and an empty user agent sends Go's default header.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Fetch fetches url and parses the response body as HTML. Transport
// failures and non-200 responses are returned as *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*page.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: ErrUnexpectedStatus}
	}

	doc, err := page.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}

	return doc, nil
}
