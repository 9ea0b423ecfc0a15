package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pevans/quotescrape/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHTTPFetcher_Success verifies a 200 response is parsed
func TestHTTPFetcher_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, listingPage("", quoteBlock("Hello", "World")))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(5*time.Second, "")
	doc, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	blocks := doc.SelectAll(".quote")
	assert.Len(t, blocks, 1)
}

// TestHTTPFetcher_NonOKStatus verifies HTTP errors carry the status code
func TestHTTPFetcher_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(5*time.Second, "")
	doc, err := fetcher.Fetch(context.Background(), server.URL+"/missing")
	assert.Nil(t, doc)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, server.URL+"/missing", fetchErr.URL)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Contains(t, err.Error(), "HTTP error: 404 Not Found")
}

// TestHTTPFetcher_TransportError verifies connection failures are FetchErrors
func TestHTTPFetcher_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	fetcher := NewHTTPFetcher(5*time.Second, "")
	_, err := fetcher.Fetch(context.Background(), url)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 0, fetchErr.StatusCode)
	assert.False(t, errors.Is(err, ErrUnexpectedStatus))
}

// TestHTTPFetcher_InvalidURL verifies a malformed URL fails before sending
func TestHTTPFetcher_InvalidURL(t *testing.T) {
	fetcher := NewHTTPFetcher(0, "")
	_, err := fetcher.Fetch(context.Background(), "://nope")

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "failed to create request")
}

// TestHTTPFetcher_Timeout verifies a slow server trips the client timeout
func TestHTTPFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	fetcher := NewHTTPFetcher(50*time.Millisecond, "")
	_, err := fetcher.Fetch(context.Background(), server.URL)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 0, fetchErr.StatusCode)
}

// TestHTTPFetcher_CanceledContext verifies cancellation aborts the request
func TestHTTPFetcher_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage(""))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewHTTPFetcher(0, "")
	_, err := fetcher.Fetch(ctx, server.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPFetcher_UserAgent(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		check     func(t *testing.T, got string)
	}{
		{
			name:      "custom agent is sent",
			userAgent: "quotescrape-test/1.0",
			check: func(t *testing.T, got string) {
				assert.Equal(t, "quotescrape-test/1.0", got)
			},
		},
		{
			name:      "empty agent leaves the default",
			userAgent: "",
			check: func(t *testing.T, got string) {
				assert.Contains(t, got, "Go-http-client")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Get("User-Agent")
				fmt.Fprint(w, listingPage(""))
			}))
			defer server.Close()

			fetcher := NewHTTPFetcher(5*time.Second, tt.userAgent)
			_, err := fetcher.Fetch(context.Background(), server.URL)
			require.NoError(t, err)

			tt.check(t, got)
		})
	}
}

func scraperConfigFor(baseURL string) scraper.ScraperConfig {
	config := scraper.DefaultScraperConfig()
	config.BaseURL = baseURL
	return config
}

// TestCrawler_OverHTTP verifies the double-slash next URL is requested as is
func TestCrawler_OverHTTP(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, listingPage("/page/2/", quoteBlock("One", "Alice"), quoteBlock("Two", "Bob")))
		case "//page/2/":
			fmt.Fprint(w, listingPage("", quoteBlock("Three", "Carol")))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	config := scraperConfigFor(server.URL + "/")
	crawler := NewCrawler(NewHTTPFetcher(5*time.Second, ""), config, nil)

	result, err := crawler.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Quotes, 3)
	assert.Equal(t, []string{"/", "//page/2/"}, paths)
	assert.Equal(t, server.URL+"//page/2/", result.Pages[1])
}
