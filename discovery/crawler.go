package discovery

import (
	"context"
	"fmt"
	"log"

	"github.com/pevans/quotescrape/quote"
	"github.com/pevans/quotescrape/scraper"
)

// Observer is told about each page before it is fetched.
type Observer interface {
	PageFetching(url string)
}

// LogObserver reports progress through a logger.
type LogObserver struct {
	Logger *log.Logger
}

// PageFetching logs the URL about to be fetched.
func (o LogObserver) PageFetching(url string) {
	o.Logger.Printf("Scraping %s", url)
}

// NopObserver ignores progress.
type NopObserver struct{}

// PageFetching does nothing.
func (NopObserver) PageFetching(string) {}

// CrawlResult is everything collected by a successful crawl.
type CrawlResult struct {
	Quotes []quote.Quote // in page order, then in-page order
	Pages  []string      // URLs fetched, in order
}

// Crawler walks a paginated listing from the base URL until a page has no
// next-page link.
type Crawler struct {
	fetcher  Fetcher
	config   scraper.ScraperConfig
	observer Observer
}

// NewCrawler creates a crawler. A nil observer discards progress.
func NewCrawler(fetcher Fetcher, config scraper.ScraperConfig, observer Observer) *Crawler {
	if observer == nil {
		observer = NopObserver{}
	}

	config.ListConfig = config.ListConfig.WithDefaults()
	if config.BaseURL == "" {
		config.BaseURL = scraper.DefaultBaseURL
	}

	return &Crawler{
		fetcher:  fetcher,
		config:   config,
		observer: observer,
	}
}

// Run fetches every page and returns all quotes found. The first error
// stops the crawl and nothing collected so far is returned.
//
// There is no cycle detection: a next-page link that points back to an
// earlier page repeats forever unless ListConfig.MaxPages is set.
func (c *Crawler) Run(ctx context.Context) (*CrawlResult, error) {
	result := &CrawlResult{
		Quotes: []quote.Quote{},
		Pages:  []string{},
	}

	next := &c.config.BaseURL
	for next != nil {
		if c.config.ListConfig.MaxPages > 0 && len(result.Pages) >= c.config.ListConfig.MaxPages {
			break
		}

		url := *next
		pageResult, err := c.crawlPage(ctx, url)
		if err != nil {
			return nil, err
		}

		result.Pages = append(result.Pages, url)
		result.Quotes = append(result.Quotes, pageResult.Quotes...)
		next = pageResult.NextURL
	}

	return result, nil
}

// crawlPage fetches and extracts a single page.
func (c *Crawler) crawlPage(ctx context.Context, url string) (*PageResult, error) {
	c.observer.PageFetching(url)

	doc, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	pageResult, err := ExtractPage(doc, c.config.ListConfig, c.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract quotes from %s: %w", url, err)
	}

	return pageResult, nil
}
