package discovery

import (
	"github.com/pevans/quotescrape/page"
	"github.com/pevans/quotescrape/quote"
	"github.com/pevans/quotescrape/scraper"
)

// PageResult holds what was found on a single listing page.
type PageResult struct {
	Quotes  []quote.Quote
	NextURL *string // nil when the page has no next-page link
}

// JoinURL builds the next page's URL by appending ref to base unchanged.
// No URL resolution happens: "https://quotes.toscrape.com/" and "/page/2/"
// give "https://quotes.toscrape.com//page/2/", and a base without a
// trailing slash is glued straight onto the reference.
func JoinURL(base, ref string) string {
	return base + ref
}

// ExtractPage extracts every quote on doc and the URL of the next page.
func ExtractPage(doc *page.Document, config scraper.ListConfig, baseURL string) (*PageResult, error) {
	blocks := doc.SelectAll(config.QuoteSelector)

	result := &PageResult{
		Quotes: make([]quote.Quote, 0, len(blocks)),
	}

	for i, block := range blocks {
		q, err := ExtractQuote(block, config, i)
		if err != nil {
			return nil, err
		}
		result.Quotes = append(result.Quotes, q)
	}

	next, err := NextPageURL(doc, config, baseURL)
	if err != nil {
		return nil, err
	}
	result.NextURL = next

	return result, nil
}

// ExtractQuote extracts one quote from its listing block. Text and author
// are required; tags are optional.
func ExtractQuote(block page.Element, config scraper.ListConfig, index int) (quote.Quote, error) {
	text, ok := block.SelectOne(config.TextSelector)
	if !ok {
		return quote.Quote{}, &MissingFieldError{Field: "text", Index: index}
	}

	author, ok := block.SelectOne(config.AuthorSelector)
	if !ok {
		return quote.Quote{}, &MissingFieldError{Field: "author", Index: index}
	}

	tags := []string{}
	for _, tag := range block.SelectAll(config.TagSelector) {
		tags = append(tags, tag.Text())
	}

	return quote.New(text.Text(), author.Text(), tags...), nil
}

// NextPageURL returns the absolute URL of the next page, or nil if the page
// has no next-page link.
func NextPageURL(doc *page.Document, config scraper.ListConfig, baseURL string) (*string, error) {
	link, ok := doc.SelectOne(config.PaginationSelector)
	if !ok {
		return nil, nil
	}

	href, ok := link.Attr("href")
	if !ok {
		return nil, &MissingFieldError{Field: "href", Index: -1}
	}

	next := JoinURL(baseURL, href)
	return &next, nil
}
