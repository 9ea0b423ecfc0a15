package scraper

// DefaultBaseURL is the listing site the scraper was built for. Next-page
// references are appended to it verbatim.
const DefaultBaseURL = "https://quotes.toscrape.com/"

// ScraperConfig defines where to start scraping and how to read each
// listing page.
type ScraperConfig struct {
	BaseURL    string     `json:"base_url" yaml:"base_url"`
	ListConfig ListConfig `json:"list_config" yaml:"list_config"`
}

// ListConfig defines how to find quotes on a listing page and how to reach
// the next one.
type ListConfig struct {
	QuoteSelector      string `json:"quote_selector" yaml:"quote_selector"`
	TextSelector       string `json:"text_selector" yaml:"text_selector"`
	AuthorSelector     string `json:"author_selector" yaml:"author_selector"`
	TagSelector        string `json:"tag_selector" yaml:"tag_selector"`
	PaginationSelector string `json:"pagination_selector" yaml:"pagination_selector"`
	MaxPages           int    `json:"max_pages" yaml:"max_pages"` // 0 means no limit
}

// NewListConfig creates a list configuration with the selectors used by
// the quotes site.
func NewListConfig() ListConfig {
	return ListConfig{
		QuoteSelector:      ".quote",
		TextSelector:       ".text",
		AuthorSelector:     ".author",
		TagSelector:        ".tag",
		PaginationSelector: ".next > a",
	}
}

// DefaultScraperConfig returns the configuration for the quotes site with
// no page limit.
func DefaultScraperConfig() ScraperConfig {
	return ScraperConfig{
		BaseURL:    DefaultBaseURL,
		ListConfig: NewListConfig(),
	}
}

// WithDefaults fills any empty selector from NewListConfig. MaxPages is
// left as given.
func (c ListConfig) WithDefaults() ListConfig {
	defaults := NewListConfig()
	if c.QuoteSelector == "" {
		c.QuoteSelector = defaults.QuoteSelector
	}
	if c.TextSelector == "" {
		c.TextSelector = defaults.TextSelector
	}
	if c.AuthorSelector == "" {
		c.AuthorSelector = defaults.AuthorSelector
	}
	if c.TagSelector == "" {
		c.TagSelector = defaults.TagSelector
	}
	if c.PaginationSelector == "" {
		c.PaginationSelector = defaults.PaginationSelector
	}
	return c
}
