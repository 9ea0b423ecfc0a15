package quote

import (
	"slices"
	"strings"
)

// TagSeparator joins a quote's tags into a single CSV field. A tag that
// itself contains the separator cannot be recovered from the joined value.
const TagSeparator = ", "

// Quote is a single quote scraped from a listing page. Any combination of
// strings is accepted, including an empty text or author.
type Quote struct {
	Text   string   `json:"text"`
	Author string   `json:"author"`
	Tags   []string `json:"tags"`
}

// New creates a quote with its own copy of the given tags. A quote without
// tags has an empty, non-nil tag slice.
func New(text, author string, tags ...string) Quote {
	copied := make([]string, len(tags))
	copy(copied, tags)

	return Quote{
		Text:   text,
		Author: author,
		Tags:   copied,
	}
}

// JoinedTags returns the tags joined with TagSeparator, in order.
func (q Quote) JoinedTags() string {
	return strings.Join(q.Tags, TagSeparator)
}

// Equal reports whether two quotes have the same text, author and tags. A
// nil tag slice equals an empty one.
func (q Quote) Equal(other Quote) bool {
	return q.Text == other.Text &&
		q.Author == other.Author &&
		slices.Equal(q.Tags, other.Tags)
}
