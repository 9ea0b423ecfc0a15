// Package page wraps a parsed HTML document behind explicit select-one and
// select-all lookups. Absence is reported to the caller instead of being
// hidden in an empty selection.
package page

import (
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// Element is a single node matched by a selector.
type Element struct {
	sel *goquery.Selection
}

// Document is a parsed HTML page.
type Document struct {
	Element
}

// Parse reads and parses an HTML document.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return NewDocument(doc), nil
}

// NewDocument wraps an already parsed goquery document.
func NewDocument(doc *goquery.Document) *Document {
	return &Document{Element: Element{sel: doc.Selection}}
}

// SelectOne returns the first descendant matching selector. The boolean is
// false when nothing matches.
func (e Element) SelectOne(selector string) (Element, bool) {
	if e.sel == nil {
		return Element{}, false
	}
	found := e.sel.Find(selector).First()
	if found.Length() == 0 {
		return Element{}, false
	}
	return Element{sel: found}, true
}

// SelectAll returns every descendant matching selector in document order.
// The result is empty, not nil, when nothing matches.
func (e Element) SelectAll(selector string) []Element {
	if e.sel == nil {
		return []Element{}
	}
	found := e.sel.Find(selector)
	elements := make([]Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, Element{sel: s})
	})
	return elements
}

// Text returns the combined text of the element and its descendants,
// whitespace included.
func (e Element) Text() string {
	if e.sel == nil {
		return ""
	}
	return e.sel.Text()
}

// Attr returns the raw value of the named attribute.
func (e Element) Attr(name string) (string, bool) {
	if e.sel == nil {
		return "", false
	}
	return e.sel.Attr(name)
}
