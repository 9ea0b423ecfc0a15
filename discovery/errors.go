package discovery

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnexpectedStatus is wrapped by a FetchError when the server answered
// with anything other than 200 OK.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// FetchError describes a failed page request: either the transport failed
// or the server answered with a non-200 status.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s: HTTP error: %d %s",
			e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MissingFieldError describes a listing block, or the next-page link, that
// lacks a required element or attribute.
type MissingFieldError struct {
	Field string
	Index int // position of the listing block on its page, -1 for the next-page link
}

func (e *MissingFieldError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("next page link is missing %s", e.Field)
	}
	return fmt.Sprintf("quote %d is missing %s", e.Index, e.Field)
}
