// Package content resolves links to plain text suitable for classification.
//
// A Resolver dispatches each URL either to a discussion-thread fetcher
// (Reddit comment pages) or to a generic article extractor, and Assemble
// flattens the result into a single text blob.
package content

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotListing is returned by a ThreadFetcher when the thread JSON is not
	// listing-shaped; the resolver then treats the URL as a regular page.
	ErrNotListing = errors.New("thread response is not a listing")

	// ErrMaxDepth is returned when thread links chain deeper than the resolver allows.
	ErrMaxDepth = errors.New("maximum resolution depth exceeded")

	// ErrEmptyContent is returned when an extractor produced no usable field.
	ErrEmptyContent = errors.New("extracted content has no fields")

	// ErrNothingToAssemble is returned by Assemble when no field contributed text.
	ErrNothingToAssemble = errors.New("no text to assemble")
)

// Extracted is the normalized result of resolving one URL.
// Every field is optional; nil means the source did not provide it.
type Extracted struct {
	Title   *string `json:"title,omitempty"`
	Excerpt *string `json:"excerpt,omitempty"`
	Content *string `json:"content,omitempty"`
	Author  *string `json:"author,omitempty"`
	Domain  *string `json:"domain,omitempty"`
}

// Empty reports whether no field carries any text.
func (x *Extracted) Empty() bool {
	if x == nil {
		return true
	}
	for _, f := range []*string{x.Title, x.Excerpt, x.Content, x.Author, x.Domain} {
		if value(f) != "" {
			return false
		}
	}
	return true
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// nonEmpty returns nil for blank strings so absent and empty fields look the same.
func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// HTTPError is a non-success response from an upstream content service.
type HTTPError struct {
	Service string
	Status  int
	URL     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: HTTP %d for %s", e.Service, e.Status, e.URL)
}
