// Package classify assigns a routing category to a block of plain text using
// an external classification service.
package classify

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoQualifyingCategory is returned when the service answered but none of
// its categories is present in the routing table.
var ErrNoQualifyingCategory = errors.New("no qualifying category")

// Category is one label returned by a classification service.
type Category struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// Result is the chosen category for a text.
type Result struct {
	Category   string
	Confidence float64
}

// Service is a remote text classifier.
type Service interface {
	Name() string
	Classify(ctx context.Context, text string) ([]Category, error)
}

// Vocabulary is the set of category names the caller can act on.
type Vocabulary interface {
	Has(category string) bool
}

// HTTPError is a non-200 answer from a classification service.
type HTTPError struct {
	Service string
	Status  int
	Body    string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.Status, e.Body)
}
