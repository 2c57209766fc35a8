package content

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const (
	defaultMaxPageBytes = 2 << 20
	fetchUserAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7_2) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxRedirects        = 5
)

// ReadabilityExtractor fetches pages directly and extracts the main article
// in-process, for deployments without a parser service.
type ReadabilityExtractor struct {
	client   *http.Client
	maxBytes int64
}

// NewReadabilityExtractor creates an in-process article extractor.
func NewReadabilityExtractor(timeout time.Duration, maxBytes int64) *ReadabilityExtractor {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxPageBytes
	}
	return &ReadabilityExtractor{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		maxBytes: maxBytes,
	}
}

// Extract implements ArticleExtractor.
func (e *ReadabilityExtractor) Extract(ctx context.Context, pageURL string) (*Extracted, error) {
	slog.Debug("parsing article", "url", pageURL, "backend", "readability")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{Service: "page", Status: resp.StatusCode, URL: pageURL}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}

	finalURL := resp.Request.URL
	article, err := readability.FromReader(io.LimitReader(resp.Body, e.maxBytes), finalURL)
	if err != nil {
		return nil, fmt.Errorf("extract content: %w", err)
	}

	return &Extracted{
		Title:   nonEmpty(article.Title),
		Excerpt: nonEmpty(article.Excerpt),
		Content: nonEmpty(strings.Join(strings.Fields(article.TextContent), " ")),
		Author:  nonEmpty(article.Byline),
		Domain:  nonEmpty(finalURL.Hostname()),
	}, nil
}
