package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MercuryClient extracts articles through a Mercury-compatible parser API
// (GET <endpoint>?url=<page> with an x-api-key header).
type MercuryClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewMercuryClient creates an article extractor backed by the Mercury parser.
func NewMercuryClient(endpoint, apiKey string, timeout time.Duration) *MercuryClient {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &MercuryClient{
		endpoint: strings.TrimRight(endpoint, "?"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type mercuryResponse struct {
	Title   *string `json:"title"`
	Excerpt *string `json:"excerpt"`
	Content *string `json:"content"`
	Author  *string `json:"author"`
	Domain  *string `json:"domain"`

	// Some deployments answer 200 with {"error": true, "messages": "..."}.
	Error    bool   `json:"error"`
	Messages string `json:"messages"`
}

// Extract implements ArticleExtractor.
func (m *MercuryClient) Extract(ctx context.Context, pageURL string) (*Extracted, error) {
	slog.Debug("parsing article", "url", pageURL, "backend", "mercury")

	reqURL := m.endpoint + "?url=" + url.QueryEscape(pageURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mercury request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{Service: "mercury", Status: resp.StatusCode, URL: pageURL}
	}

	var mr mercuryResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode mercury response: %w", err)
	}
	if mr.Error {
		msg := mr.Messages
		if msg == "" {
			msg = "unknown error"
		}
		return nil, errors.New("mercury: " + msg)
	}

	// Mercury returns HTML for content and excerpt.
	return &Extracted{
		Title:   nonEmpty(value(mr.Title)),
		Excerpt: nonEmpty(HTMLToText(value(mr.Excerpt))),
		Content: nonEmpty(HTMLToText(value(mr.Content))),
		Author:  nonEmpty(value(mr.Author)),
		Domain:  nonEmpty(value(mr.Domain)),
	}, nil
}
