package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxThreadJSONBytes = 4 << 20

// RedditClient fetches thread JSON from Reddit's public, unauthenticated endpoints.
type RedditClient struct {
	client    *http.Client
	userAgent string
}

// NewRedditClient creates a thread fetcher. Reddit throttles requests without
// a descriptive User-Agent, so one is always sent.
func NewRedditClient(userAgent string, timeout time.Duration) *RedditClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RedditClient{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

type redditListing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []struct {
			Kind string     `json:"kind"`
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title                 string `json:"title"`
	SubredditNamePrefixed string `json:"subreddit_name_prefixed"`
	URL                   string `json:"url"`
	SelfText              string `json:"selftext"`
	IsSelf                bool   `json:"is_self"`
}

// FetchThread loads <thread>.json and returns the opening post.
func (c *RedditClient) FetchThread(ctx context.Context, threadURL string) (*Thread, error) {
	jsonURL, err := threadJSONURL(threadURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jsonURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{Service: "reddit", Status: resp.StatusCode, URL: jsonURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxThreadJSONBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return parseThread(body)
}

// parseThread decodes a thread page: a JSON array whose first element is the
// post listing. Anything else is reported as ErrNotListing.
func parseThread(body []byte) (*Thread, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotListing
	}

	var listings []redditListing
	if err := json.Unmarshal(trimmed, &listings); err != nil {
		return nil, fmt.Errorf("decode thread: %w", err)
	}
	if len(listings) == 0 || listings[0].Kind != "Listing" {
		return nil, ErrNotListing
	}

	children := listings[0].Data.Children
	if len(children) == 0 {
		return nil, errors.New("thread listing has no posts")
	}

	post := children[0].Data
	return &Thread{
		Title:     post.Title,
		Subreddit: post.SubredditNamePrefixed,
		URL:       post.URL,
		SelfText:  post.SelfText,
		IsSelf:    post.IsSelf,
	}, nil
}

// threadJSONURL appends ".json" to the thread path, keeping the query.
func threadJSONURL(threadURL string) (string, error) {
	u, err := url.Parse(threadURL)
	if err != nil {
		return "", fmt.Errorf("parse thread url: %w", err)
	}
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/") + ".json"
	u.RawPath = ""
	return u.String(), nil
}
