package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultGoogleAPIBase = "https://language.googleapis.com/v1"

// GoogleClient calls the Cloud Natural Language classifyText REST method.
type GoogleClient struct {
	apiKey  string
	apiBase string
	client  *http.Client
}

// NewGoogleClient creates a GoogleClient. An empty apiBase uses the public endpoint.
func NewGoogleClient(apiKey, apiBase string, timeout time.Duration) *GoogleClient {
	if apiBase == "" {
		apiBase = defaultGoogleAPIBase
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GoogleClient{
		apiKey:  apiKey,
		apiBase: strings.TrimRight(apiBase, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *GoogleClient) Name() string { return "google" }

type googleClassifyRequest struct {
	Document googleDocument `json:"document"`
}

type googleDocument struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// categoryList is the response shape shared by both backends.
type categoryList struct {
	Categories []Category `json:"categories"`
}

type googleErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Classify implements Service.
func (g *GoogleClient) Classify(ctx context.Context, text string) ([]Category, error) {
	data, err := json.Marshal(googleClassifyRequest{
		Document: googleDocument{Type: "PLAIN_TEXT", Content: text},
	})
	if err != nil {
		return nil, fmt.Errorf("google: marshal request: %w", err)
	}

	endpoint := g.apiBase + "/documents:classifyText?key=" + url.QueryEscape(g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("google: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		// The request URL carries the key; keep it out of logs.
		if ue, ok := err.(*url.Error); ok {
			err = ue.Err
		}
		return nil, fmt.Errorf("google: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(body))
		var ge googleErrorResponse
		if json.Unmarshal(body, &ge) == nil && ge.Error.Message != "" {
			msg = ge.Error.Message
		}
		return nil, &HTTPError{Service: "google", Status: resp.StatusCode, Body: msg}
	}

	var out categoryList
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("google: decode response: %w", err)
	}
	return out.Categories, nil
}
