package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOpenAIAPIBase = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAIClient classifies text with an OpenAI-compatible chat completion API
// (OpenAI, Groq, OpenRouter, vLLM, etc.). The model is asked to score the
// text against a fixed category list and answer in JSON.
type OpenAIClient struct {
	apiKey     string
	apiBase    string
	model      string
	categories []string
	client     *http.Client
}

// NewOpenAIClient creates an OpenAIClient that picks from categories.
func NewOpenAIClient(apiKey, apiBase, model string, categories []string, timeout time.Duration) *OpenAIClient {
	if apiBase == "" {
		apiBase = defaultOpenAIAPIBase
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIClient{
		apiKey:     apiKey,
		apiBase:    strings.TrimRight(apiBase, "/"),
		model:      model,
		categories: categories,
		client:     &http.Client{Timeout: timeout},
	}
}

func (p *OpenAIClient) Name() string { return "openai" }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat map[string]any  `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenAIClient) systemPrompt() string {
	var sb strings.Builder
	sb.WriteString("You classify text into topic categories. Allowed categories:\n")
	for _, c := range p.categories {
		sb.WriteString("- ")
		sb.WriteString(c)
		sb.WriteString("\n")
	}
	sb.WriteString("\nReply with a JSON object only, in the form ")
	sb.WriteString(`{"categories":[{"name":"<category>","confidence":<0..1>}]}`)
	sb.WriteString(". Use the category names exactly as listed. Omit categories that do not apply.")
	return sb.String()
}

// Classify implements Service.
func (p *OpenAIClient) Classify(ctx context.Context, text string) ([]Category, error) {
	data, err := json.Marshal(openAIRequest{
		Model: p.model,
		Messages: []openAIMessage{
			{Role: "system", Content: p.systemPrompt()},
			{Role: "user", Content: text},
		},
		ResponseFormat: map[string]any{"type": "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiBase+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("openai: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &HTTPError{Service: "openai", Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var oaiResp openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&oaiResp); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(oaiResp.Choices) == 0 {
		return nil, errors.New("openai: empty response")
	}
	return parseCategoryReply(oaiResp.Choices[0].Message.Content)
}

// parseCategoryReply extracts the first JSON object from a model reply.
// Models sometimes wrap JSON in prose or code fences.
func parseCategoryReply(content string) ([]Category, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("openai: no JSON object in reply %q", truncateForLog(content))
	}

	var out categoryList
	if err := json.Unmarshal([]byte(content[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("openai: parse reply: %w", err)
	}

	cats := out.Categories[:0]
	for _, c := range out.Categories {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" || c.Confidence < 0 || c.Confidence > 1 {
			continue
		}
		cats = append(cats, c)
	}
	return cats, nil
}

func truncateForLog(s string) string {
	const maxLen = 200
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
