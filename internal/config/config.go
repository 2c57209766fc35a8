package config

import (
	"encoding/json"
	"fmt"
)

// FlexibleStringSlice accepts both ["str"] and [123] in JSON.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

// Config is the root configuration for topicbot.
// It is built once at startup and treated as read-only afterwards.
type Config struct {
	Discord    DiscordConfig    `json:"discord"`
	Routing    RoutingConfig    `json:"routing"`
	Resolver   ResolverConfig   `json:"resolver"`
	Article    ArticleConfig    `json:"article"`
	Reddit     RedditConfig     `json:"reddit"`
	Classifier ClassifierConfig `json:"classifier"`
	Telemetry  TelemetryConfig  `json:"telemetry,omitempty"`
}

// DiscordConfig holds the bot credentials.
// Token is normally supplied via DISCORD_TOKEN / TOPICBOT_DISCORD_TOKEN.
type DiscordConfig struct {
	Token string `json:"token"`
}

// RoutingConfig controls when and where messages are moved.
type RoutingConfig struct {
	CategoryChannelFile string              `json:"category_channel_file"`       // JSON object: category name → channel name
	ConfidenceCutoff    float64             `json:"confidence_cutoff"`           // required, 0 < c <= 1
	MinTextChars        int                 `json:"min_text_chars"`              // required, min length of a link-less message
	AnnounceMoves       *bool               `json:"announce_moves,omitempty"`    // post move notices (default true)
	IgnoredChannels     FlexibleStringSlice `json:"ignored_channels,omitempty"`  // channel names never routed
	IgnoredRoles        FlexibleStringSlice `json:"ignored_roles,omitempty"`     // authors holding any of these roles are skipped
}

// ShouldAnnounce reports whether move notices are enabled (default true).
func (r RoutingConfig) ShouldAnnounce() bool {
	return r.AnnounceMoves == nil || *r.AnnounceMoves
}

// ResolverConfig bounds URL resolution work per message.
type ResolverConfig struct {
	MaxDepth           int      `json:"max_depth,omitempty"`            // thread → link → thread hops (default 3)
	MaxConcurrency     int      `json:"max_concurrency,omitempty"`      // parallel URL resolutions per message (default 8)
	SkipContentDomains []string `json:"skip_content_domains,omitempty"` // domains whose body text is dropped (default twitter.com, x.com)
}

// ArticleConfig selects the generic web page extractor.
type ArticleConfig struct {
	Backend      string `json:"backend,omitempty"`        // "mercury" (default) or "readability"
	Endpoint     string `json:"endpoint,omitempty"`       // Mercury parser endpoint
	APIKey       string `json:"-"`                        // from env MERCURY_API_KEY only
	TimeoutSec   int    `json:"timeout_sec,omitempty"`    // per request (default 20)
	MaxBodyBytes int64  `json:"max_body_bytes,omitempty"` // readability page size cap (default 2MB)
}

// RedditConfig configures the discussion-thread JSON client.
type RedditConfig struct {
	UserAgent  string `json:"user_agent,omitempty"`
	TimeoutSec int    `json:"timeout_sec,omitempty"` // default 15
}

// ClassifierConfig selects and configures the category classification service.
type ClassifierConfig struct {
	Backend    string `json:"backend,omitempty"`     // "google" (default) or "openai"
	APIKey     string `json:"-"`                     // from env only
	APIBase    string `json:"api_base,omitempty"`    // service base URL override
	Model      string `json:"model,omitempty"`       // openai backend model; empty uses gpt-4o-mini
	MaxUnits   int    `json:"max_units"`             // required, 1 unit = 1000 characters
	TimeoutSec int    `json:"timeout_sec,omitempty"` // default 30
}

// TelemetryConfig configures OpenTelemetry export for traces and spans.
type TelemetryConfig struct {
	Enabled     bool              `json:"enabled,omitempty"`      // enable OTLP export (default false)
	Endpoint    string            `json:"endpoint,omitempty"`     // OTLP endpoint (e.g. "localhost:4317", "https://otel.example.com:4318")
	Protocol    string            `json:"protocol,omitempty"`     // "grpc" (default) or "http"
	Insecure    bool              `json:"insecure,omitempty"`     // plain-text transport for local collectors
	ServiceName string            `json:"service_name,omitempty"` // OTEL service name (default "topicbot")
	Headers     map[string]string `json:"headers,omitempty"`      // extra headers (e.g. auth tokens for cloud backends)
}

// Backend names.
const (
	ArticleBackendMercury     = "mercury"
	ArticleBackendReadability = "readability"

	ClassifierBackendGoogle = "google"
	ClassifierBackendOpenAI = "openai"
)
