package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/titanous/json5"
)

const (
	defaultMercuryEndpoint = "https://mercury.postlight.com/parser"
	defaultRedditUserAgent = "topicbot/1.0 (content routing bot)"
)

// Default returns a Config with sensible defaults.
// Cutoff, max units and minimum text length have no default: they must be configured.
func Default() *Config {
	return &Config{
		Resolver: ResolverConfig{
			MaxDepth:           3,
			MaxConcurrency:     8,
			SkipContentDomains: []string{"twitter.com", "x.com"},
		},
		Article: ArticleConfig{
			Backend:      ArticleBackendMercury,
			Endpoint:     defaultMercuryEndpoint,
			TimeoutSec:   20,
			MaxBodyBytes: 2 << 20,
		},
		Reddit: RedditConfig{
			UserAgent:  defaultRedditUserAgent,
			TimeoutSec: 15,
		},
		Classifier: ClassifierConfig{
			Backend:    ClassifierBackendGoogle,
			TimeoutSec: 30,
		},
		Telemetry: TelemetryConfig{
			Protocol:    "grpc",
			ServiceName: "topicbot",
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars.
// A missing file is not an error: env vars alone can configure the bot.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := json5.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values. The unprefixed names are the
// ones the bot has always read; TOPICBOT_* names win when both are set.
func (c *Config) applyEnvOverrides() error {
	envStr := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v := os.Getenv(key); v != "" {
				*dst = v
			}
		}
	}
	var errs []error
	envFloat := func(dst *float64, keys ...string) {
		for _, key := range keys {
			if v := os.Getenv(key); v != "" {
				f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %q is not a number", key, v))
					continue
				}
				*dst = f
			}
		}
	}
	envInt := func(dst *int, keys ...string) {
		for _, key := range keys {
			if v := os.Getenv(key); v != "" {
				n, err := strconv.Atoi(strings.TrimSpace(v))
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %q is not an integer", key, v))
					continue
				}
				*dst = n
			}
		}
	}
	envList := func(dst *FlexibleStringSlice, keys ...string) {
		for _, key := range keys {
			if v := os.Getenv(key); v != "" {
				*dst = splitList(v)
			}
		}
	}

	envStr(&c.Discord.Token, "DISCORD_TOKEN", "TOPICBOT_DISCORD_TOKEN")

	envStr(&c.Routing.CategoryChannelFile, "CATEGORY_CHANNEL_FILE", "TOPICBOT_CATEGORY_CHANNEL_FILE")
	envFloat(&c.Routing.ConfidenceCutoff, "CONFIDENCE_CUTOFF", "TOPICBOT_CONFIDENCE_CUTOFF")
	envInt(&c.Routing.MinTextChars, "CHARS_NON_URL", "TOPICBOT_MIN_TEXT_CHARS")
	envList(&c.Routing.IgnoredChannels, "TOPICBOT_IGNORED_CHANNELS")
	envList(&c.Routing.IgnoredRoles, "TOPICBOT_IGNORED_ROLES")
	if v := os.Getenv("TOPICBOT_ANNOUNCE_MOVES"); v != "" {
		announce := v == "true" || v == "1"
		c.Routing.AnnounceMoves = &announce
	}

	envInt(&c.Resolver.MaxDepth, "TOPICBOT_RESOLVER_MAX_DEPTH")
	envInt(&c.Resolver.MaxConcurrency, "TOPICBOT_RESOLVER_MAX_CONCURRENCY")

	envStr(&c.Article.Backend, "TOPICBOT_ARTICLE_BACKEND")
	envStr(&c.Article.Endpoint, "TOPICBOT_ARTICLE_ENDPOINT")
	envStr(&c.Article.APIKey, "MERCURY_API_KEY", "TOPICBOT_MERCURY_API_KEY")

	envStr(&c.Reddit.UserAgent, "TOPICBOT_REDDIT_USER_AGENT")

	envStr(&c.Classifier.Backend, "TOPICBOT_CLASSIFIER_BACKEND")
	envStr(&c.Classifier.APIKey, "GOOGLE_API_KEY", "TOPICBOT_CLASSIFIER_API_KEY")
	envStr(&c.Classifier.APIBase, "TOPICBOT_CLASSIFIER_API_BASE")
	envStr(&c.Classifier.Model, "TOPICBOT_CLASSIFIER_MODEL")
	envInt(&c.Classifier.MaxUnits, "MAX_NL_UNITS", "TOPICBOT_MAX_UNITS")

	// Telemetry
	envStr(&c.Telemetry.Endpoint, "TOPICBOT_TELEMETRY_ENDPOINT")
	envStr(&c.Telemetry.Protocol, "TOPICBOT_TELEMETRY_PROTOCOL")
	envStr(&c.Telemetry.ServiceName, "TOPICBOT_TELEMETRY_SERVICE_NAME")
	if v := os.Getenv("TOPICBOT_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("TOPICBOT_TELEMETRY_INSECURE"); v != "" {
		c.Telemetry.Insecure = v == "true" || v == "1"
	}

	return errors.Join(errs...)
}

// Validate checks the settings the routing engine cannot run without.
// requireToken is false for commands that never connect to Discord.
func (c *Config) Validate(requireToken bool) error {
	var errs []error

	if requireToken && c.Discord.Token == "" {
		errs = append(errs, errors.New("discord token is required (DISCORD_TOKEN)"))
	}

	if c.Routing.CategoryChannelFile == "" {
		errs = append(errs, errors.New("routing.category_channel_file is required (CATEGORY_CHANNEL_FILE)"))
	}
	if !(c.Routing.ConfidenceCutoff > 0 && c.Routing.ConfidenceCutoff <= 1) {
		errs = append(errs, errors.New("routing.confidence_cutoff must be > 0 and <= 1 (CONFIDENCE_CUTOFF)"))
	}
	if c.Routing.MinTextChars <= 0 {
		errs = append(errs, errors.New("routing.min_text_chars must be > 0 (CHARS_NON_URL)"))
	}
	if c.Classifier.MaxUnits <= 0 {
		errs = append(errs, errors.New("classifier.max_units must be > 0 (MAX_NL_UNITS)"))
	}
	if c.Resolver.MaxDepth <= 0 {
		errs = append(errs, errors.New("resolver.max_depth must be > 0"))
	}
	if c.Resolver.MaxConcurrency <= 0 {
		errs = append(errs, errors.New("resolver.max_concurrency must be > 0"))
	}

	switch c.Article.Backend {
	case ArticleBackendMercury:
		if c.Article.APIKey == "" {
			errs = append(errs, errors.New("mercury article backend requires MERCURY_API_KEY"))
		}
		if c.Article.Endpoint == "" {
			errs = append(errs, errors.New("article.endpoint is required for the mercury backend"))
		}
	case ArticleBackendReadability:
	default:
		errs = append(errs, fmt.Errorf("unknown article backend %q", c.Article.Backend))
	}

	switch c.Classifier.Backend {
	case ClassifierBackendGoogle:
		if c.Classifier.APIKey == "" {
			errs = append(errs, errors.New("google classifier backend requires GOOGLE_API_KEY"))
		}
	case ClassifierBackendOpenAI:
		if c.Classifier.APIKey == "" {
			errs = append(errs, errors.New("openai classifier backend requires TOPICBOT_CLASSIFIER_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown classifier backend %q", c.Classifier.Backend))
	}

	return errors.Join(errs...)
}

// LoadRoutingTable reads the category → channel mapping.
// Any read or parse problem, or an empty mapping, is fatal for startup.
func LoadRoutingTable(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category channel file: %w", err)
	}

	var table map[string]string
	if err := json5.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse category channel file %s: %w", path, err)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("category channel file %s has no entries", path)
	}
	for category, channel := range table {
		if strings.TrimSpace(category) == "" || strings.TrimSpace(channel) == "" {
			return nil, fmt.Errorf("category channel file %s: empty category or channel name", path)
		}
	}
	return table, nil
}

const secretMask = "***"

// Masked returns a copy of the config with secrets replaced, for display.
func (c *Config) Masked() Config {
	cp := *c
	maskNonEmpty(&cp.Discord.Token)
	maskNonEmpty(&cp.Article.APIKey)
	maskNonEmpty(&cp.Classifier.APIKey)
	return cp
}

func maskNonEmpty(s *string) {
	if *s != "" {
		*s = secretMask
	}
}

func splitList(v string) FlexibleStringSlice {
	var out FlexibleStringSlice
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
