package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nextlevelbuilder/topicbot/internal/classify"
	"github.com/nextlevelbuilder/topicbot/internal/config"
	"github.com/nextlevelbuilder/topicbot/internal/content"
	"github.com/nextlevelbuilder/topicbot/internal/router"
)

// buildEngine loads the routing table and wires the content and
// classification backends selected in cfg into a routing engine.
func buildEngine(cfg *config.Config) (*router.Engine, error) {
	routes, err := config.LoadRoutingTable(cfg.Routing.CategoryChannelFile)
	if err != nil {
		return nil, err
	}
	table := router.NewRoutingTable(routes)
	slog.Info("routing table loaded", "path", cfg.Routing.CategoryChannelFile, "categories", table.Len())

	articles, err := newArticleExtractor(cfg.Article)
	if err != nil {
		return nil, err
	}
	threads := content.NewRedditClient(cfg.Reddit.UserAgent, seconds(cfg.Reddit.TimeoutSec))
	resolver := content.NewResolver(articles, threads, cfg.Resolver.MaxDepth)

	svc, err := newClassificationService(cfg.Classifier, table.Categories())
	if err != nil {
		return nil, err
	}
	classifier := classify.New(svc, table, cfg.Classifier.MaxUnits)

	eval := router.NewEvaluator(resolver, classifier, router.EvaluatorConfig{
		Cutoff:             cfg.Routing.ConfidenceCutoff,
		MinTextChars:       cfg.Routing.MinTextChars,
		MaxConcurrency:     cfg.Resolver.MaxConcurrency,
		SkipContentDomains: cfg.Resolver.SkipContentDomains,
	})
	filters := router.NewFilters(cfg.Routing.IgnoredChannels, cfg.Routing.IgnoredRoles)

	return router.NewEngine(table, filters, eval), nil
}

func newArticleExtractor(cfg config.ArticleConfig) (content.ArticleExtractor, error) {
	switch cfg.Backend {
	case config.ArticleBackendMercury, "":
		slog.Info("article backend", "name", config.ArticleBackendMercury, "endpoint", cfg.Endpoint)
		return content.NewMercuryClient(cfg.Endpoint, cfg.APIKey, seconds(cfg.TimeoutSec)), nil
	case config.ArticleBackendReadability:
		slog.Info("article backend", "name", config.ArticleBackendReadability)
		return content.NewReadabilityExtractor(seconds(cfg.TimeoutSec), cfg.MaxBodyBytes), nil
	default:
		return nil, fmt.Errorf("unknown article backend %q", cfg.Backend)
	}
}

func newClassificationService(cfg config.ClassifierConfig, categories []string) (classify.Service, error) {
	switch cfg.Backend {
	case config.ClassifierBackendGoogle, "":
		slog.Info("classifier backend", "name", config.ClassifierBackendGoogle)
		return classify.NewGoogleClient(cfg.APIKey, cfg.APIBase, seconds(cfg.TimeoutSec)), nil
	case config.ClassifierBackendOpenAI:
		slog.Info("classifier backend", "name", config.ClassifierBackendOpenAI, "model", cfg.Model)
		return classify.NewOpenAIClient(cfg.APIKey, cfg.APIBase, cfg.Model, categories, seconds(cfg.TimeoutSec)), nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", cfg.Backend)
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
