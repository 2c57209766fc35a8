package router

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/nextlevelbuilder/topicbot/internal/classify"
	"github.com/nextlevelbuilder/topicbot/internal/content"
	"github.com/nextlevelbuilder/topicbot/internal/linkscan"
)

const defaultMaxConcurrency = 8

// Resolver turns a URL into extracted page content.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (*content.Extracted, error)
}

// Classifier picks a routable category for a text.
type Classifier interface {
	Classify(ctx context.Context, text string) (classify.Result, error)
}

// EvaluatorConfig holds the acceptance policy for candidates.
type EvaluatorConfig struct {
	Cutoff             float64  // minimum accepted confidence, inclusive
	MinTextChars       int      // link-less messages shorter than this are rejected
	MaxConcurrency     int      // parallel URL resolutions per message
	SkipContentDomains []string // passed to content.Assemble
}

// Outcome is the result of evaluating one message body.
type Outcome struct {
	Matched    bool
	Category   string
	Confidence float64
	Candidate  int    // index of the accepting candidate, -1 if unmatched
	Reason     string // why the message was not matched
}

func unmatched(reason string) Outcome {
	return Outcome{Candidate: -1, Reason: reason}
}

// Evaluator gathers candidate texts for a message and accepts the first one
// whose classification meets the cutoff.
type Evaluator struct {
	resolver   Resolver
	classifier Classifier
	cfg        EvaluatorConfig
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(resolver Resolver, classifier Classifier, cfg EvaluatorConfig) *Evaluator {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}
	return &Evaluator{resolver: resolver, classifier: classifier, cfg: cfg}
}

// Evaluate runs the full candidate pipeline for text. Failures of external
// services never escape: they only make a candidate or the message unmatched.
func (e *Evaluator) Evaluate(ctx context.Context, text string) Outcome {
	urls := linkscan.Extract(text)

	var candidates []Candidate
	if len(urls) == 0 {
		if utf8.RuneCountInString(text) < e.cfg.MinTextChars || strings.IndexFunc(text, unicode.IsSpace) < 0 {
			slog.Debug("message too short to classify", "chars", utf8.RuneCountInString(text))
			return unmatched("text too short")
		}
		candidates = []Candidate{{Index: 0, Origin: OriginMessage, Text: text}}
	} else {
		candidates = e.Gather(ctx, urls)
		if !anyUsable(candidates) {
			slog.Warn("no candidate text could be resolved", "urls", len(urls))
			return unmatched("no resolvable content")
		}
	}

	return e.scan(ctx, candidates)
}

// Gather resolves and assembles every URL concurrently and returns one
// candidate per URL in input order. It always waits for all resolutions.
func (e *Evaluator) Gather(ctx context.Context, urls []string) []Candidate {
	candidates := make([]Candidate, len(urls))

	var g errgroup.Group
	g.SetLimit(e.cfg.MaxConcurrency)
	for i, u := range urls {
		g.Go(func() error {
			candidates[i] = e.resolveOne(ctx, i, u)
			return nil
		})
	}
	_ = g.Wait()

	return candidates
}

func (e *Evaluator) resolveOne(ctx context.Context, index int, rawURL string) Candidate {
	c := Candidate{Index: index, Origin: OriginURL, URL: rawURL}

	x, err := e.resolver.Resolve(ctx, rawURL)
	if err != nil {
		slog.Warn("url resolution failed", "url", rawURL, "error", err)
		c.Err = err
		return c
	}

	text, err := content.Assemble(x, e.cfg.SkipContentDomains)
	if err != nil {
		slog.Warn("assemble content failed", "url", rawURL, "error", err)
		c.Err = err
		return c
	}

	c.Text = text
	return c
}

// scan classifies usable candidates in order and stops at the first accepted one.
func (e *Evaluator) scan(ctx context.Context, candidates []Candidate) Outcome {
	for _, c := range candidates {
		if !c.Usable() {
			continue
		}

		res, err := e.classifier.Classify(ctx, c.Text)
		if err != nil {
			if errors.Is(err, classify.ErrNoQualifyingCategory) {
				slog.Debug("no routable category", "candidate", c.Index, "origin", c.Origin)
			} else {
				slog.Warn("classification failed", "candidate", c.Index, "origin", c.Origin, "error", err)
			}
			continue
		}

		slog.Debug("candidate classified",
			"candidate", c.Index, "origin", c.Origin, "url", c.URL,
			"category", res.Category, "confidence", res.Confidence)

		if res.Confidence >= e.cfg.Cutoff {
			return Outcome{
				Matched:    true,
				Category:   res.Category,
				Confidence: res.Confidence,
				Candidate:  c.Index,
			}
		}
	}
	return unmatched("no candidate met the cutoff")
}

func anyUsable(candidates []Candidate) bool {
	for _, c := range candidates {
		if c.Usable() {
			return true
		}
	}
	return false
}
