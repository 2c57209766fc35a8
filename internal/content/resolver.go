package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/nextlevelbuilder/topicbot/internal/content")

// threadURLPattern matches Reddit comment pages: <host>/r/<name>/comments/<id>.
var threadURLPattern = regexp.MustCompile(`(?i)^https?://([a-z0-9-]+\.)*reddit\.com/r/[^/?#\s]+/comments/[^/?#\s]+`)

// IsThreadURL reports whether rawURL points at a discussion thread.
func IsThreadURL(rawURL string) bool {
	return threadURLPattern.MatchString(rawURL)
}

// ArticleExtractor turns a generic web page into Extracted fields.
type ArticleExtractor interface {
	Extract(ctx context.Context, pageURL string) (*Extracted, error)
}

// Thread is the opening post of a discussion thread.
type Thread struct {
	Title     string
	Subreddit string // display name, e.g. "r/golang"
	URL       string // link target; equals the thread itself for self-posts
	SelfText  string
	IsSelf    bool
}

// ThreadFetcher loads the opening post of a discussion thread.
// It returns ErrNotListing when the URL does not yield a thread listing.
type ThreadFetcher interface {
	FetchThread(ctx context.Context, threadURL string) (*Thread, error)
}

// Resolver resolves a URL to Extracted content, following thread posts
// that link elsewhere up to maxDepth hops.
type Resolver struct {
	articles ArticleExtractor
	threads  ThreadFetcher
	maxDepth int
}

// NewResolver creates a Resolver. maxDepth <= 0 means a single hop.
func NewResolver(articles ArticleExtractor, threads ThreadFetcher, maxDepth int) *Resolver {
	if maxDepth <= 0 {
		maxDepth = 1
	}
	return &Resolver{articles: articles, threads: threads, maxDepth: maxDepth}
}

// Resolve returns the content behind rawURL. All failures come back as errors.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*Extracted, error) {
	return r.resolve(ctx, rawURL, 0)
}

func (r *Resolver) resolve(ctx context.Context, rawURL string, depth int) (_ *Extracted, err error) {
	if depth > r.maxDepth {
		return nil, fmt.Errorf("resolve %s: %w (%d)", rawURL, ErrMaxDepth, r.maxDepth)
	}

	ctx, span := tracer.Start(ctx, "content.resolve")
	span.SetAttributes(attribute.String("url", rawURL), attribute.Int("depth", depth))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if !IsThreadURL(rawURL) {
		return r.article(ctx, rawURL)
	}

	slog.Debug("resolving discussion thread", "url", rawURL, "depth", depth)
	th, err := r.threads.FetchThread(ctx, rawURL)
	if errors.Is(err, ErrNotListing) {
		slog.Debug("thread is not a listing, treating as article", "url", rawURL)
		return r.article(ctx, rawURL)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch thread %s: %w", rawURL, err)
	}

	if th.SelfText != "" {
		return &Extracted{
			Title:   nonEmpty(th.Title),
			Author:  nonEmpty(th.Subreddit),
			Content: StringPtr(th.SelfText),
		}, nil
	}

	// A self-post without a body links back to itself; its title is all there is.
	if th.IsSelf || th.URL == "" {
		post := &Extracted{Title: nonEmpty(th.Title), Author: nonEmpty(th.Subreddit)}
		if post.Empty() {
			return nil, fmt.Errorf("thread %s: %w", rawURL, ErrEmptyContent)
		}
		return post, nil
	}

	slog.Debug("thread links elsewhere", "url", rawURL, "target", th.URL)
	return r.resolve(ctx, th.URL, depth+1)
}

func (r *Resolver) article(ctx context.Context, pageURL string) (*Extracted, error) {
	x, err := r.articles.Extract(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract article %s: %w", pageURL, err)
	}
	if x.Empty() {
		return nil, fmt.Errorf("extract article %s: %w", pageURL, ErrEmptyContent)
	}
	return x, nil
}
