package classify

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CharsPerUnit is the size of one billing unit of the classification service.
const CharsPerUnit = 1000

var tracer = otel.Tracer("github.com/nextlevelbuilder/topicbot/internal/classify")

// Classifier bounds the text sent to a Service and picks the most confident
// category the routing table knows about.
type Classifier struct {
	svc      Service
	vocab    Vocabulary
	maxUnits int
}

// New creates a Classifier. maxUnits caps the input at maxUnits*CharsPerUnit characters.
func New(svc Service, vocab Vocabulary, maxUnits int) *Classifier {
	if maxUnits <= 0 {
		maxUnits = 1
	}
	return &Classifier{svc: svc, vocab: vocab, maxUnits: maxUnits}
}

// Classify returns the highest-confidence category of text that is present
// in the vocabulary. Ties keep the category the service listed first.
func (c *Classifier) Classify(ctx context.Context, text string) (_ Result, err error) {
	text = Truncate(text, c.maxUnits*CharsPerUnit)

	ctx, span := tracer.Start(ctx, "classify.classify")
	span.SetAttributes(
		attribute.String("service", c.svc.Name()),
		attribute.Int("chars", utf8.RuneCountInString(text)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	cats, err := c.svc.Classify(ctx, text)
	if err != nil {
		return Result{}, fmt.Errorf("classify text: %w", err)
	}
	slog.Debug("classification response", "service", c.svc.Name(), "categories", len(cats))

	var (
		best  Result
		found bool
	)
	for _, cat := range cats {
		if !c.vocab.Has(cat.Name) {
			continue
		}
		if !found || cat.Confidence > best.Confidence {
			best = Result{Category: cat.Name, Confidence: cat.Confidence}
			found = true
		}
	}
	if !found {
		return Result{}, ErrNoQualifyingCategory
	}

	span.SetAttributes(attribute.String("category", best.Category), attribute.Float64("confidence", best.Confidence))
	return best, nil
}

// Truncate returns at most limit characters of text.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	n := 0
	for i := range text {
		if n == limit {
			return text[:i]
		}
		n++
	}
	return text
}
