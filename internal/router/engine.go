package router

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nextlevelbuilder/topicbot/internal/tracing"
)

var tracer = otel.Tracer("github.com/nextlevelbuilder/topicbot/internal/router")

// State is the terminal state of routing one message.
type State int

const (
	StateUnmatched State = iota
	StateIgnored
	StateSameChannel
	StateChannelNotFound
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateIgnored:
		return "ignored"
	case StateSameChannel:
		return "same_channel"
	case StateChannelNotFound:
		return "channel_not_found"
	case StateResolved:
		return "resolved"
	default:
		return "unmatched"
	}
}

// Move instructs the chat client to relocate a message.
type Move struct {
	DestinationID   string
	DestinationName string
	Category        string
	Confidence      float64
}

// Percent returns the confidence as a whole percentage for display.
func (m Move) Percent() int {
	return int(math.Round(m.Confidence * 100))
}

// Decision is the routing verdict for one message. Move is set only when
// State is StateResolved.
type Decision struct {
	ID      string
	State   State
	Outcome Outcome
	Move    *Move
	Reason  string
}

// Directory resolves channel names within a guild to channel IDs.
type Directory interface {
	ChannelByName(guildID, name string) (string, bool)
}

// Engine applies filters, evaluates a message and maps the accepted category
// to a destination channel.
type Engine struct {
	table   RoutingTable
	filters Filters
	eval    *Evaluator
}

// NewEngine creates an Engine. table and filters are copied by value and
// never mutated.
func NewEngine(table RoutingTable, filters Filters, eval *Evaluator) *Engine {
	return &Engine{table: table, filters: filters, eval: eval}
}

// Table returns the engine's routing table.
func (e *Engine) Table() RoutingTable { return e.table }

// Route decides what to do with msg. It performs no chat-platform mutation.
func (e *Engine) Route(ctx context.Context, msg Message, dir Directory) Decision {
	d := Decision{ID: uuid.NewString()}

	ctx, span := tracer.Start(ctx, "router.route")
	defer func() {
		span.SetAttributes(attribute.String("eval_id", d.ID), attribute.String("state", d.State.String()))
		span.End()
	}()
	span.SetAttributes(attribute.String("channel", msg.ChannelName), attribute.String("guild_id", msg.GuildID))

	log := slog.With("eval_id", d.ID, "channel", msg.ChannelName, "author", msg.AuthorName)
	if tid := tracing.TraceID(ctx); tid != "" {
		log = log.With("trace_id", tid)
	}

	if reason, ignored := e.filters.Ignores(msg); ignored {
		d.State = StateIgnored
		d.Reason = reason
		log.Debug("message ignored", "reason", reason)
		return d
	}

	d.Outcome = e.eval.Evaluate(ctx, msg.Content)
	if !d.Outcome.Matched {
		d.State = StateUnmatched
		d.Reason = d.Outcome.Reason
		log.Debug("message unmatched", "reason", d.Reason)
		return d
	}

	name, ok := e.table.Channel(d.Outcome.Category)
	if !ok {
		d.State = StateChannelNotFound
		d.Reason = fmt.Sprintf("category %q has no route", d.Outcome.Category)
		log.Warn("no route for category", "category", d.Outcome.Category)
		return d
	}

	destID, ok := dir.ChannelByName(msg.GuildID, name)
	if !ok {
		d.State = StateChannelNotFound
		d.Reason = fmt.Sprintf("channel %q not found", name)
		log.Warn("destination channel not found", "category", d.Outcome.Category, "destination", name)
		return d
	}

	if destID == msg.ChannelID {
		d.State = StateSameChannel
		log.Debug("message already in its channel", "category", d.Outcome.Category, "confidence", d.Outcome.Confidence)
		return d
	}

	d.State = StateResolved
	d.Move = &Move{
		DestinationID:   destID,
		DestinationName: name,
		Category:        d.Outcome.Category,
		Confidence:      d.Outcome.Confidence,
	}
	log.Info("message routed",
		"category", d.Move.Category, "confidence", d.Move.Confidence, "destination", name)
	return d
}
