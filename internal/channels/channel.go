// Package channels provides the chat platform layer: adapters that receive
// messages, hand them to the router and carry out its decisions.
package channels

import (
	"context"
	"sync/atomic"

	"github.com/nextlevelbuilder/topicbot/internal/router"
)

// Channel defines the interface that all platform adapters must satisfy.
type Channel interface {
	// Name returns the platform identifier (e.g. "discord").
	Name() string

	// Start begins listening for messages. Should be non-blocking after setup.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the channel.
	Stop(ctx context.Context) error

	// IsRunning returns whether the channel is actively processing messages.
	IsRunning() bool
}

// Router decides where a message belongs. *router.Engine implements it.
type Router interface {
	Route(ctx context.Context, msg router.Message, dir router.Directory) router.Decision
}

// BaseChannel provides shared functionality for all channel implementations.
// Channel implementations should embed this struct.
type BaseChannel struct {
	name     string
	router   Router
	announce bool
	running  atomic.Bool
}

// NewBaseChannel creates a new BaseChannel. announce controls whether move
// notices are posted alongside relocated messages.
func NewBaseChannel(name string, r Router, announce bool) *BaseChannel {
	return &BaseChannel{name: name, router: r, announce: announce}
}

// Name returns the channel name.
func (c *BaseChannel) Name() string { return c.name }

// IsRunning returns whether the channel is running.
func (c *BaseChannel) IsRunning() bool { return c.running.Load() }

// SetRunning updates the running state.
func (c *BaseChannel) SetRunning(running bool) { c.running.Store(running) }

// Announce reports whether move notices are enabled.
func (c *BaseChannel) Announce() bool { return c.announce }

// HandleMessage runs msg through the router. dir resolves destination
// channel names on the calling platform.
func (c *BaseChannel) HandleMessage(ctx context.Context, msg router.Message, dir router.Directory) router.Decision {
	return c.router.Route(ctx, msg, dir)
}

// Truncate shortens a string to maxLen, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
