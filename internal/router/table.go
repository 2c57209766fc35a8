// Package router decides where a chat message belongs: it gathers candidate
// texts from the message, classifies them and maps the accepted category to a
// destination channel.
package router

import (
	"slices"
	"sort"
)

// RoutingTable maps category names to destination channel names.
// It is immutable once built and safe for concurrent reads.
type RoutingTable struct {
	routes map[string]string
}

// NewRoutingTable copies routes into a new table.
func NewRoutingTable(routes map[string]string) RoutingTable {
	m := make(map[string]string, len(routes))
	for k, v := range routes {
		m[k] = v
	}
	return RoutingTable{routes: m}
}

// Has reports whether category is routable. It satisfies classify.Vocabulary.
func (t RoutingTable) Has(category string) bool {
	_, ok := t.routes[category]
	return ok
}

// Channel returns the destination channel name for category.
func (t RoutingTable) Channel(category string) (string, bool) {
	name, ok := t.routes[category]
	return name, ok
}

// Categories returns the table keys in sorted order.
func (t RoutingTable) Categories() []string {
	out := make([]string, 0, len(t.routes))
	for k := range t.routes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Channels returns the distinct destination channel names in sorted order.
func (t RoutingTable) Channels() []string {
	out := make([]string, 0, len(t.routes))
	for _, v := range t.routes {
		out = append(out, v)
	}
	sort.Strings(out)
	return slices.Compact(out)
}

func (t RoutingTable) Len() int { return len(t.routes) }
