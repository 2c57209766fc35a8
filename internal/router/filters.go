package router

// Filters hold the channel and role names whose messages are never routed.
type Filters struct {
	channels map[string]struct{}
	roles    map[string]struct{}
}

// NewFilters builds an immutable filter set.
func NewFilters(channels, roles []string) Filters {
	return Filters{channels: toSet(channels), roles: toSet(roles)}
}

// Ignores reports whether msg must be skipped, and why.
func (f Filters) Ignores(msg Message) (string, bool) {
	if _, ok := f.channels[msg.ChannelName]; ok {
		return "ignored channel", true
	}
	for _, r := range msg.Roles {
		if _, ok := f.roles[r]; ok {
			return "ignored role " + r, true
		}
	}
	return "", false
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, s := range items {
		if s != "" {
			m[s] = struct{}{}
		}
	}
	return m
}
