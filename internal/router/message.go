package router

// Message is an inbound chat message as seen by the router.
type Message struct {
	ID          string
	AuthorID    string
	AuthorName  string
	Content     string
	ChannelID   string
	ChannelName string
	GuildID     string
	Roles       []string // role names held by the author
}

// Origin tells where a candidate's text came from.
type Origin int

const (
	OriginMessage Origin = iota // the raw message body
	OriginURL                   // a resolved link
)

func (o Origin) String() string {
	if o == OriginURL {
		return "url"
	}
	return "message"
}

// Candidate is one text eligible for classification. A candidate whose
// resolution failed keeps its slot with Err set and no Text.
type Candidate struct {
	Index  int
	Origin Origin
	URL    string
	Text   string
	Err    error
}

// Usable reports whether the candidate has text to classify.
func (c Candidate) Usable() bool {
	return c.Err == nil && c.Text != ""
}
