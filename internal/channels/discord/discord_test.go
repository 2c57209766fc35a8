package discord

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/nextlevelbuilder/topicbot/internal/router"
)

type sentMessage struct {
	channelID string
	content   string
}

type fakeMessenger struct {
	sent      []sentMessage
	deleted   []string
	deleteErr error
	sendErr   error
}

func (f *fakeMessenger) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, sentMessage{channelID, content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeMessenger) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, channelID+"/"+messageID)
	return nil
}

var (
	testMsg = router.Message{
		ID:          "m1",
		AuthorID:    "u1",
		Content:     "check this out https://example.com/a",
		ChannelID:   "c-general",
		ChannelName: "general",
	}
	testMove = router.Move{DestinationID: "c-sports", DestinationName: "sports-talk", Category: "Sports", Confidence: 0.92}
)

func TestExecuteMove_WithNotices(t *testing.T) {
	api := &fakeMessenger{}
	if err := executeMove(api, testMsg, testMove, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(api.deleted) != 1 || api.deleted[0] != "c-general/m1" {
		t.Errorf("deleted = %v", api.deleted)
	}
	want := []sentMessage{
		{"c-general", "<@u1> Your message was moved to <#c-sports>."},
		{"c-sports", "I am 92% confident that <@u1> posted something in <#c-general> that is categorized as Sports."},
		{"c-sports", testMsg.Content},
	}
	if len(api.sent) != len(want) {
		t.Fatalf("sent %d messages, want %d: %+v", len(api.sent), len(want), api.sent)
	}
	for i := range want {
		if api.sent[i] != want[i] {
			t.Errorf("message %d = %+v, want %+v", i, api.sent[i], want[i])
		}
	}
}

func TestExecuteMove_Silent(t *testing.T) {
	api := &fakeMessenger{}
	if err := executeMove(api, testMsg, testMove, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(api.sent) != 1 || api.sent[0].channelID != "c-sports" || api.sent[0].content != testMsg.Content {
		t.Errorf("sent = %+v, want only the repost", api.sent)
	}
}

func TestExecuteMove_DeleteFailureStops(t *testing.T) {
	api := &fakeMessenger{deleteErr: errors.New("missing permissions")}
	if err := executeMove(api, testMsg, testMove, true); err == nil {
		t.Fatal("expected error")
	}
	if len(api.sent) != 0 {
		t.Errorf("sent %d messages after failed delete", len(api.sent))
	}
}

func TestSendChunked(t *testing.T) {
	api := &fakeMessenger{}
	long := strings.Repeat("a", 1500) + "\n" + strings.Repeat("b", 1500)
	if err := sendChunked(api, "c1", long); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(api.sent) != 2 {
		t.Fatalf("chunks = %d, want 2", len(api.sent))
	}
	if api.sent[0].content != strings.Repeat("a", 1500)+"\n" {
		t.Errorf("first chunk should end at the newline, len=%d", len(api.sent[0].content))
	}
	if api.sent[1].content != strings.Repeat("b", 1500) {
		t.Errorf("second chunk len=%d", len(api.sent[1].content))
	}
}

func TestSendChunked_MultiByte(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantChunks int
	}{
		{"cjk under limit", strings.Repeat("日", 700), 1},
		{"cjk at limit", strings.Repeat("日", maxMessageLen), 1},
		{"cjk over limit", strings.Repeat("日", maxMessageLen+1), 2},
		{"mixed over limit", "a" + strings.Repeat("é", 2500), 2},
		{"emoji with newline", strings.Repeat("🎉", 1500) + "\n" + strings.Repeat("🎉", 1000), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeMessenger{}
			if err := sendChunked(api, "c1", tt.content); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(api.sent) != tt.wantChunks {
				t.Fatalf("chunks = %d, want %d", len(api.sent), tt.wantChunks)
			}
			var joined strings.Builder
			for i, m := range api.sent {
				if !utf8.ValidString(m.content) {
					t.Errorf("chunk %d is not valid UTF-8", i)
				}
				if n := utf8.RuneCountInString(m.content); n > maxMessageLen {
					t.Errorf("chunk %d has %d characters", i, n)
				}
				joined.WriteString(m.content)
			}
			if joined.String() != tt.content {
				t.Error("chunks do not reassemble to the original text")
			}
		})
	}
}

func TestFindTextChannel(t *testing.T) {
	chs := []*discordgo.Channel{
		{ID: "v1", Name: "sports-talk", Type: discordgo.ChannelTypeGuildVoice},
		nil,
		{ID: "t1", Name: "sports-talk", Type: discordgo.ChannelTypeGuildText},
		{ID: "t2", Name: "general", Type: discordgo.ChannelTypeGuildText},
	}
	if id, ok := findTextChannel(chs, "sports-talk"); !ok || id != "t1" {
		t.Errorf("sports-talk = %q, %v; want t1", id, ok)
	}
	if _, ok := findTextChannel(chs, "missing"); ok {
		t.Error("found a channel that does not exist")
	}
}

func TestRoleNames(t *testing.T) {
	roles := []*discordgo.Role{{ID: "r1", Name: "Moderator"}, {ID: "r2", Name: "Member"}}
	got := roleNames(roles, []string{"r2", "r9", "r1"})
	if len(got) != 2 || got[0] != "Member" || got[1] != "Moderator" {
		t.Errorf("roleNames = %v", got)
	}
}

func TestResolveDisplayName(t *testing.T) {
	m := &discordgo.MessageCreate{Message: &discordgo.Message{
		Author: &discordgo.User{Username: "alice", GlobalName: "Alice"},
	}}
	if got := resolveDisplayName(m); got != "Alice" {
		t.Errorf("got %q, want global name", got)
	}
	m.Member = &discordgo.Member{Nick: "Al"}
	if got := resolveDisplayName(m); got != "Al" {
		t.Errorf("got %q, want nickname", got)
	}
}
