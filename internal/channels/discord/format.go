package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const maxMessageLen = 2000

func movedNotice(userID, destChannelID string) string {
	return fmt.Sprintf("<@%s> Your message was moved to <#%s>.", userID, destChannelID)
}

func routedNotice(percent int, userID, srcChannelID, category string) string {
	return fmt.Sprintf("I am %d%% confident that <@%s> posted something in <#%s> that is categorized as %s.",
		percent, userID, srcChannelID, category)
}

// findTextChannel returns the ID of the first text channel called name.
func findTextChannel(chs []*discordgo.Channel, name string) (string, bool) {
	for _, ch := range chs {
		if ch != nil && ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
			return ch.ID, true
		}
	}
	return "", false
}

// roleNames maps a member's role IDs to names, skipping unknown IDs.
func roleNames(roles []*discordgo.Role, ids []string) []string {
	byID := make(map[string]string, len(roles))
	for _, r := range roles {
		if r != nil {
			byID[r.ID] = r.Name
		}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			out = append(out, name)
		}
	}
	return out
}

// sendChunked sends a message, splitting into multiple messages if over
// 2000 characters. Chunks always end on a rune boundary.
func sendChunked(api messenger, channelID, content string) error {
	for len(content) > 0 {
		chunk := content
		if limit, over := runeOffset(content, maxMessageLen); over {
			// Try to break at a newline
			cutAt := limit
			if idx := strings.LastIndexByte(content[:limit], '\n'); idx > limit/2 {
				cutAt = idx + 1
			}
			chunk = content[:cutAt]
			content = content[cutAt:]
		} else {
			content = ""
		}

		if _, err := api.ChannelMessageSend(channelID, chunk); err != nil {
			return fmt.Errorf("send discord message: %w", err)
		}
	}

	return nil
}

// runeOffset returns the byte offset just past the first n runes of s, and
// whether s holds more than n runes.
func runeOffset(s string, n int) (int, bool) {
	count := 0
	for i := range s {
		if count == n {
			return i, true
		}
		count++
	}
	return len(s), false
}
