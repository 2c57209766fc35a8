package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/nextlevelbuilder/topicbot/internal/channels"
	"github.com/nextlevelbuilder/topicbot/internal/config"
	"github.com/nextlevelbuilder/topicbot/internal/router"
)

// messenger is the subset of *discordgo.Session used to carry out a move.
type messenger interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// Channel connects to Discord via the Bot API using gateway events.
type Channel struct {
	*channels.BaseChannel
	session   *discordgo.Session
	botUserID string // populated on start
}

// New creates a new Discord channel from config.
func New(cfg config.DiscordConfig, r channels.Router, announce bool) (*Channel, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	// Guilds keeps channels and roles in the state cache for name lookups.
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	return &Channel{
		BaseChannel: channels.NewBaseChannel("discord", r, announce),
		session:     session,
	}, nil
}

// Start opens the Discord gateway connection and begins receiving events.
func (c *Channel) Start(_ context.Context) error {
	slog.Info("starting discord bot")

	c.session.AddHandler(c.handleMessage)

	if err := c.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	// Fetch bot identity
	user, err := c.session.User("@me")
	if err != nil {
		c.session.Close()
		return fmt.Errorf("fetch discord bot identity: %w", err)
	}
	c.botUserID = user.ID

	c.SetRunning(true)
	slog.Info("discord bot connected", "username", user.Username, "id", user.ID)

	return nil
}

// Stop closes the Discord gateway connection.
func (c *Channel) Stop(_ context.Context) error {
	slog.Info("stopping discord bot")
	c.SetRunning(false)
	return c.session.Close()
}

// handleMessage processes incoming Discord messages. discordgo runs each
// handler call on its own goroutine.
func (c *Channel) handleMessage(_ *discordgo.Session, m *discordgo.MessageCreate) {
	// Ignore bot's own messages
	if m.Author == nil || m.Author.ID == c.botUserID {
		return
	}

	// Ignore bot messages
	if m.Author.Bot {
		return
	}

	// Routing only makes sense inside a guild.
	if m.GuildID == "" || m.Content == "" {
		return
	}

	msg := router.Message{
		ID:          m.ID,
		AuthorID:    m.Author.ID,
		AuthorName:  resolveDisplayName(m),
		Content:     m.Content,
		ChannelID:   m.ChannelID,
		ChannelName: c.channelName(m.ChannelID),
		GuildID:     m.GuildID,
		Roles:       c.memberRoleNames(m.GuildID, m.Member),
	}

	slog.Debug("discord message received",
		"message_id", m.ID,
		"channel", msg.ChannelName,
		"user_id", msg.AuthorID,
		"preview", channels.Truncate(msg.Content, 50),
	)

	d := c.HandleMessage(context.Background(), msg, c)
	if d.State != router.StateResolved {
		return
	}

	if err := executeMove(c.session, msg, *d.Move, c.Announce()); err != nil {
		slog.Error("discord move failed", "eval_id", d.ID, "message_id", m.ID, "error", err)
	}
}

// ChannelByName implements router.Directory using the state cache, falling
// back to the REST API when the guild is not cached.
func (c *Channel) ChannelByName(guildID, name string) (string, bool) {
	var chs []*discordgo.Channel
	if g, err := c.session.State.Guild(guildID); err == nil {
		chs = g.Channels
	} else {
		chs, err = c.session.GuildChannels(guildID)
		if err != nil {
			slog.Warn("discord: list guild channels failed", "guild_id", guildID, "error", err)
			return "", false
		}
	}
	return findTextChannel(chs, name)
}

func (c *Channel) channelName(channelID string) string {
	if ch, err := c.session.State.Channel(channelID); err == nil {
		return ch.Name
	}
	ch, err := c.session.Channel(channelID)
	if err != nil {
		slog.Warn("discord: channel lookup failed", "channel_id", channelID, "error", err)
		return ""
	}
	return ch.Name
}

func (c *Channel) memberRoleNames(guildID string, member *discordgo.Member) []string {
	if member == nil || len(member.Roles) == 0 {
		return nil
	}
	var roles []*discordgo.Role
	if g, err := c.session.State.Guild(guildID); err == nil {
		roles = g.Roles
	} else {
		roles, err = c.session.GuildRoles(guildID)
		if err != nil {
			slog.Warn("discord: list guild roles failed", "guild_id", guildID, "error", err)
			return nil
		}
	}
	return roleNames(roles, member.Roles)
}

// executeMove deletes the original message, optionally posts the move
// notices and reposts the original text in the destination channel.
func executeMove(api messenger, msg router.Message, mv router.Move, announce bool) error {
	if err := api.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
		return fmt.Errorf("delete original message: %w", err)
	}

	if announce {
		if _, err := api.ChannelMessageSend(msg.ChannelID, movedNotice(msg.AuthorID, mv.DestinationID)); err != nil {
			slog.Warn("discord: send moved notice failed", "channel_id", msg.ChannelID, "error", err)
		}
		if _, err := api.ChannelMessageSend(mv.DestinationID, routedNotice(mv.Percent(), msg.AuthorID, msg.ChannelID, mv.Category)); err != nil {
			slog.Warn("discord: send routed notice failed", "channel_id", mv.DestinationID, "error", err)
		}
	}

	if err := sendChunked(api, mv.DestinationID, msg.Content); err != nil {
		return fmt.Errorf("repost message: %w", err)
	}

	slog.Info("discord message moved",
		"message_id", msg.ID,
		"from", msg.ChannelName,
		"to", mv.DestinationName,
		"category", mv.Category,
	)
	return nil
}

// resolveDisplayName returns the best available display name for a Discord message author.
// Priority: server nickname > global display name > username.
func resolveDisplayName(m *discordgo.MessageCreate) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}
