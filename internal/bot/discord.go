package bot

import (
	"context"
	"fmt"
	"strings"

	"casinha/internal/log"

	"github.com/bwmarrin/discordgo"
)

// Discord is a Messenger over a Discord bot session. Channel IDs are chat IDs.
type Discord struct {
	session *discordgo.Session
	handler HandlerFunc
	ctx     context.Context
	logger  *log.Logger
}

var _ Messenger = (*Discord)(nil)

func NewDiscord(token string, logger *log.Logger) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	d := &Discord{
		session: session,
		ctx:     context.Background(),
		logger:  logger.WithComponent(log.ComponentBot),
	}
	// Handlers run on the gateway goroutine so a user's messages reach the
	// dialog in the order they were sent.
	session.SyncEvents = true
	session.AddHandler(d.onReady)
	session.AddHandler(d.onMessageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	return d, nil
}

// Start opens the gateway and routes every user message to handler.
// ctx is passed to handler calls.
func (d *Discord) Start(ctx context.Context, handler HandlerFunc) error {
	d.ctx = ctx
	d.handler = handler
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	d.logger.InfoContext(ctx, "Discord bot is running")
	return nil
}

func (d *Discord) Stop() error {
	return d.session.Close()
}

// Send posts text to the channel, with options rendered below it.
func (d *Discord) Send(_ context.Context, chatID, text string, options []string) error {
	if _, err := d.session.ChannelMessageSend(chatID, RenderOptions(text, options)); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}

func (d *Discord) onReady(_ *discordgo.Session, event *discordgo.Ready) {
	d.logger.Info("Connected to Discord", "user", event.User.Username, "guilds", len(event.Guilds))
}

func (d *Discord) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	msg, ok := messageFromEvent(m)
	if !ok || d.handler == nil {
		return
	}
	if err := d.handler(d.ctx, msg); err != nil {
		d.logger.ErrorContext(d.ctx, "Failed to handle message",
			log.FieldChatID, msg.ChatID,
			log.FieldUserID, msg.UserID,
			log.FieldError, err)
	}
}

// messageFromEvent converts a gateway event, skipping bots and empty content.
func messageFromEvent(m *discordgo.MessageCreate) (Message, bool) {
	if m == nil || m.Message == nil || m.Author == nil || m.Author.Bot {
		return Message{}, false
	}
	if strings.TrimSpace(m.Content) == "" {
		return Message{}, false
	}
	return Message{
		ChatID:   m.ChannelID,
		UserID:   m.Author.ID,
		UserName: m.Author.Username,
		Text:     m.Content,
	}, true
}

// RenderOptions appends the suggested answers as a single text line.
func RenderOptions(text string, options []string) string {
	if len(options) == 0 {
		return text
	}
	quoted := make([]string, len(options))
	for i, o := range options {
		quoted[i] = "`" + o + "`"
	}
	return text + "\n" + strings.Join(quoted, " | ")
}
