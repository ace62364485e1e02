package bot

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/shlex"

	"flock-server/internal/chat"
	"flock-server/internal/service/agent"
	"flock-server/internal/service/settings"
)

const refusalReply = "Sorry, you're not allowed to give me commands."

// Bot reads chat messages from the configured channel and executes admin
// commands against the server's state. Messages are handled one at a
// time, in arrival order.
type Bot struct {
	transport   chat.Transport
	channel     chat.Channel
	admins      map[string]bool
	sendTimeout time.Duration

	agentSvc    agent.Service
	settingsSvc settings.Service

	commands []command
}

func New(
	transport chat.Transport,
	channel chat.Channel,
	admins []string,
	agentSvc agent.Service,
	settingsSvc settings.Service,
	sendTimeout time.Duration,
) *Bot {
	adminSet := make(map[string]bool, len(admins))
	for _, admin := range admins {
		adminSet[strings.ToLower(strings.TrimSpace(admin))] = true
	}

	b := &Bot{
		transport:   transport,
		channel:     channel,
		admins:      adminSet,
		sendTimeout: sendTimeout,
		agentSvc:    agentSvc,
		settingsSvc: settingsSvc,
	}
	b.registerCommands()
	return b
}

// Run listens for messages until ctx is done or the connection drops.
func (b *Bot) Run(ctx context.Context) error {
	messages, err := b.transport.Listen(ctx)
	if err != nil {
		return err
	}

	b.send(ctx, "My process just started :computer:")

	for msg := range messages {
		if reply := b.Handle(ctx, msg); reply != "" {
			b.send(ctx, reply)
		}
	}
	return nil
}

// Handle processes one inbound message and returns the reply to post, or
// "" when the message is discarded without one.
func (b *Bot) Handle(ctx context.Context, msg chat.Message) string {
	// The transport already filters to live text messages; discard
	// anything echoing back from the bot itself or from other channels.
	if strings.EqualFold(msg.Sender, b.transport.Self()) {
		return ""
	}
	if msg.Channel != b.channel {
		return ""
	}

	if !b.admins[strings.ToLower(msg.Sender)] {
		return refusalReply
	}

	tokens, err := shlex.Split(msg.Text)
	if err != nil {
		// Unbalanced quotes; nothing sensible to dispatch.
		return ""
	}
	tokens = b.stripMention(tokens)
	if len(tokens) == 0 {
		return ""
	}

	name := tokens[0]
	args := tokens[1:]

	for _, cmd := range b.commands {
		if cmd.name != name {
			continue
		}
		if len(args) != len(cmd.args) {
			return "Usage: " + cmd.usage()
		}
		return cmd.run(ctx, args)
	}
	return "Unknown command. Run `help` to see what I can do."
}

func (b *Bot) stripMention(tokens []string) []string {
	mention := "@" + b.transport.Self()
	out := tokens[:0]
	for _, token := range tokens {
		if strings.EqualFold(token, mention) {
			continue
		}
		out = append(out, token)
	}
	return out
}

func (b *Bot) send(ctx context.Context, text string) {
	sendCtx, cancel := context.WithTimeout(ctx, b.sendTimeout)
	defer cancel()

	if err := b.transport.Send(sendCtx, b.channel, text); err != nil {
		log.Printf("bot: reply failed: %v", err)
	}
}
