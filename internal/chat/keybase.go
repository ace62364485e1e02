package chat

import (
	"context"
	"log"

	"github.com/keybase/go-keybase-chat-bot/kbchat"
)

// Keybase is a Transport over a keybase service logged in with a paperkey.
type Keybase struct {
	api *kbchat.API
}

func NewKeybase(username, paperkey string) (*Keybase, error) {
	api, err := kbchat.Start(kbchat.RunOptions{
		Oneshot: &kbchat.OneshotOptions{
			Username: username,
			PaperKey: paperkey,
		},
	})
	if err != nil {
		return nil, err
	}
	return &Keybase{api: api}, nil
}

func (k *Keybase) Self() string {
	return k.api.GetUsername()
}

// Send posts text to a team channel. kbchat has no context support, so the
// call runs in a goroutine and the result is abandoned once ctx expires;
// callers treat that as a transient failure.
func (k *Keybase) Send(ctx context.Context, ch Channel, text string) error {
	done := make(chan error, 1)
	go func() {
		_, err := k.api.SendMessageByTeamName(ch.Team, &ch.Topic, "%s", text)
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (k *Keybase) Listen(ctx context.Context) (<-chan Message, error) {
	sub, err := k.api.ListenForNewTextMessages()
	if err != nil {
		return nil, err
	}

	out := make(chan Message)
	go func() {
		defer close(out)
		for {
			msg, err := sub.Read()
			if err != nil {
				log.Printf("keybase: subscription read failed: %v", err)
				return
			}
			if msg.Message.Content.TypeName != "text" || msg.Message.Content.Text == nil {
				continue
			}

			m := Message{
				Sender: msg.Message.Sender.Username,
				Channel: Channel{
					Team:  msg.Message.Channel.Name,
					Topic: msg.Message.Channel.TopicName,
				},
				Text:     msg.Message.Content.Text.Body,
				Mentions: msg.Message.AtMentionUsernames,
			}

			select {
			case out <- m:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
