// Package chat abstracts the chat system the server talks to. The rest of
// the codebase depends only on Transport; the Keybase backend lives in
// keybase.go.
package chat

import "context"

// Channel addresses a team channel messages are sent to.
type Channel struct {
	Team  string
	Topic string
}

// Message is one inbound chat event.
type Message struct {
	Sender   string
	Channel  Channel
	Text     string
	Mentions []string
}

// Transport is the send/receive contract with the chat system. Send honors
// the caller's context deadline; a timed-out send is a transient failure
// and the message may be retried.
type Transport interface {
	// Self returns the identity the transport is logged in as.
	Self() string
	Send(ctx context.Context, ch Channel, text string) error
	// Listen starts delivering inbound messages on the returned channel.
	// The channel is closed when ctx is done or the connection drops.
	Listen(ctx context.Context) (<-chan Message, error)
}
