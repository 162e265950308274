// Package telegram adapts the gotd/td Telegram client to the relay's inbound
// and outbound contracts.
package telegram

// Inbound is one decoded private-chat message ready for relay handling.
type Inbound struct {
	// UserID identifies the message author, stable across the session.
	UserID string
	// Text is the raw message body before trimming.
	Text string
	// IsCommand reports platform command syntax (leading slash).
	IsCommand bool
}
