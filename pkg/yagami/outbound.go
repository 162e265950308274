package yagami

import (
	"context"
	"fmt"
	"strings"
)

// DefaultChunkSize is the largest single-message body most platforms accept.
//
// Telegram caps one text message at 4096 characters.
const DefaultChunkSize = 4096

// DeliverySink sends reply text to one user on the destination platform.
//
// Implementations must split oversized bodies into ordered chunks before
// transmission. Delivery failures are not retried by callers; reliability is
// the sink's concern.
type DeliverySink interface {
	// Send delivers one reply body to one user, chunking as needed.
	Send(ctx context.Context, request SendRequest) error
}

// SendRequest describes one outbound reply delivery.
type SendRequest struct {
	// UserID identifies the destination user.
	UserID string
	// Text is the full reply body before chunking.
	Text string
}

// Validate checks the request envelope before dispatch.
func (r SendRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidOutboundRequest)
	}
	if r.Text == "" {
		return fmt.Errorf("%w: missing message text", ErrInvalidOutboundRequest)
	}

	return nil
}

// SplitMessage splits text into ordered chunks of at most chunkSize runes.
//
// Splitting is fixed-size with no word-boundary awareness; chunks concatenate
// back to the original text exactly. A non-positive chunkSize falls back to
// DefaultChunkSize.
func SplitMessage(text string, chunkSize int) []string {
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+chunkSize-1)/chunkSize)
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks
}
