package telegram

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"

	"yagami/pkg/yagami"

	"github.com/gotd/td/crypto"
	"github.com/gotd/td/tg"
)

// outboundRPC is the minimal Telegram surface the sender needs, extracted so
// tests can substitute a fake transport.
type outboundRPC interface {
	SendText(ctx context.Context, peer tg.InputPeerClass, text string) error
}

// Sender delivers relay replies to Telegram users, splitting texts above the
// platform message limit into ordered chunks.
type Sender struct {
	rpc       outboundRPC
	peers     *PeerCache
	chunkSize int
	logger    *slog.Logger
}

// SenderOption configures optional sender behavior.
type SenderOption func(*Sender)

// WithSenderLogger overrides the default discard logger.
func WithSenderLogger(logger *slog.Logger) SenderOption {
	return func(s *Sender) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithChunkSize overrides the outbound chunk size. Non-positive values keep
// the default.
func WithChunkSize(size int) SenderOption {
	return func(s *Sender) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// NewSender builds a delivery sink backed by the raw Telegram API client.
func NewSender(api *tg.Client, peers *PeerCache, opts ...SenderOption) (*Sender, error) {
	if api == nil {
		return nil, fmt.Errorf("new sender: nil api client")
	}
	if peers == nil {
		return nil, fmt.Errorf("new sender: nil peer cache")
	}

	sender := &Sender{
		rpc:       &gotdOutboundRPC{api: api},
		peers:     peers,
		chunkSize: yagami.DefaultChunkSize,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(sender)
	}

	return sender, nil
}

// Send resolves the destination peer and delivers the reply text in order,
// one message per chunk. A failed chunk aborts the remainder.
func (s *Sender) Send(ctx context.Context, req yagami.SendRequest) error {
	if s == nil {
		return fmt.Errorf("telegram send: nil sender")
	}
	if ctx == nil {
		return fmt.Errorf("telegram send: nil context")
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("telegram send validate request: %w", err)
	}

	peer, err := s.peers.Resolve(req.UserID)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}

	chunks := yagami.SplitMessage(req.Text, s.chunkSize)
	for index, chunk := range chunks {
		if err := s.rpc.SendText(ctx, peer, chunk); err != nil {
			return fmt.Errorf("telegram send chunk %d/%d to user %s: %w",
				index+1, len(chunks), req.UserID, err)
		}
	}

	s.logger.DebugContext(ctx, "telegram reply delivered",
		"user_id", req.UserID,
		"chunks", len(chunks),
	)

	return nil
}

type gotdOutboundRPC struct {
	api *tg.Client
}

func (r *gotdOutboundRPC) SendText(ctx context.Context, peer tg.InputPeerClass, text string) error {
	randomID, err := crypto.RandInt64(rand.Reader)
	if err != nil {
		return fmt.Errorf("generate random id: %w", err)
	}

	_, err = r.api.MessagesSendMessage(ctx, &tg.MessagesSendMessageRequest{
		Peer:     peer,
		Message:  text,
		RandomID: randomID,
	})
	if err != nil {
		return fmt.Errorf("messages.sendMessage: %w", err)
	}

	return nil
}

var _ yagami.DeliverySink = (*Sender)(nil)
