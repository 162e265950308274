package telegram

import (
	"strconv"
	"strings"

	"github.com/gotd/td/tg"
)

// DecodeNewMessage converts one gotd new-message update into an Inbound DTO.
//
// The accepted flag allows skipping update shapes the relay does not handle:
// outgoing echoes, non-private peers, bot senders, and non-text payloads.
func DecodeNewMessage(entities tg.Entities, update *tg.UpdateNewMessage) (Inbound, bool) {
	if update == nil {
		return Inbound{}, false
	}

	message, ok := update.Message.(*tg.Message)
	if !ok || message == nil {
		return Inbound{}, false
	}
	if message.Out {
		return Inbound{}, false
	}
	if message.Message == "" {
		return Inbound{}, false
	}

	peer, ok := message.PeerID.(*tg.PeerUser)
	if !ok {
		return Inbound{}, false
	}
	if user, known := entities.Users[peer.UserID]; known && user != nil && user.Bot {
		return Inbound{}, false
	}

	return Inbound{
		UserID:    strconv.FormatInt(peer.UserID, 10),
		Text:      message.Message,
		IsCommand: strings.HasPrefix(strings.TrimSpace(message.Message), "/"),
	}, true
}
