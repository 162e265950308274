package telegram

import (
	"testing"

	"github.com/gotd/td/tg"
)

func newMessageUpdate(message tg.MessageClass) *tg.UpdateNewMessage {
	return &tg.UpdateNewMessage{Message: message}
}

func privateMessage(userID int64, text string) *tg.Message {
	return &tg.Message{
		PeerID:  &tg.PeerUser{UserID: userID},
		Message: text,
	}
}

func TestDecodeNewMessage(t *testing.T) {
	tests := []struct {
		name     string
		entities tg.Entities
		update   *tg.UpdateNewMessage
		want     Inbound
		accepted bool
	}{
		{
			name:     "plain private text",
			update:   newMessageUpdate(privateMessage(42, "hello there")),
			want:     Inbound{UserID: "42", Text: "hello there"},
			accepted: true,
		},
		{
			name:     "command text",
			update:   newMessageUpdate(privateMessage(42, "/clear")),
			want:     Inbound{UserID: "42", Text: "/clear", IsCommand: true},
			accepted: true,
		},
		{
			name:     "command with leading whitespace",
			update:   newMessageUpdate(privateMessage(42, "  /start")),
			want:     Inbound{UserID: "42", Text: "  /start", IsCommand: true},
			accepted: true,
		},
		{
			name:   "nil update",
			update: nil,
		},
		{
			name:   "service message",
			update: newMessageUpdate(&tg.MessageService{}),
		},
		{
			name: "outgoing echo",
			update: newMessageUpdate(&tg.Message{
				Out:     true,
				PeerID:  &tg.PeerUser{UserID: 42},
				Message: "hello",
			}),
		},
		{
			name:   "empty text",
			update: newMessageUpdate(privateMessage(42, "")),
		},
		{
			name: "group chat peer",
			update: newMessageUpdate(&tg.Message{
				PeerID:  &tg.PeerChat{ChatID: 7},
				Message: "hello",
			}),
		},
		{
			name: "bot sender",
			entities: tg.Entities{
				Users: map[int64]*tg.User{42: {ID: 42, Bot: true}},
			},
			update: newMessageUpdate(privateMessage(42, "hello")),
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got, accepted := DecodeNewMessage(testCase.entities, testCase.update)
			if accepted != testCase.accepted {
				t.Fatalf("accepted = %v, want %v", accepted, testCase.accepted)
			}
			if got != testCase.want {
				t.Fatalf("inbound = %+v, want %+v", got, testCase.want)
			}
		})
	}
}
