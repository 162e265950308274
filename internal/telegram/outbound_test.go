package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"

	"yagami/pkg/yagami"

	"github.com/gotd/td/tg"
)

type fakeOutboundRPC struct {
	sent    []string
	peers   []tg.InputPeerClass
	failAt  int
	callErr error
}

func (f *fakeOutboundRPC) SendText(_ context.Context, peer tg.InputPeerClass, text string) error {
	if f.callErr != nil && len(f.sent) == f.failAt {
		return f.callErr
	}
	f.sent = append(f.sent, text)
	f.peers = append(f.peers, peer)

	return nil
}

func newTestSender(rpc outboundRPC, chunkSize int) (*Sender, *PeerCache) {
	peers := NewPeerCache()
	peers.RememberUsers(map[int64]*tg.User{42: {ID: 42, AccessHash: 900}})

	sender := &Sender{
		rpc:       rpc,
		peers:     peers,
		chunkSize: chunkSize,
		logger:    discardLogger(),
	}

	return sender, peers
}

func TestSenderDeliversSingleChunk(t *testing.T) {
	t.Parallel()

	rpc := &fakeOutboundRPC{}
	sender, _ := newTestSender(rpc, yagami.DefaultChunkSize)

	err := sender.Send(context.Background(), yagami.SendRequest{UserID: "42", Text: "short reply"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(rpc.sent) != 1 || rpc.sent[0] != "short reply" {
		t.Fatalf("sent = %q", rpc.sent)
	}
	if rpc.peers[0].(*tg.InputPeerUser).UserID != 42 {
		t.Fatalf("peer = %+v", rpc.peers[0])
	}
}

func TestSenderSplitsLongReplyInOrder(t *testing.T) {
	t.Parallel()

	rpc := &fakeOutboundRPC{}
	sender, _ := newTestSender(rpc, 4)

	text := "abcdefghij"
	err := sender.Send(context.Background(), yagami.SendRequest{UserID: "42", Text: text})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	want := []string{"abcd", "efgh", "ij"}
	if len(rpc.sent) != len(want) {
		t.Fatalf("chunk count = %d, want %d", len(rpc.sent), len(want))
	}
	for index, chunk := range want {
		if rpc.sent[index] != chunk {
			t.Fatalf("chunk %d = %q, want %q", index, rpc.sent[index], chunk)
		}
	}
	if strings.Join(rpc.sent, "") != text {
		t.Fatal("chunks do not reassemble into the original text")
	}
}

func TestSenderAbortsOnChunkFailure(t *testing.T) {
	t.Parallel()

	rpcErr := errors.New("flood wait")
	rpc := &fakeOutboundRPC{failAt: 1, callErr: rpcErr}
	sender, _ := newTestSender(rpc, 4)

	err := sender.Send(context.Background(), yagami.SendRequest{UserID: "42", Text: "abcdefghij"})
	if !errors.Is(err, rpcErr) {
		t.Fatalf("error = %v, want wrapped rpc error", err)
	}
	if len(rpc.sent) != 1 {
		t.Fatalf("sent %d chunks after failure, want 1", len(rpc.sent))
	}
}

func TestSenderUnknownPeer(t *testing.T) {
	t.Parallel()

	sender, _ := newTestSender(&fakeOutboundRPC{}, 4)

	err := sender.Send(context.Background(), yagami.SendRequest{UserID: "999", Text: "hello"})
	if !errors.Is(err, yagami.ErrUnknownPeer) {
		t.Fatalf("error = %v, want ErrUnknownPeer", err)
	}
}

func TestSenderRejectsInvalidRequest(t *testing.T) {
	t.Parallel()

	sender, _ := newTestSender(&fakeOutboundRPC{}, 4)

	if err := sender.Send(context.Background(), yagami.SendRequest{}); err == nil {
		t.Fatal("expected validation error")
	}
}
