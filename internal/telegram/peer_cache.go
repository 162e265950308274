package telegram

import (
	"fmt"
	"strconv"
	"sync"

	"yagami/pkg/yagami"

	"github.com/gotd/td/tg"
)

// PeerCache stores Telegram input peers discovered from inbound updates.
//
// Outbound dispatch uses it to resolve neutral user IDs back into Telegram
// input peers carrying the access hash the API requires.
type PeerCache struct {
	mu     sync.RWMutex
	byUser map[string]tg.InputPeerClass
}

// NewPeerCache creates an empty, concurrency-safe Telegram peer cache.
func NewPeerCache() *PeerCache {
	return &PeerCache{
		byUser: make(map[string]tg.InputPeerClass),
	}
}

// RememberUsers ingests user entities attached to one update batch.
func (c *PeerCache) RememberUsers(users map[int64]*tg.User) {
	if c == nil || len(users) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for userID, user := range users {
		if user == nil {
			continue
		}
		peer := user.AsInputPeer()
		if peer == nil {
			continue
		}
		c.byUser[strconv.FormatInt(userID, 10)] = cloneInputPeer(peer)
	}
}

// Resolve returns an input peer for one outbound destination user.
func (c *PeerCache) Resolve(userID string) (tg.InputPeerClass, error) {
	if c == nil {
		return nil, fmt.Errorf("resolve peer: nil cache")
	}
	if userID == "" {
		return nil, fmt.Errorf("resolve peer: empty user id")
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	peer, exists := c.byUser[userID]
	if !exists {
		return nil, fmt.Errorf("resolve peer for user %s: %w", userID, yagami.ErrUnknownPeer)
	}

	return cloneInputPeer(peer), nil
}

func cloneInputPeer(peer tg.InputPeerClass) tg.InputPeerClass {
	switch typed := peer.(type) {
	case *tg.InputPeerUser:
		copyPeer := *typed
		return &copyPeer
	case *tg.InputPeerSelf:
		copyPeer := *typed
		return &copyPeer
	default:
		return peer
	}
}
