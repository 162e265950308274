package session

import (
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long one cached reply stays servable.
const DefaultCacheTTL = 1800 * time.Second

// ReplyCache maps (user, message fingerprint) to a previously generated reply.
//
// Expiry is purely lazy: stale entries are logically absent at lookup time but
// are never removed by background work. The cache is independent of
// conversation history on purpose; clearing history does not invalidate
// cached replies, so a reply generated under an older history state can be
// replayed afterward. That asymmetry is a documented property, not a bug.
type ReplyCache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[replyKey]replyEntry
}

type replyKey struct {
	userID      string
	fingerprint string
}

type replyEntry struct {
	reply     string
	createdAt time.Time
}

// NewReplyCache creates a reply cache with the provided TTL.
//
// A non-positive ttl falls back to DefaultCacheTTL.
func NewReplyCache(ttl time.Duration) *ReplyCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &ReplyCache{
		ttl:     ttl,
		entries: make(map[replyKey]replyEntry),
	}
}

// Lookup returns the cached reply for one user and exact message text.
//
// Entries older than the TTL are treated as absent regardless of physical
// removal timing.
func (c *ReplyCache) Lookup(userID string, text string, now time.Time) (string, bool) {
	key := replyKey{userID: userID, fingerprint: fingerprint(text)}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return "", false
	}
	if now.Sub(entry.createdAt) >= c.ttl {
		return "", false
	}

	return entry.reply, true
}

// Store records one reply pairing, overwriting any existing entry for the key.
func (c *ReplyCache) Store(userID string, text string, reply string, now time.Time) {
	key := replyKey{userID: userID, fingerprint: fingerprint(text)}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = replyEntry{reply: reply, createdAt: now}
}

// CountForUser reports how many unexpired entries exist for one user.
func (c *ReplyCache) CountForUser(userID string, now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for key, entry := range c.entries {
		if key.userID != userID {
			continue
		}
		if now.Sub(entry.createdAt) >= c.ttl {
			continue
		}
		count++
	}

	return count
}
