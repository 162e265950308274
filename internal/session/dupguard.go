package session

import (
	"sync"
	"time"
)

// DefaultDupWindow is the cooldown during which an identical repeated message
// from the same user is rejected.
const DefaultDupWindow = 10 * time.Second

// DuplicateGuard rejects a message identical to the immediately preceding one
// from the same user when it arrives inside a short cooldown.
type DuplicateGuard struct {
	window time.Duration

	mu      sync.Mutex
	records map[string]dupRecord
}

type dupRecord struct {
	lastText   string
	lastSeenAt time.Time
}

// NewDuplicateGuard creates a duplicate guard with the provided cooldown.
//
// A non-positive window falls back to DefaultDupWindow.
func NewDuplicateGuard(window time.Duration) *DuplicateGuard {
	if window <= 0 {
		window = DefaultDupWindow
	}

	return &DuplicateGuard{
		window:  window,
		records: make(map[string]dupRecord),
	}
}

// CheckAndUpdate reports whether the message should be rejected as a duplicate.
//
// A rejection does not refresh the stored timestamp, so the cooldown stays
// anchored to the first occurrence of the repeated text. Every accepted
// message upserts the record, including messages later served from the reply
// cache.
func (g *DuplicateGuard) CheckAndUpdate(userID string, text string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	record, exists := g.records[userID]
	if exists && record.lastText == text && now.Sub(record.lastSeenAt) < g.window {
		return true
	}

	g.records[userID] = dupRecord{lastText: text, lastSeenAt: now}

	return false
}
