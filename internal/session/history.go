package session

import (
	"sync"

	"yagami/pkg/yagami"
)

// DefaultMaxPairs caps how many user/assistant turn pairs one transcript keeps.
const DefaultMaxPairs = 8

// History stores one bounded rolling conversation transcript per user.
//
// Every transcript begins with the fixed persona system turn at index 0; the
// system turn is never evicted. Truncation removes complete user/assistant
// pairs from the front, oldest first, after the cap is exceeded.
type History struct {
	persona  string
	maxPairs int

	mu          sync.Mutex
	transcripts map[string][]yagami.Turn
}

// NewHistory creates a conversation history store.
//
// A non-positive maxPairs falls back to DefaultMaxPairs.
func NewHistory(persona string, maxPairs int) *History {
	if maxPairs <= 0 {
		maxPairs = DefaultMaxPairs
	}

	return &History{
		persona:     persona,
		maxPairs:    maxPairs,
		transcripts: make(map[string][]yagami.Turn),
	}
}

// GetOrInit returns a copy of one user's transcript, creating it first when
// absent.
//
// A fresh transcript contains exactly the system persona turn. Creation is
// explicit here rather than a side effect of read access elsewhere.
func (h *History) GetOrInit(userID string) []yagami.Turn {
	h.mu.Lock()
	defer h.mu.Unlock()

	return yagami.CloneTurns(h.getOrInitLocked(userID))
}

// Append pushes one turn onto a user's transcript and enforces the pair cap.
func (h *History) Append(userID string, turn yagami.Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	transcript := append(h.getOrInitLocked(userID), turn)

	// Drop the oldest complete pair after the system turn until the
	// invariant len <= 1 + 2*maxPairs holds again.
	maxLen := 1 + 2*h.maxPairs
	for len(transcript) > maxLen {
		transcript = append(transcript[:1], transcript[3:]...)
	}

	h.transcripts[userID] = transcript
}

// Clear resets one user's transcript to the system persona turn only.
func (h *History) Clear(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.transcripts[userID] = []yagami.Turn{yagami.SystemTurn(h.persona)}
}

// Len reports the current transcript length for one user.
//
// A user without a transcript reports zero; Len never creates state.
func (h *History) Len(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.transcripts[userID])
}

func (h *History) getOrInitLocked(userID string) []yagami.Turn {
	transcript, exists := h.transcripts[userID]
	if !exists {
		transcript = []yagami.Turn{yagami.SystemTurn(h.persona)}
		h.transcripts[userID] = transcript
	}

	return transcript
}
