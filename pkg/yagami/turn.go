package yagami

import (
	"fmt"
	"strings"
)

// Role identifies which side of the conversation authored one turn.
type Role string

const (
	// RoleSystem identifies the fixed persona instructions.
	RoleSystem Role = "system"
	// RoleUser identifies user-authored conversational turns.
	RoleUser Role = "user"
	// RoleAssistant identifies assistant-authored conversational turns.
	RoleAssistant Role = "assistant"
)

// Validate checks whether this role value is supported.
func (r Role) Validate() error {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return nil
	default:
		return fmt.Errorf("validate role: unsupported role %q", r)
	}
}

// Turn is one ordered role-tagged message unit in a conversation transcript.
//
// Turns are immutable once created; mutation happens only by appending new
// turns to a transcript.
type Turn struct {
	// Role identifies which side of the conversation this turn belongs to.
	Role Role
	// Content is one plain text message body.
	Content string
}

// Validate checks one turn contract.
func (t Turn) Validate() error {
	if err := t.Role.Validate(); err != nil {
		return fmt.Errorf("validate turn: %w", err)
	}
	if strings.TrimSpace(t.Content) == "" {
		return fmt.Errorf("validate turn: missing content")
	}

	return nil
}

// SystemTurn creates the fixed persona turn placed at the head of every
// conversation transcript.
func SystemTurn(persona string) Turn {
	return Turn{
		Role:    RoleSystem,
		Content: persona,
	}
}

// UserTurn creates one user-authored turn.
func UserTurn(content string) Turn {
	return Turn{
		Role:    RoleUser,
		Content: content,
	}
}

// AssistantTurn creates one assistant-authored turn.
func AssistantTurn(content string) Turn {
	return Turn{
		Role:    RoleAssistant,
		Content: content,
	}
}

// CloneTurns returns an independent copy of one transcript slice.
func CloneTurns(turns []Turn) []Turn {
	if turns == nil {
		return nil
	}

	return append([]Turn(nil), turns...)
}
